package ledger

import (
	"context"
	"sync"
)

// Notifier carries "collection changed" signals from committers to watchers.
// Signals are coalesced: a slow watcher sees at least one signal after the last change.
type Notifier interface {
	Publish(ctx context.Context, c Collection) error
	Listen(ctx context.Context, c Collection) (<-chan struct{}, error)
}

// LocalNotifier fans change signals out to listeners in the same process.
type LocalNotifier struct {
	mu        sync.Mutex
	listeners map[Collection]map[chan struct{}]struct{}
}

func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{listeners: make(map[Collection]map[chan struct{}]struct{})}
}

func (n *LocalNotifier) Publish(_ context.Context, c Collection) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.listeners[c] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

func (n *LocalNotifier) Listen(ctx context.Context, c Collection) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	if n.listeners[c] == nil {
		n.listeners[c] = make(map[chan struct{}]struct{})
	}
	n.listeners[c][ch] = struct{}{}
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		n.mu.Lock()
		delete(n.listeners[c], ch)
		n.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}
