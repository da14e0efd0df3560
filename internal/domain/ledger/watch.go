package ledger

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Watch implements Store.Subscribe on top of any Reader and Notifier.
// The listener is registered before the first load so no change between the two is lost.
func Watch(ctx context.Context, r Reader, n Notifier, c Collection) (<-chan Snapshot, error) {
	changes, err := n.Listen(ctx, c)
	if err != nil {
		return nil, err
	}

	out := make(chan Snapshot, 1)
	go func() {
		defer close(out)

		emit := func() bool {
			snap, err := Load(ctx, r, c)
			if err != nil {
				if ctx.Err() != nil {
					return false
				}
				log.Warn().Err(err).Str("collection", string(c)).Msg("ledger snapshot failed")
				return true
			}
			select {
			case out <- snap:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok || !emit() {
					return
				}
			}
		}
	}()
	return out, nil
}
