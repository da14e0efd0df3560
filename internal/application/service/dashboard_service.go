package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/creance-pos/internal/domain/ledger"
	"github.com/sangkips/creance-pos/internal/domain/report"
	"golang.org/x/sync/errgroup"
)

var dashboardCollections = []ledger.Collection{
	ledger.Products,
	ledger.Customers,
	ledger.Categories,
	ledger.Sales,
}

const (
	resubscribeMinDelay = 500 * time.Millisecond
	resubscribeMaxDelay = 30 * time.Second
)

// DashboardService keeps live snapshots of the collections the dashboard reads
// and computes the summary from them.
type DashboardService struct {
	store ledger.Store
	opts  SettlementOptions

	mu    sync.RWMutex
	snaps map[ledger.Collection]ledger.Snapshot
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(store ledger.Store, opts SettlementOptions) *DashboardService {
	return &DashboardService{
		store: store,
		opts:  opts,
		snaps: make(map[ledger.Collection]ledger.Snapshot),
	}
}

// Run subscribes to every dashboard collection until ctx is cancelled.
// A subscription that ends early is re-established with backoff.
func (s *DashboardService) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range dashboardCollections {
		c := c
		g.Go(func() error {
			s.follow(ctx, c)
			return nil
		})
	}
	return g.Wait()
}

func (s *DashboardService) follow(ctx context.Context, c ledger.Collection) {
	delay := resubscribeMinDelay
	for {
		snaps, err := s.store.Subscribe(ctx, c)
		if err != nil {
			log.Warn().Err(err).Str("collection", string(c)).Dur("retry_in", delay).Msg("dashboard subscription failed")
		} else {
			for snap := range snaps {
				s.mu.Lock()
				s.snaps[c] = snap
				s.mu.Unlock()
				delay = resubscribeMinDelay
			}
		}

		if ctx.Err() != nil {
			return
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		delay *= 2
		if delay > resubscribeMaxDelay {
			delay = resubscribeMaxDelay
		}
	}
}

// Ready reports whether every dashboard collection has a live snapshot.
func (s *DashboardService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snaps) == len(dashboardCollections)
}

// Stats returns the dashboard summary from the live snapshots, loading
// directly from the store while they are not yet available.
func (s *DashboardService) Stats(ctx context.Context) (*report.Summary, error) {
	in, ok := s.cached()
	if !ok {
		var err error
		in, err = s.load(ctx)
		if err != nil {
			return nil, err
		}
	}
	summary := report.Summarize(in, s.opts.now())
	return &summary, nil
}

func (s *DashboardService) cached() (report.Input, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.snaps) != len(dashboardCollections) {
		return report.Input{}, false
	}
	return report.Input{
		Products:   s.snaps[ledger.Products].Products,
		Customers:  s.snaps[ledger.Customers].Customers,
		Categories: s.snaps[ledger.Categories].Categories,
		Sales:      s.snaps[ledger.Sales].Sales,
	}, true
}

func (s *DashboardService) load(ctx context.Context) (report.Input, error) {
	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()

	snaps := make([]ledger.Snapshot, len(dashboardCollections))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range dashboardCollections {
		i, c := i, c
		g.Go(func() error {
			snap, err := ledger.Load(gctx, s.store, c)
			if err != nil {
				return fmt.Errorf("load %s: %w", c, err)
			}
			snaps[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report.Input{}, err
	}

	return report.Input{
		Products:   snaps[0].Products,
		Customers:  snaps[1].Customers,
		Categories: snaps[2].Categories,
		Sales:      snaps[3].Sales,
	}, nil
}
