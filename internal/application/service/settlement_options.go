package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/creance-pos/internal/config"
	"github.com/sangkips/creance-pos/internal/domain/ledger"
	"github.com/sangkips/creance-pos/internal/domain/settlement"
	"github.com/sangkips/creance-pos/pkg/apperror"
)

// SettlementOptions are the knobs shared by every workflow that writes to the ledger.
type SettlementOptions struct {
	Pricing      settlement.Pricing
	MaxAttempts  int
	StoreTimeout time.Duration
	Location     *time.Location
	Now          func() time.Time
}

func DefaultSettlementOptions() SettlementOptions {
	return SettlementOptions{
		Pricing:      settlement.DefaultPricing(),
		MaxAttempts:  3,
		StoreTimeout: 5 * time.Second,
		Location:     time.UTC,
		Now:          time.Now,
	}
}

// SettlementOptionsFromConfig builds options from the loaded configuration.
func SettlementOptionsFromConfig(cfg *config.Config) (SettlementOptions, error) {
	policy, err := settlement.ParseDiscountPolicy(cfg.Settlement.DiscountPolicy)
	if err != nil {
		return SettlementOptions{}, err
	}
	opts := DefaultSettlementOptions()
	opts.Pricing = settlement.NewPricing(cfg.Settlement.VATRate, cfg.Settlement.RoundingPlaces, policy)
	if cfg.Settlement.MaxAttempts > 0 {
		opts.MaxAttempts = cfg.Settlement.MaxAttempts
	}
	if cfg.Settlement.StoreTimeout > 0 {
		opts.StoreTimeout = cfg.Settlement.StoreTimeout
	}
	opts.Location = cfg.App.Location()
	return opts, nil
}

func (o SettlementOptions) now() time.Time {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	loc := o.Location
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc)
}

func (o SettlementOptions) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.StoreTimeout)
}

// retryOnConflict runs attempt until it succeeds, fails with anything other than a
// guard conflict, or runs out of attempts. Each attempt re-reads and re-validates, so
// a precondition that no longer holds surfaces as its own error.
func (o SettlementOptions) retryOnConflict(ctx context.Context, operation string, attempt func(ctx context.Context) error) error {
	maxAttempts := o.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for n := 1; n <= maxAttempts; n++ {
		if err := ctx.Err(); err != nil {
			return apperror.NewStoreCommitFailure(err)
		}

		attemptCtx, cancel := o.storeCtx(ctx)
		err := attempt(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}
		if !errors.Is(err, ledger.ErrConflict) {
			return err
		}
		lastErr = err
		log.Debug().Err(err).Str("operation", operation).Int("attempt", n).Msg("ledger guard conflict, re-validating")
	}

	log.Warn().Err(lastErr).Str("operation", operation).Int("attempts", maxAttempts).Msg("giving up after repeated ledger conflicts")
	return apperror.NewStoreCommitFailure(lastErr)
}

// workflowCommitError classifies a CommitBatch error inside a retried workflow.
// A record that vanished between read and commit is retried like a failed guard.
func workflowCommitError(err error) error {
	if errors.Is(err, ledger.ErrConflict) {
		return err
	}
	if errors.Is(err, ledger.ErrNotFound) {
		return fmt.Errorf("%w: %v", ledger.ErrConflict, err)
	}
	return apperror.NewStoreCommitFailure(err)
}

// catalogCommitError classifies a CommitBatch error for single-shot catalog writes.
func catalogCommitError(err error, resource string) error {
	if errors.Is(err, ledger.ErrNotFound) {
		return apperror.NewNotFoundError(resource)
	}
	if errors.Is(err, ledger.ErrConflict) {
		return apperror.NewConflictError(resource + " changed since it was read, reload and try again")
	}
	return apperror.NewStoreCommitFailure(err)
}

// lookupError converts a failed ledger read into a domain error.
func lookupError(err error, resource string) error {
	if errors.Is(err, ledger.ErrNotFound) {
		return apperror.NewNotFoundError(resource)
	}
	return fmt.Errorf("load %s: %w", resource, err)
}
