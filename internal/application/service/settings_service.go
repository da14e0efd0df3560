package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/creance-pos/internal/domain/entity"
	"github.com/sangkips/creance-pos/internal/domain/ledger"
	"github.com/sangkips/creance-pos/pkg/apperror"
)

// SettingsService manages the company profile printed on receipts
type SettingsService struct {
	store ledger.Store
	opts  SettlementOptions
}

// NewSettingsService creates a new settings service
func NewSettingsService(store ledger.Store, opts SettlementOptions) *SettingsService {
	return &SettingsService{store: store, opts: opts}
}

// GetCompanyProfile returns the company profile, creating the default one on first read
func (s *SettingsService) GetCompanyProfile(ctx context.Context) (*entity.CompanyProfile, error) {
	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()

	profile, err := s.store.GetCompanyProfile(ctx)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ledger.ErrNotFound) {
		return nil, err
	}

	profile = entity.DefaultCompanyProfile()
	if err := s.store.CommitBatch(ctx, ledger.NewBatch().SaveCompanyProfile(profile)); err != nil {
		return nil, apperror.NewStoreCommitFailure(err)
	}
	return profile, nil
}

// UpdateCompanyProfileInput represents the input for updating the company profile
type UpdateCompanyProfileInput struct {
	Name    string
	Address string
	Phone   string
	Logo    *string
}

// UpdateCompanyProfile replaces the company profile
func (s *SettingsService) UpdateCompanyProfile(ctx context.Context, input *UpdateCompanyProfileInput) (*entity.CompanyProfile, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "Company name is required"}})
	}

	profile := &entity.CompanyProfile{
		ID:      entity.CompanyProfileID,
		Name:    name,
		Address: strings.TrimSpace(input.Address),
		Phone:   strings.TrimSpace(input.Phone),
		Logo:    input.Logo,
	}

	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()
	if err := s.store.CommitBatch(ctx, ledger.NewBatch().SaveCompanyProfile(profile)); err != nil {
		return nil, apperror.NewStoreCommitFailure(err)
	}

	log.Info().Str("name", profile.Name).Msg("company profile updated")
	return s.store.GetCompanyProfile(ctx)
}

// receiptProfile is the read-only lookup used while building receipts.
// Receipts never fail because the profile is missing or unreadable.
func (s *SettingsService) receiptProfile(ctx context.Context) entity.CompanyProfile {
	ctx, cancel := s.opts.storeCtx(ctx)
	defer cancel()

	profile, err := s.store.GetCompanyProfile(ctx)
	if err != nil {
		if !errors.Is(err, ledger.ErrNotFound) {
			log.Warn().Err(err).Msg("company profile unavailable, using default on receipt")
		}
		return *entity.DefaultCompanyProfile()
	}
	return *profile
}
