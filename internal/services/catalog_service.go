package services

import (
	"context"
	"fmt"

	apperrors "weddingbudget/internal/errors"
	"weddingbudget/internal/logger"
	"weddingbudget/internal/models"
	"weddingbudget/internal/money"
	"weddingbudget/internal/pagination"
	"weddingbudget/internal/repository"
)

// catalogService handles the vendor option catalog.
type catalogService struct {
	catalog repository.CatalogStore
}

// NewCatalogService creates a new CatalogServicer.
func NewCatalogService(catalog repository.CatalogStore) CatalogServicer {
	return &catalogService{catalog: catalog}
}

// ListOptions returns a page of active catalog entries, optionally limited to
// one category.
func (s *catalogService) ListOptions(ctx context.Context, category *models.Category, page pagination.PageRequest) (*pagination.PageResponse[models.VendorOption], error) {
	if category != nil && !category.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown category")
	}
	page.Defaults()

	opts, total, err := s.catalog.ListVendorOptions(ctx, category, true, page)
	if err != nil {
		return nil, storeError(err, apperrors.ErrOptionNotFound)
	}
	result := pagination.NewPageResponse(opts, page.Page, page.PageSize, total)
	return &result, nil
}

// ImportOptions writes catalog entries and returns how many were accepted.
// Existing entries are replaced only with overwrite.
func (s *catalogService) ImportOptions(ctx context.Context, opts []models.VendorOption, overwrite bool) (int, error) {
	for i := range opts {
		if err := validateVendorOption(&opts[i]); err != nil {
			return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("option %d: %s", i, err))
		}
	}
	if err := s.catalog.UpsertVendorOptions(ctx, opts, overwrite); err != nil {
		return 0, storeError(err, apperrors.ErrOptionNotFound)
	}
	logger.Get().Infow("vendor options imported", "count", len(opts), "overwrite", overwrite)
	return len(opts), nil
}

// EnsureDefaults inserts the built-in catalog entries that are missing.
// Entries already present are left as they are.
func (s *catalogService) EnsureDefaults(ctx context.Context) error {
	if err := s.catalog.UpsertVendorOptions(ctx, SeedCatalog(), false); err != nil {
		return storeError(err, apperrors.ErrOptionNotFound)
	}
	return nil
}

func validateVendorOption(v *models.VendorOption) error {
	switch {
	case v.ID == "":
		return fmt.Errorf("id is required")
	case v.Name == "":
		return fmt.Errorf("name is required")
	case !v.Category.IsValid():
		return fmt.Errorf("unknown category %q", v.Category)
	case money.CheckAmount(v.PriceCents) != nil:
		return fmt.Errorf("price_cents must be between 0 and %d", money.MaxCents)
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	if v.Reasons == nil {
		v.Reasons = []string{}
	}
	return nil
}
