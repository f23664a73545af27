// Package repository is the storage boundary for plans, their decision items,
// and the vendor option catalog. Callers get ErrNotFound for missing rows and
// the driver error, wrapped, for everything else.
package repository

import (
	"context"
	"errors"

	"weddingbudget/internal/models"
	"weddingbudget/internal/pagination"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("repository: record not found")

// PlanStore reads and writes plans and their decision items.
type PlanStore interface {
	// Transaction runs fn against a store bound to one database transaction.
	// The transaction commits when fn returns nil.
	Transaction(ctx context.Context, fn func(tx PlanStore) error) error

	// FindPlanByUser returns the user's plan. With forUpdate the row stays
	// locked until the surrounding transaction ends.
	FindPlanByUser(ctx context.Context, userID string, forUpdate bool) (*models.Plan, error)

	// CreatePlan inserts a plan and its initial decision items atomically.
	CreatePlan(ctx context.Context, plan *models.Plan, items []models.DecisionItem) error

	// UpdatePlan writes the named columns of plan.
	UpdatePlan(ctx context.Context, plan *models.Plan, columns ...string) error

	// ListDecisions returns a plan's items ordered by impact descending,
	// then category and id ascending.
	ListDecisions(ctx context.Context, planID string) ([]models.DecisionItem, error)

	// SaveDecision writes every column of item.
	SaveDecision(ctx context.Context, item *models.DecisionItem) error
}

// CatalogStore reads and writes vendor catalog entries.
type CatalogStore interface {
	FindVendorOption(ctx context.Context, id string) (*models.VendorOption, error)
	ListVendorOptions(ctx context.Context, category *models.Category, activeOnly bool, page pagination.PageRequest) ([]models.VendorOption, int64, error)
	// DefaultOptions returns the active entries of a category by sort order.
	DefaultOptions(ctx context.Context, category models.Category) ([]models.VendorOption, error)
	// UpsertVendorOptions inserts entries. Existing ids are overwritten when
	// overwrite is set and left alone otherwise.
	UpsertVendorOptions(ctx context.Context, opts []models.VendorOption, overwrite bool) error
}

// QuizStore records onboarding quiz submissions.
type QuizStore interface {
	SaveQuizResponse(ctx context.Context, resp *models.QuizResponse) error
	// LatestQuizResponse returns the user's most recent submission.
	LatestQuizResponse(ctx context.Context, userID string) (*models.QuizResponse, error)
}
