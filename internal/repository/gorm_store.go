package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"weddingbudget/internal/models"
	"weddingbudget/internal/pagination"
)

type gormPlanStore struct {
	db *gorm.DB
}

// NewPlanStore returns a PlanStore backed by db.
func NewPlanStore(db *gorm.DB) PlanStore {
	return &gormPlanStore{db: db}
}

func (s *gormPlanStore) Transaction(ctx context.Context, fn func(tx PlanStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormPlanStore{db: tx})
	})
}

func (s *gormPlanStore) FindPlanByUser(ctx context.Context, userID string, forUpdate bool) (*models.Plan, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if forUpdate {
		// SQLite ignores row locks; the per-plan lock covers it there.
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var plan models.Plan
	if err := q.First(&plan).Error; err != nil {
		return nil, translate(err, "find plan")
	}
	return &plan, nil
}

func (s *gormPlanStore) CreatePlan(ctx context.Context, plan *models.Plan, items []models.DecisionItem) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(plan).Error; err != nil {
			return fmt.Errorf("create plan: %w", err)
		}
		for i := range items {
			items[i].PlanID = plan.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("create decision items: %w", err)
			}
		}
		return nil
	})
}

func (s *gormPlanStore) UpdatePlan(ctx context.Context, plan *models.Plan, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(plan).Select(columns).Updates(plan)
	if res.Error != nil {
		return fmt.Errorf("update plan: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormPlanStore) ListDecisions(ctx context.Context, planID string) ([]models.DecisionItem, error) {
	var items []models.DecisionItem
	err := s.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("impact_score DESC").
		Order("category ASC").
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	return items, nil
}

func (s *gormPlanStore) SaveDecision(ctx context.Context, item *models.DecisionItem) error {
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return fmt.Errorf("save decision %s: %w", item.ID, err)
	}
	return nil
}

type gormCatalogStore struct {
	db *gorm.DB
}

// NewCatalogStore returns a CatalogStore backed by db.
func NewCatalogStore(db *gorm.DB) CatalogStore {
	return &gormCatalogStore{db: db}
}

func (s *gormCatalogStore) FindVendorOption(ctx context.Context, id string) (*models.VendorOption, error) {
	var opt models.VendorOption
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&opt).Error; err != nil {
		return nil, translate(err, "find vendor option")
	}
	return &opt, nil
}

func (s *gormCatalogStore) ListVendorOptions(
	ctx context.Context,
	category *models.Category,
	activeOnly bool,
	page pagination.PageRequest,
) ([]models.VendorOption, int64, error) {
	page.Defaults()

	scoped := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.VendorOption{})
		if category != nil {
			q = q.Where("category = ?", *category)
		}
		if activeOnly {
			q = q.Where("is_active = ?", true)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count vendor options: %w", err)
	}

	var opts []models.VendorOption
	err := scoped().Order("category ASC").Order("sort_order ASC").Order("id ASC").
		Scopes(pagination.Paginate(page)).
		Find(&opts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list vendor options: %w", err)
	}
	return opts, total, nil
}

func (s *gormCatalogStore) DefaultOptions(ctx context.Context, category models.Category) ([]models.VendorOption, error) {
	var opts []models.VendorOption
	err := s.db.WithContext(ctx).
		Where("category = ? AND is_active = ?", category, true).
		Order("sort_order ASC").
		Order("id ASC").
		Find(&opts).Error
	if err != nil {
		return nil, fmt.Errorf("default options for %s: %w", category, err)
	}
	return opts, nil
}

func (s *gormCatalogStore) UpsertVendorOptions(ctx context.Context, opts []models.VendorOption, overwrite bool) error {
	if len(opts) == 0 {
		return nil
	}
	conflict := clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}
	if overwrite {
		conflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"category", "name", "price_cents", "tags", "reasons", "sort_order", "is_active", "updated_at"}),
		}
	}
	if err := s.db.WithContext(ctx).Clauses(conflict).Create(&opts).Error; err != nil {
		return fmt.Errorf("upsert vendor options: %w", err)
	}
	return nil
}

func translate(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

type gormQuizStore struct {
	db *gorm.DB
}

// NewQuizStore returns a QuizStore backed by db.
func NewQuizStore(db *gorm.DB) QuizStore {
	return &gormQuizStore{db: db}
}

func (s *gormQuizStore) SaveQuizResponse(ctx context.Context, resp *models.QuizResponse) error {
	if err := s.db.WithContext(ctx).Create(resp).Error; err != nil {
		return fmt.Errorf("save quiz response: %w", err)
	}
	return nil
}

func (s *gormQuizStore) LatestQuizResponse(ctx context.Context, userID string) (*models.QuizResponse, error) {
	var resp models.QuizResponse
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC").First(&resp).Error
	if err != nil {
		return nil, translate(err, "latest quiz response")
	}
	return &resp, nil
}
