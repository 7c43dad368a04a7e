package categoryrules

import (
	"context"

	"gorm.io/gorm"

	"github.com/lucaramirezo/products-ga/pkg/db/models"
)

// Repository manages persistence for per-category overrides.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.CategoryRule, error)
	Get(ctx context.Context, category string) (*models.CategoryRule, error)
	Save(ctx context.Context, rule *models.CategoryRule) error
	Delete(ctx context.Context, category string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a category rules repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context) ([]models.CategoryRule, error) {
	var rules []models.CategoryRule
	if err := r.db.WithContext(ctx).Order("category ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repository) Get(ctx context.Context, category string) (*models.CategoryRule, error) {
	var rule models.CategoryRule
	if err := r.db.WithContext(ctx).Where("category = ?", category).First(&rule).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *repository) Save(ctx context.Context, rule *models.CategoryRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *repository) Delete(ctx context.Context, category string) error {
	return r.db.WithContext(ctx).
		Where("category = ?", category).
		Delete(&models.CategoryRule{}).Error
}
