package tiers

import (
	"context"

	"gorm.io/gorm"

	"github.com/lucaramirezo/products-ga/pkg/db/models"
)

// Repository manages persistence for pricing tiers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.Tier, error)
	Get(ctx context.Context, id int16) (*models.Tier, error)
	Save(ctx context.Context, tier *models.Tier) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a tiers repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context) ([]models.Tier, error) {
	var tiers []models.Tier
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}

func (r *repository) Get(ctx context.Context, id int16) (*models.Tier, error) {
	var tier models.Tier
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tier).Error; err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *repository) Save(ctx context.Context, tier *models.Tier) error {
	return r.db.WithContext(ctx).Save(tier).Error
}
