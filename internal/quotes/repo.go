package quotes

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lucaramirezo/products-ga/pkg/db/models"
	"github.com/lucaramirezo/products-ga/pkg/enums"
)

// Repository loads everything a price computation needs plus the cache table.
type Repository interface {
	GetProduct(ctx context.Context, sku string) (*models.Product, error)
	GetTier(ctx context.Context, id int16) (*models.Tier, error)
	GetRule(ctx context.Context, category string) (*models.CategoryRule, error)
	GetParams(ctx context.Context) (*models.PriceParams, error)
	GetCached(ctx context.Context, inputsHash string) (*models.PriceCacheRow, error)
	PutCached(ctx context.Context, row *models.PriceCacheRow) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a quotes repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetProduct(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("sku = ? AND status = ?", sku, enums.LifecycleActive).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) GetTier(ctx context.Context, id int16) (*models.Tier, error) {
	var tier models.Tier
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tier).Error; err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *repository) GetRule(ctx context.Context, category string) (*models.CategoryRule, error) {
	var rule models.CategoryRule
	if err := r.db.WithContext(ctx).Where("category = ?", category).First(&rule).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *repository) GetParams(ctx context.Context) (*models.PriceParams, error) {
	var params models.PriceParams
	if err := r.db.WithContext(ctx).Where("id = ?", 1).First(&params).Error; err != nil {
		return nil, err
	}
	return &params, nil
}

func (r *repository) GetCached(ctx context.Context, inputsHash string) (*models.PriceCacheRow, error) {
	var row models.PriceCacheRow
	err := r.db.WithContext(ctx).
		Where("inputs_hash = ?", inputsHash).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) PutCached(ctx context.Context, row *models.PriceCacheRow) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "inputs_hash"}},
			UpdateAll: true,
		}).
		Create(row).Error
}
