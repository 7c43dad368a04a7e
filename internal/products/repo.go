package products

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/lucaramirezo/products-ga/pkg/db/models"
	"github.com/lucaramirezo/products-ga/pkg/enums"
)

// ListFilter narrows the product listing.
type ListFilter struct {
	Category string
	Search   string
}

// Repository manages persistence for products.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) error
	Get(ctx context.Context, sku string) (*models.Product, error)
	List(ctx context.Context, filter ListFilter) ([]models.Product, error)
	Save(ctx context.Context, product *models.Product) error
	SoftDelete(ctx context.Context, product *models.Product) error
	TierExists(ctx context.Context, id int16) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a products repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) Get(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("sku = ? AND status = ?", sku, enums.LifecycleActive).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Where("status = ?", enums.LifecycleActive)
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("sku LIKE ? OR name LIKE ?", like, like)
	}

	var products []models.Product
	if err := query.Order("sku ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *repository) SoftDelete(ctx context.Context, product *models.Product) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(product).
		Updates(map[string]any{
			"status":     enums.LifecycleDeleted,
			"deleted_at": now,
		}).Error
}

func (r *repository) TierExists(ctx context.Context, id int16) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Tier{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
