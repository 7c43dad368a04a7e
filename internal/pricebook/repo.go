package pricebook

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lucaramirezo/products-ga/pkg/db/models"
	"github.com/lucaramirezo/products-ga/pkg/enums"
)

// Repository manages persistence for price book entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.PriceEntry) error
	Get(ctx context.Context, id uuid.UUID) (*models.PriceEntry, error)
	ListByProduct(ctx context.Context, sku string) ([]models.PriceEntry, error)
	ResolveCurrent(ctx context.Context, sku string) (*models.PriceEntry, error)
	LockProduct(ctx context.Context, sku string) (*models.Product, error)
	UnpinAll(ctx context.Context, sku string) error
	SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error
	Save(ctx context.Context, entry *models.PriceEntry) error
	SoftDelete(ctx context.Context, entry *models.PriceEntry) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a price book repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.PriceEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*models.PriceEntry, error) {
	var entry models.PriceEntry
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) ListByProduct(ctx context.Context, sku string) ([]models.PriceEntry, error) {
	var entries []models.PriceEntry
	if err := r.db.WithContext(ctx).
		Where("product_sku = ? AND status = ?", sku, enums.LifecycleActive).
		Order("effective_date DESC, created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ResolveCurrent prefers the pinned entry; when none is pinned it takes the
// latest effective date, breaking ties on creation order. Future effective
// dates are not filtered here.
func (r *repository) ResolveCurrent(ctx context.Context, sku string) (*models.PriceEntry, error) {
	var entry models.PriceEntry
	err := r.db.WithContext(ctx).
		Where("product_sku = ? AND status = ?", sku, enums.LifecycleActive).
		Order("pinned DESC, effective_date DESC, created_at DESC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// LockProduct takes a row lock on the product so concurrent pin sequences
// for the same SKU serialize. SQLite has no FOR UPDATE; its writer lock
// already serializes transactions.
func (r *repository) LockProduct(ctx context.Context, sku string) (*models.Product, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var product models.Product
	err := query.
		Where("sku = ? AND status = ?", sku, enums.LifecycleActive).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) UnpinAll(ctx context.Context, sku string) error {
	return r.db.WithContext(ctx).
		Model(&models.PriceEntry{}).
		Where("product_sku = ? AND pinned = ?", sku, true).
		Update("pinned", false).Error
}

func (r *repository) SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error {
	return r.db.WithContext(ctx).
		Model(&models.PriceEntry{}).
		Where("id = ?", id).
		Update("pinned", pinned).Error
}

func (r *repository) Save(ctx context.Context, entry *models.PriceEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *repository) SoftDelete(ctx context.Context, entry *models.PriceEntry) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(entry).
		Updates(map[string]any{
			"status":     enums.LifecycleDeleted,
			"deleted_at": now,
			"pinned":     false,
		}).Error
}
