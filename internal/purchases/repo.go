package purchases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucaramirezo/products-ga/pkg/db/models"
	"github.com/lucaramirezo/products-ga/pkg/enums"
	"github.com/lucaramirezo/products-ga/pkg/pagination"
)

// ListFilter narrows the purchase listing.
type ListFilter struct {
	SupplierID *uuid.UUID
	Invoice    string
	DateFrom   *time.Time
	DateTo     *time.Time
}

// Repository manages persistence for purchases and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, purchase *models.Purchase) error
	CreateItems(ctx context.Context, items []models.PurchaseItem) error
	Get(ctx context.Context, id uuid.UUID) (*models.Purchase, error)
	GetByInvoice(ctx context.Context, supplierID uuid.UUID, invoiceNo string) (*models.Purchase, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Purchase, error)
	Save(ctx context.Context, purchase *models.Purchase) error
	SoftDelete(ctx context.Context, purchase *models.Purchase) error
	GetActiveSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	GetActiveProduct(ctx context.Context, sku string) (*models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a purchases repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, purchase *models.Purchase) error {
	return r.db.WithContext(ctx).Omit("Items").Create(purchase).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.PurchaseItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Items", "status = ?", enums.LifecycleActive).
		Where("id = ? AND status = ?", id, enums.LifecycleActive).
		First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *repository) GetByInvoice(ctx context.Context, supplierID uuid.UUID, invoiceNo string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Items", "status = ?", enums.LifecycleActive).
		Where("supplier_id = ? AND invoice_no = ? AND status = ?", supplierID, invoiceNo, enums.LifecycleActive).
		First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Purchase, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", enums.LifecycleActive)

	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Invoice != "" {
		query = query.Where("invoice_no LIKE ?", "%"+filter.Invoice+"%")
	}
	if filter.DateFrom != nil {
		query = query.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("date <= ?", *filter.DateTo)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var purchases []models.Purchase
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *repository) GetActiveSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	err := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, enums.LifecycleActive).
		First(&supplier).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *repository) GetActiveProduct(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("sku = ? AND status = ?", sku, enums.LifecycleActive).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) Save(ctx context.Context, purchase *models.Purchase) error {
	return r.db.WithContext(ctx).Omit("Items").Save(purchase).Error
}

func (r *repository) SoftDelete(ctx context.Context, purchase *models.Purchase) error {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).
		Model(&models.PurchaseItem{}).
		Where("purchase_id = ?", purchase.ID).
		Update("status", enums.LifecycleDeleted).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(purchase).
		Omit("Items").
		Updates(map[string]any{
			"status":     enums.LifecycleDeleted,
			"deleted_at": now,
		}).Error
}
