package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lucaramirezo/products-ga/pkg/enums"
)

// PriceEntry is one historical cost-per-area observation for a product.
// At most one active entry per product carries Pinned=true; the price book
// service owns that invariant.
type PriceEntry struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductSKU    string          `gorm:"column:product_sku;not null;index"`
	SupplierID    *uuid.UUID      `gorm:"column:supplier_id;type:uuid"`
	SourceItemID  *uuid.UUID      `gorm:"column:source_item_id;type:uuid"`
	EffectiveDate time.Time       `gorm:"column:effective_date;not null"`
	CostPerArea   float64         `gorm:"column:cost_per_area;type:numeric(12,4);not null"`
	Currency      string          `gorm:"column:currency;not null"`
	Pinned        bool            `gorm:"column:pinned;not null;default:false"`
	Notes         *string         `gorm:"column:notes"`
	Status        enums.Lifecycle `gorm:"column:status;not null;default:active;index"`
	DeletedAt     *time.Time      `gorm:"column:deleted_at"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
