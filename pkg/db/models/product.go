package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lucaramirezo/products-ga/pkg/enums"
)

// Product is the priced entity, keyed by SKU.
type Product struct {
	SKU                string          `gorm:"column:sku;primaryKey"`
	Name               string          `gorm:"column:name;not null"`
	Category           string          `gorm:"column:category;not null;index"`
	SupplierID         *uuid.UUID      `gorm:"column:supplier_id;type:uuid;index"`
	CostPerArea        float64         `gorm:"column:cost_per_area;type:numeric(12,4);not null"`
	Area               float64         `gorm:"column:area;type:numeric(10,3);not null;default:1"`
	ActiveTier         int16           `gorm:"column:active_tier;not null;index"`
	OverrideMultiplier *float64        `gorm:"column:override_multiplier;type:numeric(10,4)"`
	OverrideLayerCount *int            `gorm:"column:override_layer_count"`
	InkEnabled         bool            `gorm:"column:ink_enabled;not null;default:true"`
	LamEnabled         bool            `gorm:"column:lam_enabled;not null;default:false"`
	CutEnabled         bool            `gorm:"column:cut_enabled;not null;default:false"`
	SellMode           enums.SellMode  `gorm:"column:sell_mode;not null;default:AREA"`
	SheetsCount        *int            `gorm:"column:sheets_count"`
	Status             enums.Lifecycle `gorm:"column:status;not null;default:active;index"`
	DeletedAt          *time.Time      `gorm:"column:deleted_at"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
