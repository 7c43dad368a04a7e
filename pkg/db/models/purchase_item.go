package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lucaramirezo/products-ga/pkg/enums"
)

// PurchaseItem is one line on a purchase. The Area*/Cost* columns are
// derived at write time; AreaPerUnit stays NULL when the unit type does
// not determine an area (rolls).
type PurchaseItem struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PurchaseID    uuid.UUID       `gorm:"column:purchase_id;type:uuid;not null;index"`
	ProductSKU    *string         `gorm:"column:product_sku;index"`
	Description   string          `gorm:"column:description;not null"`
	UnitType      enums.UnitType  `gorm:"column:unit_type;not null"`
	Units         float64         `gorm:"column:units;type:numeric(12,4);not null"`
	Width         *float64        `gorm:"column:width;type:numeric(12,4)"`
	Height        *float64        `gorm:"column:height;type:numeric(12,4)"`
	UOM           enums.UOM       `gorm:"column:uom;not null;default:ft"`
	UnitCost      float64         `gorm:"column:unit_cost;type:numeric(12,4);not null"`
	AreaPerUnit   *float64        `gorm:"column:area_per_unit;type:numeric(12,4)"`
	AreaTotal     *float64        `gorm:"column:area_total;type:numeric(12,4)"`
	TotalCost     *float64        `gorm:"column:total_cost;type:numeric(12,2)"`
	CostPerArea   *float64        `gorm:"column:cost_per_area;type:numeric(12,6)"`
	GeneratePrice bool            `gorm:"column:generate_price;not null;default:false"`
	Status        enums.Lifecycle `gorm:"column:status;not null;default:active"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
