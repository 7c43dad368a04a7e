package models

import (
	"time"

	"github.com/lucaramirezo/products-ga/pkg/enums"
)

// PriceParams is the singleton row of process-wide pricing constants.
// The ID is pinned to 1 so updates always target the same row.
type PriceParams struct {
	ID              int16            `gorm:"column:id;primaryKey;default:1"`
	InkPrice        float64          `gorm:"column:ink_price;type:numeric(10,4);not null"`
	LaminationPrice float64          `gorm:"column:lamination_price;type:numeric(10,4);not null"`
	CutPrice        float64          `gorm:"column:cut_price;type:numeric(10,4);not null"`
	CutFactor       float64          `gorm:"column:cut_factor;type:numeric(10,4);not null"`
	RoundingStep    float64          `gorm:"column:rounding_step;type:numeric(10,4);not null"`
	CostMethod      enums.CostMethod `gorm:"column:cost_method;not null;default:latest"`
	DefaultTier     int16            `gorm:"column:default_tier;not null"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the singleton in price_params.
func (PriceParams) TableName() string {
	return "price_params"
}
