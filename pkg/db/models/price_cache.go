package models

import (
	"encoding/json"
	"time"
)

// PriceCacheRow memoizes one computed price keyed by a hash of every
// input that fed the computation. Rows are overwritten in place and
// consulted best-effort; a miss or stale row never fails a quote.
type PriceCacheRow struct {
	InputsHash string          `gorm:"column:inputs_hash;primaryKey"`
	SKU        string          `gorm:"column:sku;not null;index"`
	Final      float64         `gorm:"column:final;type:numeric(12,2);not null"`
	Breakdown  json.RawMessage `gorm:"column:breakdown;type:jsonb;not null"`
	ComputedAt time.Time       `gorm:"column:computed_at;not null"`
}

func (PriceCacheRow) TableName() string { return "price_cache" }
