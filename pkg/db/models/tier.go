package models

// Tier is one of the five fixed pricing levels. Multiplier scales the base
// material cost; LayerCount feeds the ink add-on.
type Tier struct {
	ID         int16   `gorm:"column:id;primaryKey"`
	Multiplier float64 `gorm:"column:multiplier;type:numeric(10,4);not null"`
	LayerCount int     `gorm:"column:layer_count;not null"`
}
