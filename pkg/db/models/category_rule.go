package models

// CategoryRule overrides tier defaults for every product in a category.
// At most one rule exists per category; nil fields mean "no override".
type CategoryRule struct {
	Category           string   `gorm:"column:category;primaryKey"`
	OverrideMultiplier *float64 `gorm:"column:override_multiplier;type:numeric(10,4)"`
	OverrideLayerCount *int     `gorm:"column:override_layer_count"`
}
