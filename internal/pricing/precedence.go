package pricing

import (
	"github.com/lucaramirezo/products-ga/pkg/db/models"
	"github.com/lucaramirezo/products-ga/pkg/enums"
)

// Effective carries the resolved multiplier and layer count together with
// the source each field was taken from.
type Effective struct {
	Multiplier       float64      `json:"multiplier"`
	LayerCount       int          `json:"layer_count"`
	MultiplierSource enums.Source `json:"multiplier_source"`
	LayerCountSource enums.Source `json:"layer_count_source"`
}

// ResolveEffective picks the multiplier and layer count for a product.
// Each field resolves independently: a product override wins, then a
// category rule override, then the active tier. The tier is always
// defined, so resolution cannot fail; a missing category rule simply
// means the rule level contributes nothing.
func ResolveEffective(product *models.Product, tier *models.Tier, rule *models.CategoryRule) Effective {
	eff := Effective{
		Multiplier:       tier.Multiplier,
		LayerCount:       tier.LayerCount,
		MultiplierSource: enums.SourceTier,
		LayerCountSource: enums.SourceTier,
	}

	if rule != nil {
		if rule.OverrideMultiplier != nil {
			eff.Multiplier = *rule.OverrideMultiplier
			eff.MultiplierSource = enums.SourceCategory
		}
		if rule.OverrideLayerCount != nil {
			eff.LayerCount = *rule.OverrideLayerCount
			eff.LayerCountSource = enums.SourceCategory
		}
	}

	if product.OverrideMultiplier != nil {
		eff.Multiplier = *product.OverrideMultiplier
		eff.MultiplierSource = enums.SourceProduct
	}
	if product.OverrideLayerCount != nil {
		eff.LayerCount = *product.OverrideLayerCount
		eff.LayerCountSource = enums.SourceProduct
	}

	return eff
}
