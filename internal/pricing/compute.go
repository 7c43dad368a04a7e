package pricing

import (
	"github.com/lucaramirezo/products-ga/pkg/db/models"
	"github.com/lucaramirezo/products-ga/pkg/enums"
)

// minArea clamps degenerate areas so per-area figures stay finite.
// Products are validated to area > 0 upstream; this is a last resort.
const minArea = 0.0001

// Toggles selects which add-ons the caller wants applied. An add-on is
// charged only when it is both requested here and enabled on the product.
type Toggles struct {
	Ink        bool `json:"ink"`
	Lamination bool `json:"lamination"`
	Cut        bool `json:"cut"`
}

// Input bundles everything Compute needs. CostPerArea defaults to the
// product's stored cost; callers resolving cost from the price book set
// CostOverride instead.
type Input struct {
	Product      *models.Product
	Tier         *models.Tier
	Rule         *models.CategoryRule
	Params       *models.PriceParams
	Toggles      Toggles
	CostOverride *float64
}

// Breakdown is the full result of one price computation. It is derived
// on demand and never persisted as-is.
type Breakdown struct {
	SKU           string    `json:"sku"`
	Area          float64   `json:"area"`
	CostPerArea   float64   `json:"cost_per_area"`
	BasePerArea   float64   `json:"base_per_area"`
	BaseTotal     float64   `json:"base_total"`
	InkAdd        float64   `json:"ink_add"`
	LaminationAdd float64   `json:"lamination_add"`
	CutAdd        float64   `json:"cut_add"`
	AddonsTotal   float64   `json:"addons_total"`
	RawTotal      float64   `json:"raw_total"`
	Final         float64   `json:"final"`
	FinalPerArea  float64   `json:"final_per_area"`
	Effective     Effective `json:"effective"`
}

// Compute runs the pricing formula for one product.
//
// The base charge is costPerArea scaled by the effective multiplier over
// the product's area. Ink charges per layer per area, lamination per
// area, and the cut charge is a fraction of the base material total. Cut
// only applies to area-sold products; sheet-sold products account for
// cutting elsewhere and the add-on is forced to zero no matter the
// toggles. The raw total is then rounded up to the configured step.
func Compute(in Input) Breakdown {
	eff := ResolveEffective(in.Product, in.Tier, in.Rule)

	area := in.Product.Area
	if area < minArea {
		area = minArea
	}

	costPerArea := in.Product.CostPerArea
	if in.CostOverride != nil {
		costPerArea = *in.CostOverride
	}

	basePerArea := costPerArea * eff.Multiplier
	baseTotal := basePerArea * area

	var inkAdd float64
	if in.Toggles.Ink && in.Product.InkEnabled {
		inkAdd = in.Params.InkPrice * float64(eff.LayerCount) * area
	}

	var lamAdd float64
	if in.Toggles.Lamination && in.Product.LamEnabled {
		lamAdd = in.Params.LaminationPrice * area
	}

	var cutAdd float64
	if in.Product.SellMode == enums.SellModeArea && in.Toggles.Cut && in.Product.CutEnabled {
		cutAdd = in.Params.CutFactor * baseTotal
	}

	addons := inkAdd + lamAdd + cutAdd
	raw := baseTotal + addons
	final := RoundUp(raw, in.Params.RoundingStep)

	return Breakdown{
		SKU:           in.Product.SKU,
		Area:          area,
		CostPerArea:   costPerArea,
		BasePerArea:   basePerArea,
		BaseTotal:     baseTotal,
		InkAdd:        inkAdd,
		LaminationAdd: lamAdd,
		CutAdd:        cutAdd,
		AddonsTotal:   addons,
		RawTotal:      raw,
		Final:         final,
		FinalPerArea:  final / area,
		Effective:     eff,
	}
}
