package purchases

import (
	"github.com/lucaramirezo/products-ga/pkg/db/models"
	"github.com/lucaramirezo/products-ga/pkg/enums"
	pkgerrors "github.com/lucaramirezo/products-ga/pkg/errors"
)

// Linear-to-feet conversion factors.
const (
	feetPerInch       = 1.0 / 12.0
	feetPerMeter      = 3.28084
	feetPerCentimeter = 0.0328084
)

// ErrAreaUndetermined marks a line whose unit type has no defined area
// derivation. Roll purchases carry no business rule for area today, and
// an unknown area must never be read as zero cost.
var ErrAreaUndetermined = pkgerrors.New(pkgerrors.CodeUndetermined, "area cannot be derived for this unit type")

// Derived holds the normalized area and cost figures for one purchase line.
type Derived struct {
	AreaPerUnit float64
	AreaTotal   float64
	TotalCost   float64
	CostPerArea float64
}

// ToFeet converts a linear dimension to feet.
func ToFeet(value float64, uom enums.UOM) float64 {
	switch uom {
	case enums.UOMInches:
		return value * feetPerInch
	case enums.UOMMeters:
		return value * feetPerMeter
	case enums.UOMCentimeters:
		return value * feetPerCentimeter
	default:
		return value
	}
}

// DeriveLine normalizes a purchase line into square-foot area and cost
// figures. Flat-area lines already count area units, so one unit is one
// square foot. Sheet lines multiply their converted dimensions. Roll
// lines return ErrAreaUndetermined.
func DeriveLine(item *models.PurchaseItem) (Derived, error) {
	if item.Units <= 0 {
		return Derived{}, pkgerrors.New(pkgerrors.CodeValidation, "units must be positive").
			WithDetails(map[string]string{"units": "must be greater than zero"})
	}
	if item.UnitCost < 0 {
		return Derived{}, pkgerrors.New(pkgerrors.CodeValidation, "unit cost cannot be negative").
			WithDetails(map[string]string{"unit_cost": "must be zero or greater"})
	}

	var areaPerUnit float64
	switch item.UnitType {
	case enums.UnitTypeFlatArea:
		areaPerUnit = 1
	case enums.UnitTypeSheet:
		if item.Width == nil || item.Height == nil || *item.Width <= 0 || *item.Height <= 0 {
			return Derived{}, pkgerrors.New(pkgerrors.CodeValidation, "sheet lines require positive width and height").
				WithDetails(map[string]string{
					"width":  "required and must be greater than zero",
					"height": "required and must be greater than zero",
				})
		}
		areaPerUnit = ToFeet(*item.Width, item.UOM) * ToFeet(*item.Height, item.UOM)
	case enums.UnitTypeRoll:
		return Derived{}, ErrAreaUndetermined
	default:
		return Derived{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown unit type").
			WithDetails(map[string]string{"unit_type": "must be sheet, roll or flat_area"})
	}

	derived := Derived{
		AreaPerUnit: areaPerUnit,
		AreaTotal:   areaPerUnit * item.Units,
		TotalCost:   item.Units * item.UnitCost,
	}
	if derived.AreaTotal > 0 {
		derived.CostPerArea = derived.TotalCost / derived.AreaTotal
	}
	return derived, nil
}
