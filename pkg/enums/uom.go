package enums

import "fmt"

// UOM is the linear unit of measure for purchase line dimensions.
type UOM string

const (
	UOMFeet        UOM = "ft"
	UOMInches      UOM = "in"
	UOMMeters      UOM = "m"
	UOMCentimeters UOM = "cm"
)

var validUOMs = []UOM{
	UOMFeet,
	UOMInches,
	UOMMeters,
	UOMCentimeters,
}

// String implements fmt.Stringer.
func (u UOM) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UOM.
func (u UOM) IsValid() bool {
	for _, candidate := range validUOMs {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUOM converts raw input into a UOM.
func ParseUOM(value string) (UOM, error) {
	for _, candidate := range validUOMs {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid unit of measure %q", value)
}
