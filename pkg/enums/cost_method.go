package enums

import "fmt"

// CostMethod selects how the price book resolves a product's current cost.
// Only "latest" is defined today; the enum exists so new methods arrive as
// data instead of schema changes.
type CostMethod string

const (
	CostMethodLatest CostMethod = "latest"
)

var validCostMethods = []CostMethod{
	CostMethodLatest,
}

// String implements fmt.Stringer.
func (c CostMethod) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CostMethod.
func (c CostMethod) IsValid() bool {
	for _, candidate := range validCostMethods {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCostMethod converts raw input into a CostMethod.
func ParseCostMethod(value string) (CostMethod, error) {
	for _, candidate := range validCostMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cost method %q", value)
}
