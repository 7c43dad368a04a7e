package enums

import "fmt"

// SellMode defines whether a product is priced per unit area or as whole sheets.
type SellMode string

const (
	SellModeArea  SellMode = "AREA"
	SellModeSheet SellMode = "SHEET"
)

var validSellModes = []SellMode{
	SellModeArea,
	SellModeSheet,
}

// String implements fmt.Stringer.
func (m SellMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known SellMode.
func (m SellMode) IsValid() bool {
	for _, candidate := range validSellModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseSellMode converts raw input into a SellMode.
func ParseSellMode(value string) (SellMode, error) {
	for _, candidate := range validSellModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sell mode %q", value)
}
