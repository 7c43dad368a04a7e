package enums

import "fmt"

// Source identifies where a resolved pricing field came from.
type Source string

const (
	SourceProduct  Source = "product"
	SourceCategory Source = "category"
	SourceTier     Source = "tier"
)

var validSources = []Source{
	SourceProduct,
	SourceCategory,
	SourceTier,
}

// String implements fmt.Stringer.
func (s Source) String() string {
	return string(s)
}

// IsValid reports whether the value is a known Source.
func (s Source) IsValid() bool {
	for _, candidate := range validSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSource converts raw input into a Source.
func ParseSource(value string) (Source, error) {
	for _, candidate := range validSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid source %q", value)
}
