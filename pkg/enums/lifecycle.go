package enums

import "fmt"

// Lifecycle is the explicit soft-delete status carried by mutable entities.
type Lifecycle string

const (
	LifecycleActive  Lifecycle = "active"
	LifecycleDeleted Lifecycle = "deleted"
)

var validLifecycles = []Lifecycle{
	LifecycleActive,
	LifecycleDeleted,
}

// String implements fmt.Stringer.
func (l Lifecycle) String() string {
	return string(l)
}

// IsValid reports whether the value is a known Lifecycle.
func (l Lifecycle) IsValid() bool {
	for _, candidate := range validLifecycles {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLifecycle converts raw input into a Lifecycle.
func ParseLifecycle(value string) (Lifecycle, error) {
	for _, candidate := range validLifecycles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lifecycle %q", value)
}
