package enums

import "fmt"

// OutletType distinguishes fully onboarded outlets from "lite" outlets
// that operate without a payment gateway.
type OutletType string

const (
	OutletTypeStandard OutletType = "standard"
	OutletTypeLite     OutletType = "lite"
)

var validOutletTypes = []OutletType{
	OutletTypeStandard,
	OutletTypeLite,
}

// String implements fmt.Stringer.
func (o OutletType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OutletType.
func (o OutletType) IsValid() bool {
	for _, candidate := range validOutletTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOutletType converts raw input into an OutletType.
func ParseOutletType(value string) (OutletType, error) {
	for _, candidate := range validOutletTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outlet type %q", value)
}
