package enums

import (
	"fmt"
	"strings"
)

// UnitType describes how a product is sold: by the piece or by weight.
type UnitType string

const (
	UnitTypeItem   UnitType = "item"
	UnitTypeWeight UnitType = "weight"
)

var validUnitTypes = []UnitType{
	UnitTypeItem,
	UnitTypeWeight,
}

// String implements fmt.Stringer.
func (u UnitType) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UnitType.
func (u UnitType) IsValid() bool {
	for _, candidate := range validUnitTypes {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUnitType converts raw input into a UnitType.
func ParseUnitType(value string) (UnitType, error) {
	for _, candidate := range validUnitTypes {
		if string(candidate) == strings.ToLower(strings.TrimSpace(value)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid unit type %q", value)
}
