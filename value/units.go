package value

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// unitFamily groups interconvertible units under one base unit, with a
// multiplier to convert a quantity of that unit into the base unit.
type unitFamily struct {
	base       string
	multiplier map[string]decimal.Decimal
}

// units is a small, extensible static table. Blocks needing a unit outside
// this table should register it via RegisterUnit during init.
var units = map[string]unitFamily{
	"meter": {
		base: "meter",
		multiplier: map[string]decimal.Decimal{
			"meter":      decimal.NewFromInt(1),
			"kilometer":  decimal.NewFromInt(1000),
			"centimeter": decimal.NewFromFloat(0.01),
		},
	},
	"second": {
		base: "second",
		multiplier: map[string]decimal.Decimal{
			"second":      decimal.NewFromInt(1),
			"millisecond": decimal.NewFromFloat(0.001),
			"minute":      decimal.NewFromInt(60),
			"hour":        decimal.NewFromInt(3600),
		},
	},
}

func familyOf(unit string) (unitFamily, bool) {
	for _, fam := range units {
		if _, ok := fam.multiplier[unit]; ok {
			return fam, true
		}
	}
	return unitFamily{}, false
}

// RegisterUnit adds unit to family base, convertible via multiplier (the
// quantity of base-units equal to one of unit).
func RegisterUnit(base, unit string, multiplier decimal.Decimal) {
	fam, ok := units[base]
	if !ok {
		fam = unitFamily{base: base, multiplier: map[string]decimal.Decimal{base: decimal.NewFromInt(1)}}
	}
	fam.multiplier[unit] = multiplier
	units[base] = fam
}

// ErrIncompatibleUnits is the domain error Max/arithmetic blocks raise (the
// engine converts it to a block fault) when asked to compare or combine
// values tagged with units from different families.
type ErrIncompatibleUnits struct {
	A, B string
}

func (e ErrIncompatibleUnits) Error() string {
	return fmt.Sprintf("value: incompatible units %q and %q", e.A, e.B)
}

// ConvertTo converts v (a number) into targetUnit, if v's unit and
// targetUnit belong to the same family. A unitless number keeps its
// magnitude and is tagged with targetUnit, whatever that is; an empty
// targetUnit likewise keeps the magnitude and drops v's unit.
func ConvertTo(v Value, targetUnit string) (Value, error) {
	n, ok := v.Number()
	if !ok {
		return v, fmt.Errorf("value: ConvertTo on non-number kind %s", v.Kind())
	}
	if v.unit == "" || targetUnit == "" || v.unit == targetUnit {
		return NumberWithUnit(n, targetUnit), nil
	}
	srcFam, srcOK := familyOf(v.unit)
	dstFam, dstOK := familyOf(targetUnit)
	if !srcOK || !dstOK || srcFam.base != dstFam.base {
		return Value{}, ErrIncompatibleUnits{A: v.unit, B: targetUnit}
	}
	base := n.Mul(srcFam.multiplier[v.unit])
	converted := base.Div(dstFam.multiplier[targetUnit])
	return NumberWithUnit(converted, targetUnit), nil
}

// SameFamily reports whether two unit tags are directly comparable (equal,
// both empty, or members of the same convertible family).
func SameFamily(a, b string) bool {
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return true
	}
	famA, okA := familyOf(a)
	famB, okB := familyOf(b)
	return okA && okB && famA.base == famB.base
}
