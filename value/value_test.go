package value

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestEqual(t *testing.T) {
	t.Run("numbers with same unit", func(t *testing.T) {
		a := NumberFromFloat(3)
		b := NumberFromFloat(3)
		if !Equal(a, b) {
			t.Fatalf("Equal() = false, want true")
		}
	})

	t.Run("numbers with different units are not equal even if same magnitude", func(t *testing.T) {
		a := NumberWithUnit(decimal.NewFromInt(4), "meter")
		b := NumberWithUnit(decimal.NewFromInt(4), "second")
		if Equal(a, b) {
			t.Fatalf("Equal() = true, want false")
		}
	})

	t.Run("different kinds never equal", func(t *testing.T) {
		if Equal(NumberFromFloat(1), Bool(true)) {
			t.Fatalf("Equal() = true, want false")
		}
	})

	t.Run("null equals null", func(t *testing.T) {
		if !Equal(Null(), Null()) {
			t.Fatalf("Equal() = false, want true")
		}
	})
}

func TestConvertTo(t *testing.T) {
	t.Run("same family converts", func(t *testing.T) {
		v := NumberWithUnit(decimal.NewFromInt(1), "kilometer")
		out, err := ConvertTo(v, "meter")
		if err != nil {
			t.Fatalf("ConvertTo() error = %v", err)
		}
		n, _ := out.Number()
		if !n.Equal(decimal.NewFromInt(1000)) {
			t.Fatalf("ConvertTo() = %v, want 1000", n)
		}
	})

	t.Run("incompatible family errors", func(t *testing.T) {
		v := NumberWithUnit(decimal.NewFromInt(1), "meter")
		_, err := ConvertTo(v, "second")
		var unitErr ErrIncompatibleUnits
		if err == nil {
			t.Fatalf("ConvertTo() error = nil, want ErrIncompatibleUnits")
		}
		if !errors.As(err, &unitErr) {
			t.Fatalf("ConvertTo() error = %v, want ErrIncompatibleUnits", err)
		}
	})

	t.Run("unitless passes through", func(t *testing.T) {
		v := NumberFromFloat(5)
		out, err := ConvertTo(v, "second")
		if err != nil {
			t.Fatalf("ConvertTo() error = %v", err)
		}
		n, _ := out.Number()
		if !n.Equal(decimal.NewFromInt(5)) {
			t.Fatalf("ConvertTo() = %v, want 5", n)
		}
	})
}
