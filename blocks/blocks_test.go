package blocks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"logicmesh/block"
	"logicmesh/value"
)

func execOnce(t *testing.T, b block.Block) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := b.Execute(ctx); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
}

func writeNumber(t *testing.T, b block.Block, pin string, f float64) {
	t.Helper()
	in, ok := b.Input(pin)
	if !ok {
		t.Fatalf("Input(%q) not found", pin)
	}
	if !in.Writer().TrySend(value.NumberFromFloat(f)) {
		t.Fatalf("TrySend(%q) failed, queue full", pin)
	}
}

func numberOut(t *testing.T, b block.Block, pin string) float64 {
	t.Helper()
	out, ok := b.Output(pin)
	if !ok {
		t.Fatalf("Output(%q) not found", pin)
	}
	v, has := out.Value()
	if !has {
		t.Fatalf("Output(%q) has no value", pin)
	}
	n, ok := v.Number()
	if !ok {
		t.Fatalf("Output(%q) = %#v, want number", pin, v)
	}
	f, _ := n.Float64()
	return f
}

func TestAddSumsInputs(t *testing.T) {
	a := NewAdd(uuid.New())
	writeNumber(t, a, "a", 3)
	writeNumber(t, a, "b", 4)

	// ReadInputsUntilReady drains at most one queued input per call, so two
	// freshly queued inputs take two iterations to both land as current.
	execOnce(t, a)
	execOnce(t, a)

	if got := numberOut(t, a, "sum"); got != 7 {
		t.Fatalf("sum = %v, want 7", got)
	}
}

func TestAddTreatsMissingInputAsZero(t *testing.T) {
	a := NewAdd(uuid.New())
	writeNumber(t, a, "a", 7)
	execOnce(t, a)

	if got := numberOut(t, a, "sum"); got != 7 {
		t.Fatalf("sum = %v, want 7 (b absent)", got)
	}
}

func TestMaxFaultsOnUnitMismatch(t *testing.T) {
	m := NewMax(uuid.New())
	aIn, _ := m.Input("a")
	bIn, _ := m.Input("b")
	n3, _ := value.NumberFromFloat(3).Number()
	n4, _ := value.NumberFromFloat(4).Number()
	aIn.Writer().TrySend(value.NumberWithUnit(n3, "meter"))
	bIn.Writer().TrySend(value.NumberWithUnit(n4, "second"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	// First iteration only lands one of the two freshly queued inputs; the
	// mismatch only surfaces once both are current.
	if err := m.Execute(ctx); err != nil {
		t.Fatalf("Execute() first iteration error = %v, want nil", err)
	}
	if err := m.Execute(ctx); err == nil {
		t.Fatal("Execute() error = nil, want unit mismatch error")
	}

	out, _ := m.Output("out")
	if _, has := out.Value(); has {
		t.Fatal("out has a value, want unset after a fault iteration")
	}
}

func TestMaxPicksLargerAfterUnitConversion(t *testing.T) {
	m := NewMax(uuid.New())
	aIn, _ := m.Input("a")
	bIn, _ := m.Input("b")
	n3, _ := value.NumberFromFloat(3).Number()
	n4, _ := value.NumberFromFloat(4).Number()
	aIn.Writer().TrySend(value.NumberWithUnit(n3, "meter"))
	bIn.Writer().TrySend(value.NumberWithUnit(n4, "meter"))

	execOnce(t, m)
	execOnce(t, m)

	if got := numberOut(t, m, "out"); got != 4 {
		t.Fatalf("out = %v, want 4", got)
	}
	out, _ := m.Output("out")
	v, _ := out.Value()
	if v.Unit() != "meter" {
		t.Fatalf("out unit = %q, want meter", v.Unit())
	}
}

func TestPriorityArrayFallsBackToDefault(t *testing.T) {
	p := NewPriorityArray(uuid.New())
	writeNumber(t, p, "default", 55)
	execOnce(t, p)

	if got := numberOut(t, p, "out"); got != 55 {
		t.Fatalf("out = %v, want 55", got)
	}
}

func TestPriorityArrayHighestPriorityWins(t *testing.T) {
	p := NewPriorityArray(uuid.New())
	writeNumber(t, p, "default", 55)
	execOnce(t, p)

	writeNumber(t, p, "priority3", 10)
	execOnce(t, p)

	if got := numberOut(t, p, "out"); got != 10 {
		t.Fatalf("out = %v, want 10", got)
	}
}

func TestNowRespectsQueryOverride(t *testing.T) {
	n := &Now{Base: block.NewBase(uuid.New(), nowDescriptor())}
	n.queryFunc = func() (time.Duration, error) { return 5 * time.Second, nil }

	in, _ := n.Input("resolution")
	in.Writer().TrySend(value.NumberFromFloat(1))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := n.Execute(ctx); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out, ok := n.Output("out")
	if !ok {
		t.Fatal("Output(\"out\") not found")
	}
	v, has := out.Value()
	if !has {
		t.Fatal("out has no value")
	}
	s, ok := v.String()
	if !ok {
		t.Fatalf("out = %#v, want a string timestamp", v)
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t.Fatalf("out = %q, want an RFC3339Nano timestamp: %v", s, err)
	}
	if ahead := time.Until(ts); ahead < 4*time.Second {
		t.Fatalf("out = %q is %v ahead of the local clock, want about the 5s query offset", s, ahead)
	}
}

func TestRegisterAllIsIdempotent(t *testing.T) {
	// Re-registering the same descriptors must not panic.
	RegisterAll(Registry)

	if _, err := Registry.Descriptor("core::Add"); err != nil {
		t.Fatalf("Descriptor(%q) error = %v", "core::Add", err)
	}
}
