package pin

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"logicmesh/link"
	"logicmesh/value"
)

func TestOutputSetFansOutAndMarksErrorOnOverflow(t *testing.T) {
	blockID := uuid.New()
	out := NewOutput(blockID, "out", value.KindNumber)

	target := NewInput(uuid.New(), "in", value.KindNumber)
	l := link.New(target.BlockID(), target.Name(), target.Writer())
	out.AddLink(l)

	out.Set(value.NumberFromFloat(1))
	if l.State() != link.StateConnected {
		t.Fatalf("link state = %v, want connected", l.State())
	}
	v, ok := target.Drain()
	if !ok {
		t.Fatalf("target.Drain() ok = false, want true")
	}
	if n, _ := v.Number(); !n.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("drained value = %v, want 1", n)
	}

	// Fill the queue to capacity, then overflow it.
	for i := 0; i < DefaultQueueCapacity; i++ {
		out.Set(value.NumberFromFloat(float64(i)))
	}
	if l.State() != link.StateConnected {
		t.Fatalf("link state after filling queue = %v, want connected", l.State())
	}
	out.Set(value.NumberFromFloat(999))
	if l.State() != link.StateError {
		t.Fatalf("link state after overflow = %v, want error", l.State())
	}
}

func TestInputConnectionCounterSaturatesAtZero(t *testing.T) {
	in := NewInput(uuid.New(), "in", value.KindNumber)
	if in.IsConnected() {
		t.Fatalf("IsConnected() = true, want false")
	}
	in.DecrementConn() // must not go negative
	in.IncrementConn()
	if !in.IsConnected() {
		t.Fatalf("IsConnected() = false, want true")
	}
	in.DecrementConn()
	if in.IsConnected() {
		t.Fatalf("IsConnected() = true, want false")
	}
	in.DecrementConn()
	if in.IsConnected() {
		t.Fatalf("IsConnected() = true after extra decrement, want false")
	}
}

func TestInputRemoveLinksTargeting(t *testing.T) {
	in := NewInput(uuid.New(), "in", value.KindNumber)
	other := uuid.New()
	l1 := link.New(other, "x", NewInput(other, "x", value.KindNumber).Writer())
	l2 := link.New(other, "y", NewInput(other, "y", value.KindNumber).Writer())
	l3 := link.New(uuid.New(), "z", NewInput(uuid.New(), "z", value.KindNumber).Writer())
	in.AddLink(l1)
	in.AddLink(l2)
	in.AddLink(l3)

	removed := in.RemoveLinksTargeting(other)
	if len(removed) != 2 {
		t.Fatalf("removed = %d, want 2", len(removed))
	}
	if len(in.Links()) != 1 {
		t.Fatalf("remaining links = %d, want 1", len(in.Links()))
	}
}
