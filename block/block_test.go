package block

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"logicmesh/value"
)

func testDescriptor() Descriptor {
	return Descriptor{
		Name:    "test",
		Library: "test",
		Inputs: []PinShape{
			{Name: "a", Kind: value.KindNumber},
			{Name: "b", Kind: value.KindNumber},
		},
		Outputs: []PinShape{
			{Name: "out", Kind: value.KindNumber},
		},
	}
}

func TestBaseReadInputs(t *testing.T) {
	b := NewBase(uuid.New(), testDescriptor())
	if idx := b.ReadInputs(); idx != NoInput {
		t.Fatalf("ReadInputs() on empty queues = %d, want NoInput", idx)
	}

	in, ok := b.Input("b")
	if !ok {
		t.Fatalf("Input(%q) not found", "b")
	}
	in.Writer().TrySend(value.NumberFromFloat(7))

	idx := b.ReadInputs()
	if idx == NoInput {
		t.Fatalf("ReadInputs() = NoInput, want an index")
	}
	got, _ := b.Inputs()[idx].CurrentValue()
	n, _ := got.Number()
	if f, _ := n.Float64(); f != 7 {
		t.Fatalf("current value = %v, want 7", f)
	}
}

func TestBaseReadInputsUntilReadyUnblocksOnValue(t *testing.T) {
	b := NewBase(uuid.New(), testDescriptor())
	in, _ := b.Input("a")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan int, 1)
	go func() { done <- b.ReadInputsUntilReady(ctx) }()

	time.Sleep(10 * time.Millisecond)
	in.Writer().TrySend(value.NumberFromFloat(3))

	select {
	case idx := <-done:
		if idx == NoInput {
			t.Fatalf("ReadInputsUntilReady() = NoInput, want an index")
		}
	case <-time.After(time.Second):
		t.Fatal("ReadInputsUntilReady() did not return after a value arrived")
	}
}

func TestBaseReadInputsUntilReadyUnblocksOnCancel(t *testing.T) {
	b := NewBase(uuid.New(), testDescriptor())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan int, 1)
	go func() { done <- b.ReadInputsUntilReady(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case idx := <-done:
		if idx != NoInput {
			t.Fatalf("ReadInputsUntilReady() after cancel = %d, want NoInput", idx)
		}
	case <-time.After(time.Second):
		t.Fatal("ReadInputsUntilReady() did not return after context cancellation")
	}
}

func TestBaseWaitOnInputsTimesOut(t *testing.T) {
	b := NewBase(uuid.New(), testDescriptor())
	ctx := context.Background()

	start := time.Now()
	idx := b.WaitOnInputs(ctx, 20*time.Millisecond)
	if idx != NoInput {
		t.Fatalf("WaitOnInputs() = %d, want NoInput", idx)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("WaitOnInputs() returned after %v, want >= 20ms", elapsed)
	}
}

func TestBaseWaitOnInputsReturnsOnValue(t *testing.T) {
	b := NewBase(uuid.New(), testDescriptor())
	in, _ := b.Input("a")
	in.Writer().TrySend(value.NumberFromFloat(1))

	idx := b.WaitOnInputs(context.Background(), time.Second)
	if idx == NoInput {
		t.Fatalf("WaitOnInputs() = NoInput, want an index")
	}
}

func TestStateTransition(t *testing.T) {
	t.Run("normal transitions allowed", func(t *testing.T) {
		s := StateStopped
		s = s.Transition(StateRunning)
		if s != StateRunning {
			t.Fatalf("state = %v, want running", s)
		}
		s = s.Transition(StateFault)
		if s != StateFault {
			t.Fatalf("state = %v, want fault", s)
		}
	})

	t.Run("terminate is sticky", func(t *testing.T) {
		s := StateTerminate
		if got := s.Transition(StateRunning); got != StateTerminate {
			t.Fatalf("Transition() out of terminate = %v, want terminate", got)
		}
	})
}

func TestDescriptorQName(t *testing.T) {
	d := Descriptor{Library: "core", Name: "add"}
	if got, want := d.QName(), "core::add"; got != want {
		t.Fatalf("QName() = %q, want %q", got, want)
	}
}
