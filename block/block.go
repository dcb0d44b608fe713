package block

import (
	"context"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"logicmesh/pin"
	"logicmesh/value"
)

// Block is the unit of computation every scheduled node implements:
// identity, descriptor, state, ordered pins, and a single Execute step.
// Suspension points occur only inside Execute.
type Block interface {
	ID() uuid.UUID
	Descriptor() Descriptor
	State() State
	SetState(State)
	Inputs() []*pin.Input
	Outputs() []*pin.Output
	Input(name string) (*pin.Input, bool)
	Output(name string) (*pin.Output, bool)

	// Execute performs one step of work. It must be re-entrant across
	// iterations — any state it needs to carry lives on the concrete
	// block's own fields, not on the call stack.
	Execute(ctx context.Context) error
}

// Base implements the pin/state bookkeeping and the ReadInputs*/
// WaitOnInputs helpers that every concrete block embeds. Concrete blocks
// (see package blocks) embed Base and implement Execute.
type Base struct {
	id         uuid.UUID
	descriptor Descriptor
	state      atomic.Int32

	inputs    []*pin.Input
	inputIdx  map[string]int
	outputs   []*pin.Output
	outputIdx map[string]int

	// token is the engine-wide single-slot semaphore emulating cooperative
	// single-threaded execution: the scheduler holds it while a block
	// computes, and Base releases it around the suspension points it owns
	// (ReadInputsUntilReady, WaitOnInputs) so some other block's task can
	// make progress while this one is parked waiting for input. Nil
	// outside a scheduled engine (e.g. one-shot Evaluate).
	token *semaphore.Weighted
}

// NewBase constructs a Base with pins materialized from desc's pin shapes.
func NewBase(id uuid.UUID, desc Descriptor) *Base {
	b := &Base{
		id:         id,
		descriptor: desc,
		inputIdx:   make(map[string]int, len(desc.Inputs)),
		outputIdx:  make(map[string]int, len(desc.Outputs)),
	}
	for i, shape := range desc.Inputs {
		b.inputs = append(b.inputs, pin.NewInput(id, shape.Name, shape.Kind))
		b.inputIdx[shape.Name] = i
	}
	for i, shape := range desc.Outputs {
		b.outputs = append(b.outputs, pin.NewOutput(id, shape.Name, shape.Kind))
		b.outputIdx[shape.Name] = i
	}
	b.state.Store(int32(StateStopped))
	return b
}

func (b *Base) ID() uuid.UUID          { return b.id }
func (b *Base) Descriptor() Descriptor { return b.descriptor }

func (b *Base) State() State { return State(b.state.Load()) }

func (b *Base) SetState(s State) {
	cur := State(b.state.Load())
	next := cur.Transition(s)
	b.state.Store(int32(next))
}

func (b *Base) Inputs() []*pin.Input   { return b.inputs }
func (b *Base) Outputs() []*pin.Output { return b.outputs }

func (b *Base) Input(name string) (*pin.Input, bool) {
	i, ok := b.inputIdx[name]
	if !ok {
		return nil, false
	}
	return b.inputs[i], true
}

func (b *Base) Output(name string) (*pin.Output, bool) {
	i, ok := b.outputIdx[name]
	if !ok {
		return nil, false
	}
	return b.outputs[i], true
}

// SetToken installs the engine-wide scheduling token. Called once by the
// scheduler when a block is scheduled; left nil for blocks run outside the
// engine (Evaluate's one-shot instantiation).
func (b *Base) SetToken(tok *semaphore.Weighted) { b.token = tok }

// suspend releases the scheduling token (if any) around a blocking wait and
// reacquires it before returning, so the task holds the token at every
// point outside an explicit suspension.
func (b *Base) suspend(ctx context.Context, wait func()) {
	if b.token == nil {
		wait()
		return
	}
	b.token.Release(1)
	wait()
	// Best effort: if ctx is already done, Acquire returns promptly with an
	// error and the block's next Execute call will observe cancellation via
	// ctx itself; either way we must not return holding zero weight.
	_ = b.token.Acquire(ctx, 1)
}

// NoInput is the sentinel index returned by ReadInputs when no input had
// queued data.
const NoInput = -1

// ReadInputs drains at most one queued value from any one input (no
// ordering guarantee across different inputs) and records it as that
// input's current value. Returns the input's index, or NoInput if none had
// data.
func (b *Base) ReadInputs() int {
	for i, in := range b.inputs {
		if _, ok := in.Drain(); ok {
			return i
		}
	}
	return NoInput
}

// selectCases builds a reflect.Select case list: ctx.Done() at index 0,
// then one recv case per input's queue channel. The channel count is only
// known at runtime (it varies per block descriptor), so a dynamic select
// via the reflect package is the idiomatic way to fan in over it — a fixed
// `select` statement cannot express a variable number of cases.
func (b *Base) selectCases(ctx context.Context) []reflect.SelectCase {
	cases := make([]reflect.SelectCase, 0, len(b.inputs)+1)
	cases = append(cases, reflect.SelectCase{
		Dir:  reflect.SelectRecv,
		Chan: reflect.ValueOf(ctx.Done()),
	})
	for _, in := range b.inputs {
		cases = append(cases, reflect.SelectCase{
			Dir:  reflect.SelectRecv,
			Chan: reflect.ValueOf(in.QueueChan()),
		})
	}
	return cases
}

// ReadInputsUntilReady blocks (selecting over every input's queue channel)
// until at least one input receives a value, with no timeout — the
// change-of-value run condition's entry point.
func (b *Base) ReadInputsUntilReady(ctx context.Context) int {
	if idx := b.ReadInputs(); idx != NoInput {
		return idx
	}
	if len(b.inputs) == 0 {
		b.suspend(ctx, func() { <-ctx.Done() })
		return NoInput
	}
	cases := b.selectCases(ctx)
	for {
		var chosen int
		var recv reflect.Value
		var ok bool
		b.suspend(ctx, func() { chosen, recv, ok = reflect.Select(cases) })
		if chosen == 0 { // ctx.Done()
			return NoInput
		}
		if !ok {
			continue
		}
		inputIdx := chosen - 1
		b.inputs[inputIdx].SetValue(recv.Interface().(value.Value))
		return inputIdx
	}
}

// WaitOnInputs waits up to timeout for any input to receive a value,
// otherwise returns the NoInput sentinel on timeout.
func (b *Base) WaitOnInputs(ctx context.Context, timeout time.Duration) int {
	if idx := b.ReadInputs(); idx != NoInput {
		return idx
	}
	if len(b.inputs) == 0 {
		b.suspend(ctx, func() { sleepContext(ctx, timeout) })
		return NoInput
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	cases := b.selectCases(ctx)
	timeoutIdx := len(cases)
	cases = append(cases, reflect.SelectCase{
		Dir:  reflect.SelectRecv,
		Chan: reflect.ValueOf(timer.C),
	})

	var chosen int
	var recv reflect.Value
	var ok bool
	b.suspend(ctx, func() { chosen, recv, ok = reflect.Select(cases) })
	switch {
	case chosen == 0 || chosen == timeoutIdx || !ok:
		return NoInput
	default:
		inputIdx := chosen - 1
		b.inputs[inputIdx].SetValue(recv.Interface().(value.Value))
		return inputIdx
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
