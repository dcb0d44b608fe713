package block

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"logicmesh/value"
)

// defaultExternalPollInterval is the wait period an Always-run External
// block uses between host-call invocations when no override is given.
const defaultExternalPollInterval = time.Second

// HostCall is the callable an external block's Execute step delegates to.
// It receives the block's inputs in descriptor pin order and returns the
// values to write to its outputs, also in descriptor pin order. A returned
// error faults the block for that iteration.
type HostCall func(ctx context.Context, inputs []value.Value) ([]value.Value, error)

// External is a native Block whose body is run by a host-provided
// callable instead of a concrete package's own Execute method — the "this
// block's body is run by an embedded host" case, kept behind the same
// Execute contract as every other block so the engine's core types never
// need to know a host runtime exists. The host callable is resolved by
// (library, name) at registration time: an embedding host calls
// registry.RegisterDescriptor with Implementation set to
// ImplementationExternal, then registry.SetFactory to bind a factory that
// closes over the resolved HostCall.
type External struct {
	*Base
	call         HostCall
	pollInterval time.Duration
}

// NewExternal constructs an external block bound to call. desc should set
// Implementation to ImplementationExternal, though External does not
// itself enforce it.
func NewExternal(id uuid.UUID, desc Descriptor, call HostCall) *External {
	return &External{
		Base:         NewBase(id, desc),
		call:         call,
		pollInterval: defaultExternalPollInterval,
	}
}

// WithPollInterval overrides the wait period used between host-call
// invocations for an Always-run external block. Ignored for a
// ChangeOfValue block, which instead blocks until an input arrives.
func (e *External) WithPollInterval(d time.Duration) *External {
	e.pollInterval = d
	return e
}

// Execute waits for input per the descriptor's run condition, snapshots
// every input's current value in pin order, invokes the host callable, and
// writes the returned values to outputs in pin order, truncated to
// outputs.len() if the host returns more than expected. A host-call error
// faults the block for this iteration without touching any output.
func (e *External) Execute(ctx context.Context) error {
	if e.Descriptor().RunCondition == Always {
		e.WaitOnInputs(ctx, e.pollInterval)
	} else {
		e.ReadInputsUntilReady(ctx)
	}
	if ctx.Err() != nil {
		return nil
	}

	inputs := e.Inputs()
	values := make([]value.Value, len(inputs))
	for i, in := range inputs {
		v, _ := in.CurrentValue()
		values[i] = v
	}

	results, err := e.call(ctx, values)
	if err != nil {
		return fmt.Errorf("external block %s: host call: %w", e.Descriptor().QName(), err)
	}

	outputs := e.Outputs()
	for i, out := range outputs {
		if i >= len(results) {
			break
		}
		out.Set(results[i])
	}
	return nil
}
