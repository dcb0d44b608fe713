package engine

import (
	"context"

	"github.com/google/uuid"

	"logicmesh/block"
	"logicmesh/link"
	"logicmesh/value"
)

// linkSource is the shape both *pin.Input and *pin.Output satisfy; a link's
// source may be either, since an input can fan its received value out to
// further inputs.
type linkSource interface {
	AddLink(*link.Link)
	Links() []*link.Link
}

// Connect resolves both endpoints of decl and creates a link between them,
// replaying the source's current value immediately if it has one.
func (e *Engine) Connect(decl LinkDecl) (LinkDecl, error) {
	if decl.SourceBlockID == decl.TargetBlockID {
		return LinkDecl{}, ErrSelfConnection
	}

	e.mu.Lock()
	srcTask, srcOK := e.blocks[decl.SourceBlockID]
	tgtTask, tgtOK := e.blocks[decl.TargetBlockID]
	e.mu.Unlock()
	if !srcOK {
		return LinkDecl{}, wrap(ErrBlockNotFound, decl.SourceBlockID.String())
	}
	if !tgtOK {
		return LinkDecl{}, wrap(ErrBlockNotFound, decl.TargetBlockID.String())
	}

	targetInput, ok := tgtTask.blk.Input(decl.TargetPinName)
	if !ok {
		return LinkDecl{}, wrap(ErrInputNotFound, decl.TargetPinName)
	}

	var source linkSource
	var current value.Value
	var hasCurrent bool
	if out, ok := srcTask.blk.Output(decl.SourcePinName); ok {
		source = out
		current, hasCurrent = out.Value()
	} else if in, ok := srcTask.blk.Input(decl.SourcePinName); ok {
		source = in
		current, hasCurrent = in.CurrentValue()
	} else {
		return LinkDecl{}, wrap(ErrSourcePinNotFound, decl.SourcePinName)
	}

	for _, existing := range source.Links() {
		if existing.TargetBlockID() == decl.TargetBlockID && existing.TargetInputName() == decl.TargetPinName {
			return LinkDecl{}, ErrDuplicateLink
		}
	}

	id := uuid.New()
	if decl.HasID {
		id = decl.ID
	}
	l := link.NewWithID(id, decl.TargetBlockID, decl.TargetPinName, targetInput.Writer())
	source.AddLink(l)
	targetInput.IncrementConn()

	if hasCurrent {
		if targetInput.Writer().TrySend(current) {
			l.SetState(link.StateConnected)
		} else {
			l.SetState(link.StateError)
		}
	}

	result := decl
	result.ID, result.HasID = id, true
	return result, nil
}

// RemoveLink searches every block's link lists for id, removes it, and
// decrements its target's connection counter.
func (e *Engine) RemoveLink(id uuid.UUID) bool {
	e.mu.Lock()
	tasks := make([]*task, 0, len(e.blocks))
	for _, t := range e.blocks {
		tasks = append(tasks, t)
	}
	e.mu.Unlock()

	for _, t := range tasks {
		for _, out := range t.blk.Outputs() {
			if removed, ok := out.RemoveLinkByID(id); ok {
				decrementTarget(tasks, removed)
				return true
			}
		}
		for _, in := range t.blk.Inputs() {
			if removed, ok := in.RemoveLinkByID(id); ok {
				decrementTarget(tasks, removed)
				return true
			}
		}
	}
	return false
}

// InspectBlock snapshots a block's pins.
func (e *Engine) InspectBlock(id uuid.UUID) (BlockParam, error) {
	e.mu.Lock()
	t, ok := e.blocks[id]
	e.mu.Unlock()
	if !ok {
		return BlockParam{}, wrap(ErrBlockNotFound, id.String())
	}

	desc := t.blk.Descriptor()
	param := BlockParam{
		ID:      id,
		Name:    desc.Name,
		Library: desc.Library,
		Inputs:  make(map[string]PinSnapshot, len(t.blk.Inputs())),
		Outputs: make(map[string]PinSnapshot, len(t.blk.Outputs())),
	}
	for _, in := range t.blk.Inputs() {
		v, has := in.CurrentValue()
		param.Inputs[in.Name()] = PinSnapshot{Kind: in.Kind(), Value: v, HasValue: has}
	}
	for _, out := range t.blk.Outputs() {
		v, has := out.Value()
		param.Outputs[out.Name()] = PinSnapshot{Kind: out.Kind(), Value: v, HasValue: has}
	}
	return param, nil
}

// WriteBlockOutput overwrites an output, fanning the new value through its
// links, and returns the previous value.
func (e *Engine) WriteBlockOutput(id uuid.UUID, pinName string, v value.Value) (value.Value, error) {
	e.mu.Lock()
	t, ok := e.blocks[id]
	e.mu.Unlock()
	if !ok {
		return value.Value{}, wrap(ErrBlockNotFound, id.String())
	}
	out, ok := t.blk.Output(pinName)
	if !ok {
		return value.Value{}, wrap(ErrOutputNotFound, pinName)
	}
	prev, _ := out.Value()
	out.Set(v)
	e.publishCOV(t)
	return prev, nil
}

// WriteBlockInput overwrites an input's stored value directly, bypassing
// the queue.
func (e *Engine) WriteBlockInput(id uuid.UUID, pinName string, v value.Value) (value.Value, bool, error) {
	e.mu.Lock()
	t, ok := e.blocks[id]
	e.mu.Unlock()
	if !ok {
		return value.Value{}, false, wrap(ErrBlockNotFound, id.String())
	}
	in, ok := t.blk.Input(pinName)
	if !ok {
		return value.Value{}, false, wrap(ErrInputNotFound, pinName)
	}
	prev, hadPrev := in.SetValue(v)
	e.publishCOV(t)
	return prev, hadPrev, nil
}

// GetProgram reconstructs a declarative graph from live state.
func (e *Engine) GetProgram() ([]BlockDecl, []LinkDecl, error) {
	e.mu.Lock()
	tasks := make([]*task, 0, len(e.blocks))
	for _, t := range e.blocks {
		tasks = append(tasks, t)
	}
	e.mu.Unlock()

	blocks := make([]BlockDecl, 0, len(tasks))
	var links []LinkDecl
	for _, t := range tasks {
		desc := t.blk.Descriptor()
		blocks = append(blocks, BlockDecl{
			ID:       t.blk.ID(),
			Name:     desc.Name,
			Dis:      desc.Dis,
			Library:  desc.Library,
			Category: desc.Category,
			Version:  desc.Version,
		})
		for _, out := range t.blk.Outputs() {
			for _, l := range out.Links() {
				links = append(links, LinkDecl{
					ID:            l.ID(),
					HasID:         true,
					SourceBlockID: t.blk.ID(),
					TargetBlockID: l.TargetBlockID(),
					SourcePinName: out.Name(),
					TargetPinName: l.TargetInputName(),
				})
			}
		}
		for _, in := range t.blk.Inputs() {
			for _, l := range in.Links() {
				links = append(links, LinkDecl{
					ID:            l.ID(),
					HasID:         true,
					SourceBlockID: t.blk.ID(),
					TargetBlockID: l.TargetBlockID(),
					SourcePinName: in.Name(),
					TargetPinName: l.TargetInputName(),
				})
			}
		}
	}
	return blocks, links, nil
}

// Evaluate instantiates name once outside the scheduler, records every
// input's current value directly, calls Execute once, collects outputs, and
// discards the instance.
//
// A change-of-value block's ReadInputsUntilReady drains at most one input's
// queue per call (see block.Base.ReadInputs); a concrete Execute then reads
// every pin's CurrentValue, not the drained value itself. So inputs beyond
// the first must already be visible as CurrentValue before Execute ever
// runs, or they read back as absent. SetValue records that snapshot for
// every given input; a matching queue send on each pin then gives
// ReadInputsUntilReady/WaitOnInputs something to drain so they return
// immediately instead of blocking on an instance nothing will ever signal
// again.
func (e *Engine) Evaluate(ctx context.Context, name, library string, inputs []value.Value) ([]value.Value, error) {
	if library == "" {
		library = "core"
	}
	qname := library + "::" + name
	blk, err := e.registry.Make(qname, uuid.New())
	if err != nil {
		return nil, wrap(ErrUnknownBlock, qname)
	}

	pins := blk.Inputs()
	for i, v := range inputs {
		if i >= len(pins) {
			break
		}
		pins[i].SetValue(v)
		pins[i].Writer().TrySend(v)
	}

	blk.SetState(block.StateRunning)
	if err := blk.Execute(ctx); err != nil {
		return nil, err
	}

	outs := blk.Outputs()
	results := make([]value.Value, len(outs))
	for i, out := range outs {
		v, _ := out.Value()
		results[i] = v
	}
	return results, nil
}
