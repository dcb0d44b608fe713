package blocks

import (
	"context"

	"github.com/google/uuid"

	"logicmesh/block"
	"logicmesh/registry"
	"logicmesh/value"
)

// priorityOrder lists the pins in descending priority: the highest-indexed
// priority input that carries a non-null value wins; default is the
// fallback when none of priority0..priority3 do.
var priorityOrder = []string{"priority3", "priority2", "priority1", "priority0", "default"}

func priorityArrayDescriptor() block.Descriptor {
	inputs := make([]block.PinShape, 0, len(priorityOrder))
	for _, name := range priorityOrder {
		inputs = append(inputs, block.PinShape{Name: name, Kind: value.KindNumber})
	}
	return block.Descriptor{
		Name:         "PriorityArray",
		Dis:          "Priority Array",
		Library:      Library,
		Category:     "select",
		Version:      "1.0.0",
		Doc:          "Outputs the highest-priority input currently holding a non-null value.",
		RunCondition: block.ChangeOfValue,
		Inputs:       inputs,
		Outputs: []block.PinShape{
			{Name: "out", Kind: value.KindNumber},
		},
	}
}

type PriorityArray struct {
	*block.Base
}

func NewPriorityArray(id uuid.UUID) block.Block {
	return &PriorityArray{Base: block.NewBase(id, priorityArrayDescriptor())}
}

func (p *PriorityArray) Execute(ctx context.Context) error {
	p.ReadInputsUntilReady(ctx)
	if ctx.Err() != nil {
		return nil
	}

	out, _ := p.Output("out")
	for _, name := range priorityOrder {
		in, _ := p.Input(name)
		v, has := in.CurrentValue()
		if has && !v.IsNull() {
			out.Set(v)
			return nil
		}
	}
	return nil
}

func registerPriorityArray(reg *registry.Registry) {
	if err := reg.Register(priorityArrayDescriptor(), NewPriorityArray); err != nil {
		panic(err)
	}
}
