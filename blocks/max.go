package blocks

import (
	"context"

	"github.com/google/uuid"

	"logicmesh/block"
	"logicmesh/registry"
	"logicmesh/value"
)

func maxDescriptor() block.Descriptor {
	return block.Descriptor{
		Name:         "Max",
		Dis:          "Max",
		Library:      Library,
		Category:     "math",
		Version:      "1.0.0",
		Doc:          "Outputs whichever of a, b is larger, converting units when they differ within a family.",
		RunCondition: block.ChangeOfValue,
		Inputs: []block.PinShape{
			{Name: "a", Kind: value.KindNumber},
			{Name: "b", Kind: value.KindNumber},
		},
		Outputs: []block.PinShape{
			{Name: "out", Kind: value.KindNumber},
		},
	}
}

type Max struct {
	*block.Base
}

func NewMax(id uuid.UUID) block.Block {
	return &Max{Base: block.NewBase(id, maxDescriptor())}
}

// Execute faults on unit mismatch: a and b tagged with incompatible unit
// families neither convert nor compare, so the block transitions to fault
// and leaves out unchanged for this iteration.
func (m *Max) Execute(ctx context.Context) error {
	m.ReadInputsUntilReady(ctx)
	if ctx.Err() != nil {
		return nil
	}

	aIn, _ := m.Input("a")
	bIn, _ := m.Input("b")
	av, hasA := aIn.CurrentValue()
	bv, hasB := bIn.CurrentValue()
	if !hasA || !hasB {
		return nil
	}

	if !value.SameFamily(av.Unit(), bv.Unit()) {
		return value.ErrIncompatibleUnits{A: av.Unit(), B: bv.Unit()}
	}

	bConv, err := value.ConvertTo(bv, av.Unit())
	if err != nil {
		return err
	}

	an, _ := av.Number()
	bn, _ := bConv.Number()

	out, _ := m.Output("out")
	if an.Cmp(bn) >= 0 {
		out.Set(av)
	} else {
		out.Set(bConv)
	}
	return nil
}

func registerMax(reg *registry.Registry) {
	if err := reg.Register(maxDescriptor(), NewMax); err != nil {
		panic(err)
	}
}
