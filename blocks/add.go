package blocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"logicmesh/block"
	"logicmesh/pin"
	"logicmesh/registry"
	"logicmesh/value"
)

func addDescriptor() block.Descriptor {
	return block.Descriptor{
		Name:         "Add",
		Dis:          "Add",
		Library:      Library,
		Category:     "math",
		Version:      "1.0.0",
		Doc:          "Sums a and b whenever either changes. A missing input is treated as zero.",
		RunCondition: block.ChangeOfValue,
		Inputs: []block.PinShape{
			{Name: "a", Kind: value.KindNumber},
			{Name: "b", Kind: value.KindNumber},
		},
		Outputs: []block.PinShape{
			{Name: "sum", Kind: value.KindNumber},
		},
	}
}

type Add struct {
	*block.Base
}

func NewAdd(id uuid.UUID) block.Block {
	return &Add{Base: block.NewBase(id, addDescriptor())}
}

func (a *Add) Execute(ctx context.Context) error {
	a.ReadInputsUntilReady(ctx)
	if ctx.Err() != nil {
		return nil
	}

	aIn, _ := a.Input("a")
	bIn, _ := a.Input("b")
	out, _ := a.Output("sum")

	out.Set(value.Number(numberOrZero(aIn).Add(numberOrZero(bIn))))
	return nil
}

// numberOrZero reads in's current value, treating an absent or non-numeric
// value as zero.
func numberOrZero(in *pin.Input) decimal.Decimal {
	v, has := in.CurrentValue()
	if !has {
		return decimal.Zero
	}
	n, ok := v.Number()
	if !ok {
		return decimal.Zero
	}
	return n
}

func registerAdd(reg *registry.Registry) {
	if err := reg.Register(addDescriptor(), NewAdd); err != nil {
		panic(err)
	}
}
