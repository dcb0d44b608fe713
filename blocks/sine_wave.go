package blocks

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"logicmesh/block"
	"logicmesh/registry"
	"logicmesh/value"
)

const (
	defaultSinePeriod    = 200 * time.Millisecond
	defaultSineAmplitude = 1.0
)

func sineWaveDescriptor() block.Descriptor {
	return block.Descriptor{
		Name:         "SineWave",
		Dis:          "Sine Wave",
		Library:      Library,
		Category:     "generator",
		Version:      "1.0.0",
		Doc:          "Emits a sine sample every period milliseconds (default 200); amplitude scales it.",
		RunCondition: block.Always,
		Inputs: []block.PinShape{
			{Name: "period", Kind: value.KindNumber},
			{Name: "amplitude", Kind: value.KindNumber},
		},
		Outputs: []block.PinShape{
			{Name: "out", Kind: value.KindNumber},
		},
	}
}

// SineWave is a time-driven block: it owns its own period wait inside
// Execute rather than being scheduled by the engine, grounded on
// internal/reconcile/ntp.go's NTPChecker.Run ticker-owned loop.
type SineWave struct {
	*block.Base
	start time.Time
}

func NewSineWave(id uuid.UUID) block.Block {
	return &SineWave{Base: block.NewBase(id, sineWaveDescriptor())}
}

func (s *SineWave) Execute(ctx context.Context) error {
	period := readDurationMillis(s.Base, "period", defaultSinePeriod)

	s.WaitOnInputs(ctx, period)
	if ctx.Err() != nil {
		return nil
	}

	amplitude := decimal.NewFromFloat(defaultSineAmplitude)
	if in, ok := s.Input("amplitude"); ok {
		if v, has := in.CurrentValue(); has {
			if n, ok := v.Number(); ok {
				amplitude = n
			}
		}
	}

	if s.start.IsZero() {
		s.start = time.Now()
	}
	phase := time.Since(s.start).Seconds()
	sample := amplitude.InexactFloat64() * math.Sin(phase)

	out, _ := s.Output("out")
	out.Set(value.NumberFromFloat(sample))
	return nil
}

// readDurationMillis reads name's current value as a millisecond duration,
// falling back to def when the pin has never received a value.
func readDurationMillis(b *block.Base, name string, def time.Duration) time.Duration {
	in, ok := b.Input(name)
	if !ok {
		return def
	}
	v, has := in.CurrentValue()
	if !has {
		return def
	}
	n, ok := v.Number()
	if !ok {
		return def
	}
	ms, _ := n.Float64()
	if ms <= 0 {
		return def
	}
	return time.Duration(ms * float64(time.Millisecond))
}

func registerSineWave(reg *registry.Registry) {
	if err := reg.Register(sineWaveDescriptor(), NewSineWave); err != nil {
		panic(err)
	}
}
