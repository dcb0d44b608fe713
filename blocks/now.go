package blocks

import (
	"context"
	"sync"
	"time"

	"github.com/beevik/ntp"
	"github.com/google/uuid"

	"logicmesh/block"
	"logicmesh/registry"
	"logicmesh/value"
)

const (
	defaultNowResolution = time.Second
	ntpPool              = "pool.ntp.org"
	ntpRefreshInterval   = 60 * time.Second
)

func nowDescriptor() block.Descriptor {
	return block.Descriptor{
		Name:         "Now",
		Dis:          "Now",
		Library:      Library,
		Category:     "generator",
		Version:      "1.0.0",
		Doc:          "Emits the current, NTP-corrected timestamp every resolution milliseconds (default 1000).",
		RunCondition: block.Always,
		Inputs: []block.PinShape{
			{Name: "resolution", Kind: value.KindNumber},
		},
		Outputs: []block.PinShape{
			{Name: "out", Kind: value.KindString},
		},
	}
}

// Now is a time-driven block grounded directly on internal/reconcile/ntp.go's
// NTPChecker: it periodically queries an NTP pool for clock offset and
// applies that correction to the timestamp it emits, rather than trusting
// the local clock outright.
type Now struct {
	*block.Base

	mu         sync.Mutex
	offset     time.Duration
	lastSynced time.Time

	// queryFunc overrides the real NTP query; tests set it instead of
	// NTPChecker's CheckFunc hook.
	queryFunc func() (time.Duration, error)
}

func NewNow(id uuid.UUID) block.Block {
	return &Now{Base: block.NewBase(id, nowDescriptor())}
}

func (n *Now) ntpOffset() time.Duration {
	n.mu.Lock()
	stale := n.lastSynced.IsZero() || time.Since(n.lastSynced) > ntpRefreshInterval
	offset := n.offset
	n.mu.Unlock()
	if !stale {
		return offset
	}

	query := n.queryFunc
	if query == nil {
		query = queryNTPPool
	}
	off, err := query()

	n.mu.Lock()
	defer n.mu.Unlock()
	n.lastSynced = time.Now()
	if err == nil {
		n.offset = off
	}
	return n.offset
}

func queryNTPPool() (time.Duration, error) {
	resp, err := ntp.Query(ntpPool)
	if err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}

func (n *Now) Execute(ctx context.Context) error {
	resolution := readDurationMillis(n.Base, "resolution", defaultNowResolution)

	n.WaitOnInputs(ctx, resolution)
	if ctx.Err() != nil {
		return nil
	}

	out, _ := n.Output("out")
	out.Set(value.String(time.Now().Add(n.ntpOffset()).Format(time.RFC3339Nano)))
	return nil
}

func registerNow(reg *registry.Registry) {
	if err := reg.Register(nowDescriptor(), NewNow); err != nil {
		panic(err)
	}
}
