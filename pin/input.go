// Package pin implements the Input and Output pin contracts: bounded
// inbound queues, writer handles, and outbound link lists.
//
// The bookkeeping shape — a mutex-guarded struct holding a slice of
// outbound recipients plus a "current" snapshot — treats a pin like a
// small pub/sub topic with N outbound links, each delivered to with a
// best-effort, non-blocking `select { case ch <- v: default: }` send.
package pin

import (
	"sync"

	"github.com/google/uuid"

	"logicmesh/link"
	"logicmesh/value"
)

// DefaultQueueCapacity is the bounded inbound-queue size. Exposed so tests
// can observe the overflow boundary exactly.
const DefaultQueueCapacity = 32

// Writer is a clonable handle into an Input's bounded inbound queue. Sends
// are non-blocking (try-send) with back-pressure via queue fullness.
type Writer struct {
	ch chan value.Value
}

// TrySend attempts a non-blocking send. false means the queue was full.
func (w Writer) TrySend(v value.Value) bool {
	select {
	case w.ch <- v:
		return true
	default:
		return false
	}
}

// Input is an input pin: latest value, bounded inbound queue, outbound
// links (inputs may fan out to other inputs), and a connection counter.
type Input struct {
	mu sync.Mutex

	name        string
	kind        value.Kind
	blockID     uuid.UUID
	queue       chan value.Value
	current     value.Value
	hasCurrent  bool
	connections int
	links       []*link.Link
}

// NewInput constructs an input pin with the default queue capacity.
func NewInput(blockID uuid.UUID, name string, kind value.Kind) *Input {
	return &Input{
		name:    name,
		kind:    kind,
		blockID: blockID,
		queue:   make(chan value.Value, DefaultQueueCapacity),
	}
}

func (in *Input) Name() string        { return in.name }
func (in *Input) Kind() value.Kind    { return in.kind }
func (in *Input) BlockID() uuid.UUID  { return in.blockID }
func (in *Input) Writer() Writer      { return Writer{ch: in.queue} }
func (in *Input) QueueChan() <-chan value.Value { return in.queue }

// CurrentValue returns the latest value recorded on this input, and whether
// one has ever been received.
func (in *Input) CurrentValue() (value.Value, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.current, in.hasCurrent
}

// SetValue stores v directly, bypassing the queue. Used by test harnesses
// and by the engine's write-block-input command.
func (in *Input) SetValue(v value.Value) (value.Value, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	prev, hadPrev := in.current, in.hasCurrent
	in.current, in.hasCurrent = v, true
	return prev, hadPrev
}

// Drain pulls the next queued value, if any, and records it as current.
// Returns false if the queue was empty.
func (in *Input) Drain() (value.Value, bool) {
	select {
	case v := <-in.queue:
		in.mu.Lock()
		in.current, in.hasCurrent = v, true
		in.mu.Unlock()
		return v, true
	default:
		return value.Value{}, false
	}
}

// IsConnected reports whether any source anywhere targets this input.
// The connection counter never goes negative; it is zero iff unconnected.
func (in *Input) IsConnected() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.connections > 0
}

// HasOutgoing reports whether this input itself fans out to other inputs.
func (in *Input) HasOutgoing() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.links) > 0
}

func (in *Input) IncrementConn() {
	in.mu.Lock()
	in.connections++
	in.mu.Unlock()
}

// DecrementConn saturates at zero.
func (in *Input) DecrementConn() {
	in.mu.Lock()
	if in.connections > 0 {
		in.connections--
	}
	in.mu.Unlock()
}

func (in *Input) AddLink(l *link.Link) {
	in.mu.Lock()
	in.links = append(in.links, l)
	in.mu.Unlock()
}

// RemoveLinkByID removes and returns the link with id, if this input is its
// source.
func (in *Input) RemoveLinkByID(id uuid.UUID) (*link.Link, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for i, l := range in.links {
		if l.ID() == id {
			in.links = append(in.links[:i], in.links[i+1:]...)
			return l, true
		}
	}
	return nil, false
}

func (in *Input) RemoveLinksTargeting(blockID uuid.UUID) []*link.Link {
	in.mu.Lock()
	defer in.mu.Unlock()
	kept := in.links[:0:0]
	var removed []*link.Link
	for _, l := range in.links {
		if l.TargetBlockID() == blockID {
			removed = append(removed, l)
			continue
		}
		kept = append(kept, l)
	}
	in.links = kept
	return removed
}

func (in *Input) RemoveAllLinks() []*link.Link {
	in.mu.Lock()
	defer in.mu.Unlock()
	removed := in.links
	in.links = nil
	return removed
}

// Links returns a snapshot copy of the outbound links sourced from this
// input.
func (in *Input) Links() []*link.Link {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]*link.Link, len(in.links))
	copy(out, in.links)
	return out
}

// Set delivers v to every outbound link sourced from this input (the
// input-as-source case), and records v as this input's own current value.
// Failed deliveries mark the link Error but do not block delivery to the
// remaining links.
func (in *Input) Set(v value.Value) {
	in.mu.Lock()
	in.current, in.hasCurrent = v, true
	links := make([]*link.Link, len(in.links))
	copy(links, in.links)
	in.mu.Unlock()

	for _, l := range links {
		if l.Writer().TrySend(v) {
			l.SetState(link.StateConnected)
		} else {
			l.SetState(link.StateError)
		}
	}
}
