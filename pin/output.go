package pin

import (
	"sync"

	"github.com/google/uuid"

	"logicmesh/link"
	"logicmesh/value"
)

// Output is an output pin: current value and outbound links. Set fans the
// new value out to every link non-blockingly, the same "publish to every
// subscriber, best-effort" shape pin.Input uses for its own fan-out.
type Output struct {
	mu sync.Mutex

	name       string
	kind       value.Kind
	blockID    uuid.UUID
	current    value.Value
	hasCurrent bool
	links      []*link.Link
}

func NewOutput(blockID uuid.UUID, name string, kind value.Kind) *Output {
	return &Output{name: name, kind: kind, blockID: blockID}
}

func (o *Output) Name() string       { return o.name }
func (o *Output) Kind() value.Kind   { return o.kind }
func (o *Output) BlockID() uuid.UUID { return o.blockID }

func (o *Output) Value() (value.Value, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current, o.hasCurrent
}

func (o *Output) IsConnected() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.links) > 0
}

func (o *Output) AddLink(l *link.Link) {
	o.mu.Lock()
	o.links = append(o.links, l)
	o.mu.Unlock()
}

// RemoveLinkByID removes and returns the link with id, if this output is
// its source.
func (o *Output) RemoveLinkByID(id uuid.UUID) (*link.Link, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, l := range o.links {
		if l.ID() == id {
			o.links = append(o.links[:i], o.links[i+1:]...)
			return l, true
		}
	}
	return nil, false
}

func (o *Output) RemoveLinksTargeting(blockID uuid.UUID) []*link.Link {
	o.mu.Lock()
	defer o.mu.Unlock()
	kept := o.links[:0:0]
	var removed []*link.Link
	for _, l := range o.links {
		if l.TargetBlockID() == blockID {
			removed = append(removed, l)
			continue
		}
		kept = append(kept, l)
	}
	o.links = kept
	return removed
}

func (o *Output) RemoveAllLinks() []*link.Link {
	o.mu.Lock()
	defer o.mu.Unlock()
	removed := o.links
	o.links = nil
	return removed
}

func (o *Output) Links() []*link.Link {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*link.Link, len(o.links))
	copy(out, o.links)
	return out
}

// Set stores v and non-blockingly forwards it to every outbound link.
// Delivery failure marks that link Error but does not stop delivery to the
// remaining links. Set never blocks.
func (o *Output) Set(v value.Value) {
	o.mu.Lock()
	o.current, o.hasCurrent = v, true
	links := make([]*link.Link, len(o.links))
	copy(links, o.links)
	o.mu.Unlock()

	for _, l := range links {
		if l.Writer().TrySend(v) {
			l.SetState(link.StateConnected)
		} else {
			l.SetState(link.StateError)
		}
	}
}
