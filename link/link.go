// Package link implements the typed, identified edge from a source pin to a
// target input. A Link's only concerns are identity, target addressing, a
// cloned writer handle, and a mutable delivery state — it carries no
// business logic, the same small tag/state-plus-payload shape as any other
// identified-change type.
package link

import (
	"sync/atomic"

	"github.com/google/uuid"

	"logicmesh/value"
)

// Writer is anything a Link can non-blockingly deliver a value through. A
// separate interface (rather than importing package pin directly) avoids an
// import cycle, since pin.Input holds links that in turn need a writer.
type Writer interface {
	TrySend(v value.Value) bool
}

// State is a Link's delivery state.
type State uint8

const (
	StateDisconnected State = iota
	StateConnected
	StateError
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Link is an immutable-identity, mutable-state edge: id, target (block,
// input name), a clone of the target input's writer handle, and a state.
// Equality of links is by ID.
type Link struct {
	id              uuid.UUID
	targetBlockID   uuid.UUID
	targetInputName string
	writer          Writer
	state           atomic.Int32
}

// New constructs a Link with a fresh ID and StateDisconnected.
func New(targetBlockID uuid.UUID, targetInputName string, writer Writer) *Link {
	return &Link{
		id:              uuid.New(),
		targetBlockID:   targetBlockID,
		targetInputName: targetInputName,
		writer:          writer,
	}
}

// NewWithID constructs a Link with a caller-supplied ID, used when
// reconstructing links whose identity must survive a reload (a loaded
// program document keeps a link's declared ID; a link declared without one
// gets a fresh ID).
func NewWithID(id, targetBlockID uuid.UUID, targetInputName string, writer Writer) *Link {
	return &Link{
		id:              id,
		targetBlockID:   targetBlockID,
		targetInputName: targetInputName,
		writer:          writer,
	}
}

func (l *Link) ID() uuid.UUID              { return l.id }
func (l *Link) TargetBlockID() uuid.UUID   { return l.targetBlockID }
func (l *Link) TargetInputName() string    { return l.targetInputName }
func (l *Link) Writer() Writer             { return l.writer }

func (l *Link) State() State {
	return State(l.state.Load())
}

func (l *Link) SetState(s State) {
	l.state.Store(int32(s))
}
