package engine

import (
	"github.com/google/uuid"

	"logicmesh/value"
)

// Command is the tagged-union request protocol external clients submit to
// an Engine's command channel. Every request names the client that issued
// it and carries its own reply channel so a response never reaches anyone
// but the caller that opened it.
type Command interface {
	client() uuid.UUID
}

type base struct {
	Client uuid.UUID
}

func (b base) client() uuid.UUID { return b.Client }

// AddBlockCmd instantiates a new block from the registry.
type AddBlockCmd struct {
	base
	Name    string
	Library string // "" defaults to "core"
	ID      *uuid.UUID
	Reply   chan AddBlockResult
}

type AddBlockResult struct {
	ID  uuid.UUID
	Err error
}

// RemoveBlockCmd tears down a block: terminate, unlink, drop.
type RemoveBlockCmd struct {
	base
	ID    uuid.UUID
	Reply chan RemoveBlockResult
}

type RemoveBlockResult struct {
	ID  uuid.UUID
	Err error
}

// ConnectCmd creates a link between two pins.
type ConnectCmd struct {
	base
	Link  LinkDecl
	Reply chan ConnectResult
}

type ConnectResult struct {
	Link LinkDecl
	Err  error
}

// RemoveLinkCmd removes a link wherever it lives in the graph.
type RemoveLinkCmd struct {
	base
	ID    uuid.UUID
	Reply chan RemoveLinkResult
}

type RemoveLinkResult struct {
	Found bool
}

// InspectBlockCmd snapshots a block's pins.
type InspectBlockCmd struct {
	base
	ID    uuid.UUID
	Reply chan InspectBlockResult
}

type InspectBlockResult struct {
	Param BlockParam
	Err   error
}

// WriteOutputCmd overwrites an output, fanning the new value through links.
type WriteOutputCmd struct {
	base
	ID    uuid.UUID
	Pin   string
	Value value.Value
	Reply chan WriteOutputResult
}

type WriteOutputResult struct {
	Previous value.Value
	Err      error
}

// WriteInputCmd overwrites an input's stored value without touching its
// queue.
type WriteInputCmd struct {
	base
	ID    uuid.UUID
	Pin   string
	Value value.Value
	Reply chan WriteInputResult
}

type WriteInputResult struct {
	Previous    value.Value
	HadPrevious bool
	Err         error
}

// WatchSubscribeCmd registers sender as a watcher of COV notifications.
type WatchSubscribeCmd struct {
	base
	Sender chan WatchMessage
	Reply  chan WatchSubscribeResult
}

type WatchSubscribeResult struct {
	Client uuid.UUID
}

// WatchUnsubscribeCmd removes a previously registered watcher.
type WatchUnsubscribeCmd struct {
	base
	Reply chan WatchUnsubscribeResult
}

type WatchUnsubscribeResult struct {
	Client uuid.UUID
}

// GetProgramCmd reconstructs a declarative graph from live state.
type GetProgramCmd struct {
	base
	Reply chan GetProgramResult
}

type GetProgramResult struct {
	Blocks []BlockDecl
	Links  []LinkDecl
	Err    error
}

// EvaluateCmd runs a block once, outside the scheduler, and discards it.
type EvaluateCmd struct {
	base
	Name    string
	Library string
	Inputs  []value.Value
	Reply   chan EvaluateResult
}

type EvaluateResult struct {
	Outputs []value.Value
	Err     error
}

// PauseCmd, ResumeCmd, ShutdownCmd, ResetCmd carry no reply.
type PauseCmd struct{ base }
type ResumeCmd struct{ base }
type ShutdownCmd struct{ base }
type ResetCmd struct{ base }

// BlockParam is the snapshot structure returned by InspectBlock.
type BlockParam struct {
	ID      uuid.UUID
	Name    string
	Library string
	Inputs  map[string]PinSnapshot
	Outputs map[string]PinSnapshot
}

type PinSnapshot struct {
	Kind     value.Kind
	Value    value.Value
	HasValue bool
}

// ChangeSource tags which side of a pin a COV change came from.
type ChangeSource struct {
	Input bool // true: Input(pin, value); false: Output(pin, value)
	Pin   string
	Value value.Value
}

// WatchMessage is published to every subscriber after an execute iteration
// whose pin values differ from the previous snapshot.
type WatchMessage struct {
	BlockID uuid.UUID
	Changes map[string]ChangeSource
}

// BlockDecl and LinkDecl mirror the declarative program document shapes
// used both by the command protocol (Connect, GetProgram) and by the
// loader package.
type BlockDecl struct {
	ID       uuid.UUID
	Name     string
	Dis      string
	Library  string
	Category string
	Version  string
}

type LinkDecl struct {
	ID            uuid.UUID
	HasID         bool
	SourceBlockID uuid.UUID
	TargetBlockID uuid.UUID
	SourcePinName string
	TargetPinName string
}
