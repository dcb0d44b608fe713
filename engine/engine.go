// Package engine owns every live block, drives its scheduled task,
// dispatches command messages, and publishes change-of-value notifications.
// The scheduler emulates single-threaded cooperative execution with one
// shared semaphore.Weighted(1) token rather than one goroutine per block
// racing freely: a mutex-guarded map holds the live-task table, and a
// single select loop multiplexes the command channel against shutdown.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"logicmesh/block"
	"logicmesh/link"
	"logicmesh/registry"
	"logicmesh/value"
)

const (
	// CommandQueueCapacity is the bounded inbound command channel size.
	CommandQueueCapacity = 32

	watcherBufferCapacity = 128
	pauseSleepInterval    = 20 * time.Millisecond
)

type task struct {
	blk    block.Block
	cancel context.CancelFunc
	done   chan struct{}

	// lastPinValues is the COV snapshot for this block; nil once there are
	// no watchers, to bound memory.
	lastPinValues map[string]value.Value
}

// tokenSetter is implemented by block.Base; schedule uses it structurally so
// the engine package never imports a concrete block.Base type assumption
// beyond the block.Block interface.
type tokenSetter interface {
	SetToken(*semaphore.Weighted)
}

// Engine is the runtime owning all live blocks. Every access to the
// blocks/watchers maps goes through a mutex: a mutex-guarded map of
// handles, never a raw pointer cast of a block behind an interface.
type Engine struct {
	mu     sync.Mutex
	blocks map[uuid.UUID]*task
	paused bool

	registry *registry.Registry
	token    *semaphore.Weighted

	watchMu  sync.Mutex
	watchers map[uuid.UUID]chan WatchMessage

	commands chan Command
	log      *slog.Logger
}

// New constructs an Engine backed by reg. Call Run to start its command
// dispatch loop.
func New(reg *registry.Registry) *Engine {
	return &Engine{
		blocks:   make(map[uuid.UUID]*task),
		registry: reg,
		token:    semaphore.NewWeighted(1),
		watchers: make(map[uuid.UUID]chan WatchMessage),
		commands: make(chan Command, CommandQueueCapacity),
		log:      slog.With("component", "engine"),
	}
}

// Submit enqueues cmd on the bounded command channel, blocking while full.
func (e *Engine) Submit(cmd Command) { e.commands <- cmd }

// SubmitContext enqueues cmd or returns ctx.Err() if ctx is done first.
func (e *Engine) SubmitContext(ctx context.Context, cmd Command) error {
	select {
	case e.commands <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains the command channel until ctx is cancelled. Shutdown causes
// the loop to break only after the in-flight command finishes dispatching.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			e.shutdownAll()
			return
		case cmd := <-e.commands:
			e.dispatch(ctx, cmd)
			if _, ok := cmd.(ShutdownCmd); ok {
				return
			}
		}
	}
}

func (e *Engine) dispatch(ctx context.Context, cmd Command) {
	switch c := cmd.(type) {
	case AddBlockCmd:
		id, err := e.AddBlock(ctx, c.Name, c.Library, c.ID)
		if c.Reply != nil {
			c.Reply <- AddBlockResult{ID: id, Err: err}
		}
	case RemoveBlockCmd:
		err := e.RemoveBlock(c.ID)
		if c.Reply != nil {
			c.Reply <- RemoveBlockResult{ID: c.ID, Err: err}
		}
	case ConnectCmd:
		decl, err := e.Connect(c.Link)
		if c.Reply != nil {
			c.Reply <- ConnectResult{Link: decl, Err: err}
		}
	case RemoveLinkCmd:
		found := e.RemoveLink(c.ID)
		if c.Reply != nil {
			c.Reply <- RemoveLinkResult{Found: found}
		}
	case InspectBlockCmd:
		param, err := e.InspectBlock(c.ID)
		if c.Reply != nil {
			c.Reply <- InspectBlockResult{Param: param, Err: err}
		}
	case WriteOutputCmd:
		prev, err := e.WriteBlockOutput(c.ID, c.Pin, c.Value)
		if c.Reply != nil {
			c.Reply <- WriteOutputResult{Previous: prev, Err: err}
		}
	case WriteInputCmd:
		prev, had, err := e.WriteBlockInput(c.ID, c.Pin, c.Value)
		if c.Reply != nil {
			c.Reply <- WriteInputResult{Previous: prev, HadPrevious: had, Err: err}
		}
	case WatchSubscribeCmd:
		client := e.WatchSubscribe(c.Sender)
		if c.Reply != nil {
			c.Reply <- WatchSubscribeResult{Client: client}
		}
	case WatchUnsubscribeCmd:
		e.WatchUnsubscribe(c.Client)
		if c.Reply != nil {
			c.Reply <- WatchUnsubscribeResult{Client: c.Client}
		}
	case GetProgramCmd:
		blocks, links, err := e.GetProgram()
		if c.Reply != nil {
			c.Reply <- GetProgramResult{Blocks: blocks, Links: links, Err: err}
		}
	case EvaluateCmd:
		outputs, err := e.Evaluate(ctx, c.Name, c.Library, c.Inputs)
		if c.Reply != nil {
			c.Reply <- EvaluateResult{Outputs: outputs, Err: err}
		}
	case PauseCmd:
		e.Pause()
	case ResumeCmd:
		e.Resume()
	case ShutdownCmd:
		e.shutdownAll()
	case ResetCmd:
		e.Reset()
	default:
		e.log.Warn("unknown command type", "type", fmt.Sprintf("%T", cmd))
	}
}

// Pause stops handing the scheduling token back to block tasks between
// iterations; Resume restores it.
func (e *Engine) Pause() {
	e.mu.Lock()
	e.paused = true
	e.mu.Unlock()
}

func (e *Engine) Resume() {
	e.mu.Lock()
	e.paused = false
	e.mu.Unlock()
}

func (e *Engine) isPaused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Reset terminates every scheduled block without stopping the dispatch
// loop itself, returning the engine to an empty graph.
func (e *Engine) Reset() {
	e.mu.Lock()
	ids := make([]uuid.UUID, 0, len(e.blocks))
	for id := range e.blocks {
		ids = append(ids, id)
	}
	e.mu.Unlock()
	for _, id := range ids {
		_ = e.RemoveBlock(id)
	}
}

func (e *Engine) shutdownAll() {
	e.Reset()
	e.watchMu.Lock()
	for id, ch := range e.watchers {
		close(ch)
		delete(e.watchers, id)
	}
	e.watchMu.Unlock()
}

// AddBlock resolves a factory from the registry, instantiates it, and
// schedules a task for it.
func (e *Engine) AddBlock(ctx context.Context, name, library string, id *uuid.UUID) (uuid.UUID, error) {
	if library == "" {
		library = "core"
	}
	blockID := uuid.New()
	if id != nil {
		blockID = *id
	}

	qname := library + "::" + name
	blk, err := e.registry.Make(qname, blockID)
	if err != nil {
		return uuid.Nil, wrap(ErrUnknownBlock, qname)
	}

	e.schedule(ctx, blk)
	return blockID, nil
}

// schedule starts blk's long-lived task: compute, observe terminate, loop.
func (e *Engine) schedule(ctx context.Context, blk block.Block) {
	taskCtx, cancel := context.WithCancel(ctx)
	t := &task{blk: blk, cancel: cancel, done: make(chan struct{})}

	if ts, ok := blk.(tokenSetter); ok {
		ts.SetToken(e.token)
	}

	e.mu.Lock()
	e.blocks[blk.ID()] = t
	e.mu.Unlock()

	go e.runTask(taskCtx, t)
}

func (e *Engine) runTask(ctx context.Context, t *task) {
	defer close(t.done)

	if err := e.token.Acquire(ctx, 1); err != nil {
		return
	}
	for {
		if ctx.Err() != nil || t.blk.State() == block.StateTerminate {
			e.token.Release(1)
			return
		}

		if e.isPaused() {
			e.token.Release(1)
			select {
			case <-ctx.Done():
				return
			case <-time.After(pauseSleepInterval):
			}
			if err := e.token.Acquire(ctx, 1); err != nil {
				return
			}
			continue
		}

		if t.blk.State() == block.StateStopped {
			t.blk.SetState(block.StateRunning)
		}

		if err := t.blk.Execute(ctx); err != nil {
			t.blk.SetState(block.StateFault)
			e.log.Debug("block execute fault", "block", t.blk.ID(), "err", err)
		} else if t.blk.State() == block.StateFault {
			t.blk.SetState(block.StateRunning)
		}

		e.publishCOV(t)

		if t.blk.State() == block.StateTerminate {
			e.token.Release(1)
			return
		}
	}
}

// RemoveBlock sets terminate, disconnects every link touching this block
// (decrementing the remote ends' connection counters), and drops it from
// the task table.
func (e *Engine) RemoveBlock(id uuid.UUID) error {
	e.mu.Lock()
	t, ok := e.blocks[id]
	if !ok {
		e.mu.Unlock()
		return wrap(ErrBlockNotFound, id.String())
	}
	delete(e.blocks, id)
	others := make([]*task, 0, len(e.blocks))
	for _, other := range e.blocks {
		others = append(others, other)
	}
	e.mu.Unlock()

	t.blk.SetState(block.StateTerminate)

	var outgoing []*link.Link
	for _, out := range t.blk.Outputs() {
		outgoing = append(outgoing, out.RemoveAllLinks()...)
	}
	for _, in := range t.blk.Inputs() {
		outgoing = append(outgoing, in.RemoveAllLinks()...)
	}
	for _, l := range outgoing {
		decrementTarget(others, l)
	}

	for _, other := range others {
		for _, out := range other.blk.Outputs() {
			out.RemoveLinksTargeting(id)
		}
		for _, in := range other.blk.Inputs() {
			in.RemoveLinksTargeting(id)
		}
	}

	t.cancel()
	<-t.done
	return nil
}

func decrementTarget(tasks []*task, l *link.Link) {
	for _, t := range tasks {
		if t.blk.ID() != l.TargetBlockID() {
			continue
		}
		if in, ok := t.blk.Input(l.TargetInputName()); ok {
			in.DecrementConn()
		}
		return
	}
}
