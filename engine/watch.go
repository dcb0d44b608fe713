package engine

import (
	"github.com/google/uuid"

	"logicmesh/value"
)

// NewWatcherChannel returns a buffered channel sized for a single watcher
// subscription; callers pass it to WatchSubscribe.
func NewWatcherChannel() chan WatchMessage {
	return make(chan WatchMessage, watcherBufferCapacity)
}

// WatchSubscribe registers sender to receive WatchMessage notifications and
// returns its client id. sender is used with a best-effort, non-blocking
// send — a slow or stalled watcher drops notifications rather than stalling
// the block that triggered them.
func (e *Engine) WatchSubscribe(sender chan WatchMessage) uuid.UUID {
	client := uuid.New()
	e.watchMu.Lock()
	e.watchers[client] = sender
	e.watchMu.Unlock()
	return client
}

// WatchUnsubscribe removes a previously registered watcher.
func (e *Engine) WatchUnsubscribe(client uuid.UUID) {
	e.watchMu.Lock()
	delete(e.watchers, client)
	e.watchMu.Unlock()
}

func (e *Engine) hasWatchers() bool {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()
	return len(e.watchers) > 0
}

func (e *Engine) broadcast(msg WatchMessage) {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()
	for _, ch := range e.watchers {
		select {
		case ch <- msg:
		default:
		}
	}
}

// publishCOV compares t's pins against its last snapshot, emits one
// WatchMessage naming every pin that differs, and updates the snapshot.
// With no watchers subscribed the snapshot is dropped instead of kept up to
// date, so an idle block with no observers carries no tracking overhead.
func (e *Engine) publishCOV(t *task) {
	if !e.hasWatchers() {
		t.lastPinValues = nil
		return
	}

	changes := make(map[string]ChangeSource)
	current := make(map[string]value.Value)

	for _, in := range t.blk.Inputs() {
		v, has := in.CurrentValue()
		if !has {
			continue
		}
		current[in.Name()] = v
		if prev, ok := t.lastPinValues[in.Name()]; !ok || !value.Equal(prev, v) {
			changes[in.Name()] = ChangeSource{Input: true, Pin: in.Name(), Value: v}
		}
	}
	for _, out := range t.blk.Outputs() {
		v, has := out.Value()
		if !has {
			continue
		}
		current[out.Name()] = v
		if prev, ok := t.lastPinValues[out.Name()]; !ok || !value.Equal(prev, v) {
			changes[out.Name()] = ChangeSource{Input: false, Pin: out.Name(), Value: v}
		}
	}

	t.lastPinValues = current
	if len(changes) == 0 {
		return
	}
	e.broadcast(WatchMessage{BlockID: t.blk.ID(), Changes: changes})
}
