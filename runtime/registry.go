// Package runtime coordinates rooms, sessions and background workers.
// It owns serialization and fan-out; domain rules live in domain.
package runtime

import (
	"sync"

	"score-table/contract"
)

// Registry keeps the two per-identity bindings side by side:
//
//   - membership (identity → room code): durable, survives connection loss,
//     removed only by leave, room end, or expiry;
//   - channel (identity → live session): ephemeral, dropped on disconnect.
//
// Only compound operations are exposed. Callers never touch the maps, so
// "membership survives channel loss; a channel never implies membership"
// holds at the API boundary instead of by caller discipline.
type Registry struct {
	mu          sync.RWMutex
	memberships map[string]string
	channels    map[string]contract.SessionSink
}

func NewRegistry() *Registry {
	return &Registry{
		memberships: make(map[string]string),
		channels:    make(map[string]contract.SessionSink),
	}
}

// Bind records both a room membership and a live channel for the identity,
// the normal outcome of a successful create or join.
func (r *Registry) Bind(identity, roomCode string, sink contract.SessionSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memberships[identity] = roomCode
	if sink != nil {
		r.channels[identity] = sink
	}
}

// RebindChannel refreshes only the live channel, used on rejoin when the
// membership is already correct.
func (r *Registry) RebindChannel(identity string, sink contract.SessionSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sink != nil {
		r.channels[identity] = sink
	}
}

// DropChannel forgets the live channel and nothing else. Connection loss
// must never remove a participant from its room.
func (r *Registry) DropChannel(identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.channels, identity)
}

// DropMembership forgets only the room binding, used when a stale mapping
// points at an ended room but the connection should stay usable.
func (r *Registry) DropMembership(identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.memberships, identity)
}

// Evict removes both bindings: explicit leave, room end, expiry.
func (r *Registry) Evict(identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.memberships, identity)
	delete(r.channels, identity)
}

func (r *Registry) RoomOf(identity string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code, ok := r.memberships[identity]
	return code, ok
}

func (r *Registry) SinkOf(identity string) (contract.SessionSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.channels[identity]
	return sink, ok
}
