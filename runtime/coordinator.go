package runtime

import (
	"log/slog"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"score-table/contract"
	"score-table/domain"
	"score-table/errors"
	"score-table/protocol"
)

// Coordinator owns the room table and the session state machine. Every
// mutating operation runs to completion under one mutex: create, join,
// leave, transfer, end and avatar changes are multi-step read-then-write
// sequences across the room table and the registry, and are not safe to
// interleave.
type Coordinator struct {
	mu          sync.Mutex
	log         *slog.Logger
	registry    *Registry
	broadcaster *Broadcaster
	pool        *domain.AvatarPool
	rooms       map[string]*domain.Room
	rand        *rand.Rand
	roomTTL     time.Duration
	now         func() time.Time
}

func NewCoordinator(log *slog.Logger, registry *Registry, pool *domain.AvatarPool,
	rnd *rand.Rand, roomTTL time.Duration) *Coordinator {
	return &Coordinator{
		log:         log,
		registry:    registry,
		broadcaster: NewBroadcaster(log, registry),
		pool:        pool,
		rooms:       make(map[string]*domain.Room),
		rand:        rnd,
		roomTTL:     roomTTL,
		now:         time.Now,
	}
}

// Create opens a fresh room with the caller as sole participant and host.
// Any previous membership of the identity is torn down first, so an identity
// is never a member of two rooms at once. The returned snapshot goes to the
// creator only; nobody else can know the room yet.
func (c *Coordinator) Create(identity string, sink contract.SessionSink) protocol.RoomSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardownMembershipLocked(identity)

	now := c.now()
	code := c.allocateCodeLocked()
	room := domain.NewRoom(code, now)
	c.rooms[code] = room

	room.AddParticipant(domain.NewParticipant(identity, c.pool.Assign(room), true, now))
	c.registry.Bind(identity, code, sink)

	c.log.Info("room created", "room", code, "host", identity)
	return protocol.Snapshot(room)
}

// Join adds the identity to the room under code, or rebinds its channel if
// it is already a member (rejoin). Rejoins are invisible to other members:
// no state changed, so nothing is broadcast. New joins are broadcast to
// everyone, the joiner included.
func (c *Coordinator) Join(identity, code string, sink contract.SessionSink) (protocol.RoomSnapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.rooms[code]
	if !ok {
		return protocol.RoomSnapshot{}, false, errors.ErrRoomNotFound
	}
	if room.IsEnded {
		if prior, bound := c.registry.RoomOf(identity); bound && prior == code {
			c.registry.DropMembership(identity)
		}
		return protocol.RoomSnapshot{}, false, errors.ErrRoomEnded
	}

	now := c.now()

	if _, member := room.Member(identity); member {
		// Rejoin. A durable mapping pointing elsewhere is stale; tear it
		// down exactly as a leave before rebinding.
		if prior, bound := c.registry.RoomOf(identity); bound && prior == code {
			c.registry.RebindChannel(identity, sink)
		} else {
			if bound {
				c.teardownMembershipLocked(identity)
			}
			c.registry.Bind(identity, code, sink)
		}
		room.Touch(now)
		c.log.Debug("participant rejoined", "room", code, "participant", identity)
		return protocol.Snapshot(room), true, nil
	}

	if prior, bound := c.registry.RoomOf(identity); bound {
		if prior == code {
			// Stale mapping at this room with no participant entry left.
			// Restore the membership instead of failing the join.
			room.AddParticipant(domain.NewParticipant(
				identity, c.pool.Assign(room), len(room.Participants) == 0, now))
			c.registry.Bind(identity, code, sink)
			room.Touch(now)
			c.log.Warn("restored participant with stale mapping", "room", code, "participant", identity)
			return protocol.Snapshot(room), true, nil
		}
		c.teardownMembershipLocked(identity)
	}

	room.AddParticipant(domain.NewParticipant(identity, c.pool.Assign(room), false, now))
	c.registry.Bind(identity, code, sink)
	room.Touch(now)

	c.log.Info("participant joined", "room", code, "participant", identity, "members", len(room.Participants))
	c.broadcaster.BroadcastState(room)
	return protocol.Snapshot(room), false, nil
}

// Leave removes the caller from its room. Leaving with a settled balance
// only: a nonzero score fails with ErrScoreNotZero so nobody walks away from
// an open ledger.
func (c *Coordinator) Leave(identity string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	code, ok := c.registry.RoomOf(identity)
	if !ok {
		return errors.ErrNotInRoom
	}
	room, ok := c.rooms[code]
	if !ok {
		c.registry.Evict(identity)
		return errors.ErrRoomNotFound
	}
	participant, ok := room.Member(identity)
	if !ok {
		c.registry.Evict(identity)
		return errors.ErrPlayerNotFound
	}
	if participant.Score != 0 {
		return errors.ErrScoreNotZero
	}

	c.removeLocked(room, identity)
	c.log.Info("participant left", "room", code, "participant", identity)
	return nil
}

// Transfer moves points between two members of the caller's room. There is
// no sufficiency check: balances go negative freely. On success the caller
// gets the record back (for its private acknowledgment) while the room
// receives an animation event followed by the full state.
func (c *Coordinator) Transfer(identity, target string, amount int) (domain.TransferRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	code, ok := c.registry.RoomOf(identity)
	if !ok {
		return domain.TransferRecord{}, errors.ErrNotInRoom
	}
	room, ok := c.rooms[code]
	if !ok {
		return domain.TransferRecord{}, errors.ErrRoomNotFound
	}

	record, err := room.ApplyTransfer(identity, target, amount, c.now())
	if err != nil {
		return domain.TransferRecord{}, err
	}

	c.log.Info("points transferred", "room", code, "from", identity, "to", target, "amount", amount)
	c.broadcaster.Broadcast(room, protocol.TransferAnimationEvent(record))
	c.broadcaster.BroadcastState(room)
	return record, nil
}

// End terminates the caller's room. Host only. The settlement snapshot goes
// out once to every member with a live channel; members offline at this
// instant never see it. Afterwards the room and all its bindings are gone.
func (c *Coordinator) End(identity string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	code, ok := c.registry.RoomOf(identity)
	if !ok {
		return errors.ErrNotInRoom
	}
	room, ok := c.rooms[code]
	if !ok {
		c.registry.Evict(identity)
		return errors.ErrRoomNotFound
	}
	participant, ok := room.Member(identity)
	if !ok || !participant.IsHost {
		return errors.ErrNotAuthorized
	}

	room.End()
	c.broadcaster.BroadcastState(room)

	for id := range room.Participants {
		c.registry.Evict(id)
	}
	delete(c.rooms, code)
	c.log.Info("room ended", "room", code, "host", identity, "transfers", len(room.History))
	return nil
}

// ChangeAvatar replaces the caller's avatar and display name. The new
// avatar is applied unconditionally; the pool's uniqueness rule only guides
// assignment, never re-validates a deliberate choice.
func (c *Coordinator) ChangeAvatar(identity string, avatar domain.AvatarProfile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	code, ok := c.registry.RoomOf(identity)
	if !ok {
		return errors.ErrNotInRoom
	}
	room, ok := c.rooms[code]
	if !ok {
		c.registry.Evict(identity)
		return errors.ErrRoomNotFound
	}
	participant, ok := room.Member(identity)
	if !ok {
		return errors.ErrPlayerNotFound
	}

	participant.SetAvatar(avatar)
	room.Touch(c.now())
	c.broadcaster.BroadcastState(room)
	return nil
}

// Disconnect drops only the live channel. Membership survives so the
// identity can rejoin after a reload.
func (c *Coordinator) Disconnect(identity string) {
	c.registry.DropChannel(identity)
	c.log.Debug("channel dropped", "participant", identity)
}

// Sweep evicts every room idle beyond the TTL: memberships cleared, room
// deleted, no broadcast. Members still connected simply stop receiving
// updates for that code. Expired codes are collected first so the lock is
// only held per room afterwards, keeping long sweeps off the request path.
func (c *Coordinator) Sweep(now time.Time) int {
	c.mu.Lock()
	var expired []string
	for code, room := range c.rooms {
		if !room.IsEnded && room.IdleSince(now) > c.roomTTL {
			expired = append(expired, code)
		}
	}
	c.mu.Unlock()

	evicted := 0
	for _, code := range expired {
		c.mu.Lock()
		if room, ok := c.rooms[code]; ok && !room.IsEnded && room.IdleSince(now) > c.roomTTL {
			for id := range room.Participants {
				c.registry.Evict(id)
			}
			delete(c.rooms, code)
			evicted++
			c.log.Info("room expired", "room", code, "idle", room.IdleSince(now).String())
		}
		c.mu.Unlock()
	}
	return evicted
}

// RoomCount reports the number of active rooms, for operational visibility.
func (c *Coordinator) RoomCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rooms)
}

// ParticipantCount reports the total membership across all rooms.
func (c *Coordinator) ParticipantCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, room := range c.rooms {
		total += len(room.Participants)
	}
	return total
}

// teardownMembershipLocked removes any existing membership of the identity
// exactly as a leave would, host re-election included, before the identity
// is placed somewhere else. The score-zero policy deliberately does not
// apply here: moving on abandons the old ledger position.
func (c *Coordinator) teardownMembershipLocked(identity string) {
	code, ok := c.registry.RoomOf(identity)
	if !ok {
		return
	}
	room, ok := c.rooms[code]
	if !ok {
		c.registry.Evict(identity)
		return
	}
	if room.IsEnded {
		delete(c.rooms, code)
		c.registry.Evict(identity)
		return
	}
	c.removeLocked(room, identity)
}

// removeLocked is the shared leave primitive: drop the participant, delete
// the room when it empties, otherwise broadcast the new state (host
// re-election happens inside RemoveParticipant).
func (c *Coordinator) removeLocked(room *domain.Room, identity string) {
	empty := room.RemoveParticipant(identity)
	c.registry.Evict(identity)

	if empty {
		delete(c.rooms, room.Code)
		c.log.Info("room abandoned", "room", room.Code)
		return
	}
	if !room.IsEnded {
		c.broadcaster.BroadcastState(room)
	}
}

// allocateCodeLocked draws 4-digit codes until one is free. Codes are not
// reused while a room holds them.
func (c *Coordinator) allocateCodeLocked() string {
	for {
		code := strconv.Itoa(1000 + c.rand.Intn(9000))
		if _, taken := c.rooms[code]; !taken {
			return code
		}
	}
}
