package runtime

import (
	"log/slog"

	"score-table/domain"
	"score-table/protocol"
)

// Broadcaster pushes a room's current snapshot to every member with a live
// channel. Best-effort fan-out with no guarantees regarding delivery,
// ordering, durability, or retries: members without a channel are skipped
// silently, failed sends are logged and forgotten.
type Broadcaster struct {
	log      *slog.Logger
	registry *Registry
}

func NewBroadcaster(log *slog.Logger, registry *Registry) *Broadcaster {
	return &Broadcaster{log: log, registry: registry}
}

// BroadcastState sends the full room snapshot to all members.
func (b *Broadcaster) BroadcastState(room *domain.Room) {
	b.Broadcast(room, protocol.Event{Type: protocol.EventRoomState, Data: protocol.Snapshot(room)})
}

// Broadcast fans one event out to every member of the room that currently
// has a live channel.
func (b *Broadcaster) Broadcast(room *domain.Room, event protocol.Event) {
	for id := range room.Participants {
		sink, ok := b.registry.SinkOf(id)
		if !ok {
			continue
		}
		if err := sink.Send(event); err != nil {
			b.log.Debug("dropping event for unreachable member",
				"room", room.Code, "participant", id, "error", err)
		}
	}
}
