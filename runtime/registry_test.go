package runtime

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"score-table/protocol"
)

type nullSink struct{ name string }

func (nullSink) Send(protocol.Event) error { return nil }

func TestRegistry_Bind_SetsBothBindings(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	identity := uuid.NewString()
	sink := nullSink{name: "a"}

	// Given no binding exists
	_, ok := registry.RoomOf(identity)
	req.False(ok)

	// When the identity binds to a room with a live channel
	registry.Bind(identity, "1234", sink)

	// Then both bindings resolve
	code, ok := registry.RoomOf(identity)
	req.True(ok)
	req.Equal("1234", code)

	got, ok := registry.SinkOf(identity)
	req.True(ok)
	req.Equal(sink, got)
}

func TestRegistry_DropChannel_KeepsMembership(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	identity := uuid.NewString()
	registry.Bind(identity, "1234", nullSink{})

	// When the connection is lost
	registry.DropChannel(identity)

	// Then the room binding survives for rejoin
	code, ok := registry.RoomOf(identity)
	req.True(ok)
	req.Equal("1234", code)

	_, ok = registry.SinkOf(identity)
	req.False(ok)
}

func TestRegistry_RebindChannel_ReplacesOnlyTheSink(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	identity := uuid.NewString()
	registry.Bind(identity, "1234", nullSink{name: "old"})

	registry.RebindChannel(identity, nullSink{name: "new"})

	sink, ok := registry.SinkOf(identity)
	req.True(ok)
	req.Equal(nullSink{name: "new"}, sink)

	code, _ := registry.RoomOf(identity)
	req.Equal("1234", code)
}

func TestRegistry_Evict_RemovesEverything(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	identity := uuid.NewString()
	registry.Bind(identity, "1234", nullSink{})

	registry.Evict(identity)

	_, ok := registry.RoomOf(identity)
	req.False(ok)
	_, ok = registry.SinkOf(identity)
	req.False(ok)
}

func TestRegistry_DropMembership_KeepsChannel(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	identity := uuid.NewString()
	registry.Bind(identity, "1234", nullSink{})

	registry.DropMembership(identity)

	_, ok := registry.RoomOf(identity)
	req.False(ok)
	_, ok = registry.SinkOf(identity)
	req.True(ok)
}
