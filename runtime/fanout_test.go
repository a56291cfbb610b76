package runtime

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"score-table/domain"
	"score-table/mocks"
	"score-table/protocol"
)

func TestBroadcaster_SendsToEveryLiveChannel(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := NewRegistry()
	broadcaster := NewBroadcaster(log, registry)

	now := time.Now()
	room := domain.NewRoom("1234", now)
	a, b := uuid.NewString(), uuid.NewString()
	room.AddParticipant(domain.NewParticipant(a, domain.Catalog[0], true, now))
	room.AddParticipant(domain.NewParticipant(b, domain.Catalog[1], false, now))

	sinkA := mocks.NewMockSessionSink(ctrl)
	sinkB := mocks.NewMockSessionSink(ctrl)
	registry.Bind(a, "1234", sinkA)
	registry.Bind(b, "1234", sinkB)

	// Then each member receives the snapshot exactly once
	sinkA.EXPECT().Send(gomock.Any()).Return(nil).Times(1)
	sinkB.EXPECT().Send(gomock.Any()).Return(nil).Times(1)

	broadcaster.BroadcastState(room)
}

func TestBroadcaster_SkipsMembersWithoutChannel(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := NewRegistry()
	broadcaster := NewBroadcaster(log, registry)

	now := time.Now()
	room := domain.NewRoom("1234", now)
	online, offline := uuid.NewString(), uuid.NewString()
	room.AddParticipant(domain.NewParticipant(online, domain.Catalog[0], true, now))
	room.AddParticipant(domain.NewParticipant(offline, domain.Catalog[1], false, now))

	sink := mocks.NewMockSessionSink(ctrl)
	registry.Bind(online, "1234", sink)
	// offline has no channel at all

	var got protocol.Event
	sink.EXPECT().Send(gomock.Any()).Do(func(e protocol.Event) {
		got = e
	}).Return(nil).Times(1)

	broadcaster.BroadcastState(room)

	req.Equal(protocol.EventRoomState, got.Type)
}

func TestBroadcaster_FailedSendIsDroppedNotRetried(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := NewRegistry()
	broadcaster := NewBroadcaster(log, registry)

	now := time.Now()
	room := domain.NewRoom("1234", now)
	a := uuid.NewString()
	room.AddParticipant(domain.NewParticipant(a, domain.Catalog[0], true, now))

	sink := mocks.NewMockSessionSink(ctrl)
	registry.Bind(a, "1234", sink)

	// Then the failure surfaces exactly once: no retry
	sink.EXPECT().Send(gomock.Any()).Return(fmt.Errorf("connection reset")).Times(1)

	broadcaster.BroadcastState(room)
}
