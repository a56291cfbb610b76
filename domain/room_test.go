package domain

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"score-table/errors"
)

func testPool() *AvatarPool {
	return NewAvatarPool(Catalog, rand.New(rand.NewSource(1)))
}

func TestRoom_RemoveParticipant_PromotesEarliestRemaining(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	room := NewRoom("1234", now)
	pool := testPool()

	// Given a room with three members, the first being host
	a, b, c := uuid.NewString(), uuid.NewString(), uuid.NewString()
	room.AddParticipant(NewParticipant(a, pool.Assign(room), true, now))
	room.AddParticipant(NewParticipant(b, pool.Assign(room), false, now))
	room.AddParticipant(NewParticipant(c, pool.Assign(room), false, now))

	// When the host leaves
	empty := room.RemoveParticipant(a)

	// Then the earliest joined remaining member becomes host
	req.False(empty)
	req.Len(room.Participants, 2)
	req.NotNil(room.Host())
	req.Equal(b, room.Host().ID)
}

func TestRoom_RemoveParticipant_NonHostKeepsHost(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	room := NewRoom("1234", now)
	pool := testPool()

	a, b := uuid.NewString(), uuid.NewString()
	room.AddParticipant(NewParticipant(a, pool.Assign(room), true, now))
	room.AddParticipant(NewParticipant(b, pool.Assign(room), false, now))

	empty := room.RemoveParticipant(b)

	req.False(empty)
	req.Equal(a, room.Host().ID)
}

func TestRoom_RemoveParticipant_LastMemberEmptiesRoom(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	room := NewRoom("1234", now)

	a := uuid.NewString()
	room.AddParticipant(NewParticipant(a, Catalog[0], true, now))

	req.True(room.RemoveParticipant(a))
	req.Empty(room.Participants)
}

func TestRoom_HostInvariant_AcrossRandomChurn(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	room := NewRoom("4321", now)
	pool := testPool()
	rnd := rand.New(rand.NewSource(42))

	var ids []string
	for i := 0; i < 200; i++ {
		if len(ids) == 0 || rnd.Intn(2) == 0 {
			id := uuid.NewString()
			room.AddParticipant(NewParticipant(id, pool.Assign(room), len(room.Participants) == 0, now))
			ids = append(ids, id)
		} else {
			victim := rnd.Intn(len(ids))
			room.RemoveParticipant(ids[victim])
			ids = append(ids[:victim], ids[victim+1:]...)
		}

		// Then at most one host exists whenever the room is non-empty
		hosts := 0
		for _, p := range room.Participants {
			if p.IsHost {
				hosts++
			}
		}
		if len(room.Participants) > 0 {
			req.Equal(1, hosts)
		}
	}
}

func TestRoom_ApplyTransfer_MovesPointsAndAppendsLedger(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	room := NewRoom("1234", now)

	a, b := uuid.NewString(), uuid.NewString()
	room.AddParticipant(NewParticipant(a, Catalog[0], true, now))
	room.AddParticipant(NewParticipant(b, Catalog[1], false, now))

	record, err := room.ApplyTransfer(a, b, 5, now.Add(time.Second))

	req.NoError(err)
	req.Equal(-5, room.Participants[a].Score)
	req.Equal(5, room.Participants[b].Score)
	req.Len(room.History, 1)
	req.Equal(5, record.Amount)
	req.Equal(a, record.FromID)
	req.Equal(b, record.ToID)
	req.Equal(Catalog[0].NameCN, record.FromName)
	req.Equal(now.Add(time.Second), room.LastActivityAt)
}

func TestRoom_ApplyTransfer_SumOfScoresIsInvariant(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	room := NewRoom("1234", now)
	pool := testPool()
	rnd := rand.New(rand.NewSource(7))

	ids := []string{uuid.NewString(), uuid.NewString(), uuid.NewString(), uuid.NewString()}
	for i, id := range ids {
		room.AddParticipant(NewParticipant(id, pool.Assign(room), i == 0, now))
	}

	for i := 0; i < 500; i++ {
		from := ids[rnd.Intn(len(ids))]
		to := ids[rnd.Intn(len(ids))]
		if from == to {
			continue
		}
		_, err := room.ApplyTransfer(from, to, 1+rnd.Intn(100), now)
		req.NoError(err)
	}

	sum := 0
	for _, p := range room.Participants {
		sum += p.Score
	}
	req.Zero(sum)
}

func TestRoom_ApplyTransfer_Rejections(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	room := NewRoom("1234", now)
	a, b := uuid.NewString(), uuid.NewString()
	room.AddParticipant(NewParticipant(a, Catalog[0], true, now))
	room.AddParticipant(NewParticipant(b, Catalog[1], false, now))

	_, err := room.ApplyTransfer(a, a, 5, now)
	req.ErrorIs(err, errors.ErrSelfTransfer)

	_, err = room.ApplyTransfer(a, uuid.NewString(), 5, now)
	req.ErrorIs(err, errors.ErrPlayerNotFound)

	room.End()
	_, err = room.ApplyTransfer(a, b, 5, now)
	req.ErrorIs(err, errors.ErrRoomEnded)
	req.Empty(room.History)
}

func TestRoom_IdleSince_FallsBackToCreatedAt(t *testing.T) {
	req := require.New(t)
	created := time.Now()
	room := NewRoom("1234", created)
	room.LastActivityAt = time.Time{}

	req.Equal(10*time.Minute, room.IdleSince(created.Add(10*time.Minute)))
}
