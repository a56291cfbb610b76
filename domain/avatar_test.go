package domain

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCatalog_EmojisAreUnique(t *testing.T) {
	req := require.New(t)
	seen := make(map[string]struct{})
	for _, profile := range Catalog {
		_, dup := seen[profile.Emoji]
		req.False(dup, "duplicate emoji %s", profile.Emoji)
		seen[profile.Emoji] = struct{}{}
	}
}

func TestAvatarPool_Assign_EmptyRoomGetsAnyProfile(t *testing.T) {
	req := require.New(t)
	pool := NewAvatarPool(Catalog, rand.New(rand.NewSource(3)))

	profile := pool.Assign(nil)
	req.Contains(Catalog, profile)

	profile = pool.Assign(NewRoom("1234", time.Now()))
	req.Contains(Catalog, profile)
}

func TestAvatarPool_Assign_NeverCollidesWhileCapacityRemains(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	pool := NewAvatarPool(Catalog, rand.New(rand.NewSource(9)))
	room := NewRoom("1234", now)

	// When the whole catalog gets consumed one join at a time
	for i := 0; i < len(Catalog); i++ {
		profile := pool.Assign(room)
		for _, member := range room.Participants {
			req.NotEqual(member.Avatar.Emoji, profile.Emoji)
		}
		room.AddParticipant(NewParticipant(uuid.NewString(), profile, i == 0, now))
	}
}

func TestAvatarPool_Assign_ExhaustedPoolFallsBackToRandom(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	small := Catalog[:2]
	pool := NewAvatarPool(small, rand.New(rand.NewSource(5)))
	room := NewRoom("1234", now)

	room.AddParticipant(NewParticipant(uuid.NewString(), small[0], true, now))
	room.AddParticipant(NewParticipant(uuid.NewString(), small[1], false, now))

	// Then an assignment still succeeds, accepting the visual collision
	profile := pool.Assign(room)
	req.Contains(small, profile)
}
