package domain

import "time"

// Participant is one member of a room. The ID is the durable identity the
// client re-presents after a reload; it outlives any single connection.
type Participant struct {
	ID       string
	Avatar   AvatarProfile
	Name     string
	Score    int
	IsHost   bool
	JoinedAt time.Time
}

func NewParticipant(id string, avatar AvatarProfile, isHost bool, now time.Time) *Participant {
	return &Participant{
		ID:       id,
		Avatar:   avatar,
		Name:     avatar.NameCN,
		IsHost:   isHost,
		JoinedAt: now,
	}
}

// SetAvatar replaces the visual identity and resets the display name to the
// new avatar's localized name. Uniqueness against the room is deliberately
// not re-checked here: the UI constrains the choice.
func (p *Participant) SetAvatar(avatar AvatarProfile) {
	p.Avatar = avatar
	p.Name = avatar.NameCN
}
