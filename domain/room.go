package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"score-table/errors"
)

// TransferRecord is one entry of a room's append-only ledger. Display
// fields are denormalized at transfer time so the settlement view survives
// later avatar changes.
type TransferRecord struct {
	ID        string    `json:"id"`
	FromID    string    `json:"fromId"`
	FromName  string    `json:"fromName"`
	FromEmoji string    `json:"fromEmoji"`
	ToID      string    `json:"toId"`
	ToName    string    `json:"toName"`
	ToEmoji   string    `json:"toEmoji"`
	Amount    int       `json:"amount"`
	At        time.Time `json:"at"`
}

// Room holds the participants and the shared point ledger of one session.
// It is pure state: all methods assume the caller serializes access.
type Room struct {
	Code           string
	Participants   map[string]*Participant
	IsEnded        bool
	History        []TransferRecord
	CreatedAt      time.Time
	LastActivityAt time.Time

	// joinOrder makes "promote the first remaining participant" deterministic;
	// Go map iteration order is not.
	joinOrder []string
}

func NewRoom(code string, now time.Time) *Room {
	return &Room{
		Code:           code,
		Participants:   make(map[string]*Participant),
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

func (r *Room) Touch(now time.Time) {
	r.LastActivityAt = now
}

// IdleSince reports how long the room has gone without state-changing
// activity, falling back to the creation time.
func (r *Room) IdleSince(now time.Time) time.Duration {
	last := r.LastActivityAt
	if last.IsZero() {
		last = r.CreatedAt
	}
	return now.Sub(last)
}

func (r *Room) Member(id string) (*Participant, bool) {
	p, ok := r.Participants[id]
	return p, ok
}

func (r *Room) AddParticipant(p *Participant) {
	r.Participants[p.ID] = p
	r.joinOrder = append(r.joinOrder, p.ID)
}

// RemoveParticipant deletes a member and re-elects the host when the host
// left: the earliest joined remaining participant is promoted, keeping the
// "exactly one host per non-empty room" invariant. Reports whether the room
// is now empty.
func (r *Room) RemoveParticipant(id string) (empty bool) {
	leaving, ok := r.Participants[id]
	if !ok {
		return len(r.Participants) == 0
	}

	delete(r.Participants, id)
	r.joinOrder = lo.Without(r.joinOrder, id)

	if len(r.Participants) == 0 {
		return true
	}
	if leaving.IsHost {
		next := r.Participants[r.joinOrder[0]]
		next.IsHost = true
	}
	return false
}

// Host returns the current host, or nil for an empty room.
func (r *Room) Host() *Participant {
	for _, p := range r.Participants {
		if p.IsHost {
			return p
		}
	}
	return nil
}

// ApplyTransfer moves amount points from one member to the other and appends
// a ledger entry. Balances may go negative: the ledger tracks relative
// standing, not a conserved resource with a floor.
func (r *Room) ApplyTransfer(fromID, toID string, amount int, now time.Time) (TransferRecord, error) {
	if r.IsEnded {
		return TransferRecord{}, errors.ErrRoomEnded
	}
	if fromID == toID {
		return TransferRecord{}, errors.ErrSelfTransfer
	}
	from, ok := r.Participants[fromID]
	if !ok {
		return TransferRecord{}, errors.ErrPlayerNotFound
	}
	to, ok := r.Participants[toID]
	if !ok {
		return TransferRecord{}, errors.ErrPlayerNotFound
	}

	from.Score -= amount
	to.Score += amount

	record := TransferRecord{
		ID:        uuid.NewString(),
		FromID:    from.ID,
		FromName:  from.Name,
		FromEmoji: from.Avatar.Emoji,
		ToID:      to.ID,
		ToName:    to.Name,
		ToEmoji:   to.Avatar.Emoji,
		Amount:    amount,
		At:        now,
	}
	r.History = append(r.History, record)
	r.Touch(now)
	return record, nil
}

// End marks the room terminal. Callers broadcast the settlement view once
// and then delete the room; an ended room has no further retrievable state.
func (r *Room) End() {
	r.IsEnded = true
}

// MembersInJoinOrder returns the participants ordered by arrival.
func (r *Room) MembersInJoinOrder() []*Participant {
	return lo.Map(r.joinOrder, func(id string, _ int) *Participant {
		return r.Participants[id]
	})
}
