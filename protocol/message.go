// Package protocol defines the wire format of the coordinator: the inbound
// request envelope, the closed set of decoded commands, and the outbound
// event payloads fanned out to sessions.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"score-table/domain"
	"score-table/errors"
)

type Kind string

const (
	KindCreateRoom   Kind = "CREATE_ROOM"
	KindJoinRoom     Kind = "JOIN_ROOM"
	KindTransfer     Kind = "TRANSFER"
	KindEndGame      Kind = "END_GAME"
	KindChangeAvatar Kind = "CHANGE_AVATAR"
	KindLeaveRoom    Kind = "LEAVE_ROOM"
	KindPing         Kind = "PING"
)

// Inbound is the raw client envelope. Fields are a union across all request
// kinds; Decode narrows it to one typed command.
type Inbound struct {
	Type           Kind                  `json:"type"`
	PlayerID       string                `json:"playerId"`
	RoomID         string                `json:"roomId"`
	TargetPlayerID string                `json:"targetPlayerId"`
	Amount         int                   `json:"amount"`
	Avatar         *domain.AvatarProfile `json:"avatar"`
}

// Command is the closed set of decoded requests. Adding a message kind means
// adding a variant here and a case in every switch over it.
type Command interface{ isCommand() }

type CreateRoom struct {
	PlayerID string
}

type JoinRoom struct {
	PlayerID string
	RoomCode string `validate:"required,len=4,number"`
}

type Transfer struct {
	PlayerID string
	TargetID string `validate:"required"`
	Amount   int    `validate:"required,gt=0"`
}

type EndGame struct {
	PlayerID string
}

type ChangeAvatar struct {
	PlayerID string
	Avatar   domain.AvatarProfile `validate:"required"`
}

type LeaveRoom struct {
	PlayerID string
}

type Ping struct{}

func (CreateRoom) isCommand()   {}
func (JoinRoom) isCommand()     {}
func (Transfer) isCommand()     {}
func (EndGame) isCommand()      {}
func (ChangeAvatar) isCommand() {}
func (LeaveRoom) isCommand()    {}
func (Ping) isCommand()         {}

var validate = validator.New()

// Decode parses one wire message into its typed command. Any shape problem
// (bad JSON, unknown type, missing or invalid fields) comes back wrapping
// ErrMalformedRequest.
func Decode(data []byte) (Command, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedRequest, err)
	}

	var cmd Command
	switch in.Type {
	case KindCreateRoom:
		cmd = CreateRoom{PlayerID: in.PlayerID}
	case KindJoinRoom:
		cmd = JoinRoom{PlayerID: in.PlayerID, RoomCode: in.RoomID}
	case KindTransfer:
		cmd = Transfer{PlayerID: in.PlayerID, TargetID: in.TargetPlayerID, Amount: in.Amount}
	case KindEndGame:
		cmd = EndGame{PlayerID: in.PlayerID}
	case KindChangeAvatar:
		if in.Avatar == nil || in.Avatar.Emoji == "" {
			return nil, fmt.Errorf("%w: missing avatar", errors.ErrMalformedRequest)
		}
		cmd = ChangeAvatar{PlayerID: in.PlayerID, Avatar: *in.Avatar}
	case KindLeaveRoom:
		cmd = LeaveRoom{PlayerID: in.PlayerID}
	case KindPing:
		cmd = Ping{}
	default:
		return nil, fmt.Errorf("%w: unknown type %q", errors.ErrMalformedRequest, in.Type)
	}

	if err := validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedRequest, err)
	}
	return cmd, nil
}

type EventType string

const (
	EventRoomCreated      EventType = "ROOM_CREATED"
	EventRoomJoined       EventType = "ROOM_JOINED"
	EventRoomState        EventType = "ROOM_STATE"
	EventRoomLeft         EventType = "ROOM_LEFT"
	EventTransferSuccess  EventType = "TRANSFER_SUCCESS"
	EventTransferAnimate  EventType = "TRANSFER_ANIMATION"
	EventError            EventType = "ERROR"
	EventPong             EventType = "PONG"
)

// Event is the outbound envelope.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}

type PlayerView struct {
	ID     string               `json:"id"`
	Avatar domain.AvatarProfile `json:"avatar"`
	Name   string               `json:"name"`
	Score  int                  `json:"score"`
	IsHost bool                 `json:"isHost"`
}

// RoomSnapshot is the full room view sent on every state change and as the
// one-shot settlement view when the room ends.
type RoomSnapshot struct {
	RoomID  string                  `json:"roomId"`
	Players []PlayerView            `json:"players"`
	IsEnded bool                    `json:"isEnded"`
	History []domain.TransferRecord `json:"history"`
}

func Snapshot(room *domain.Room) RoomSnapshot {
	return RoomSnapshot{
		RoomID: room.Code,
		Players: lo.Map(room.MembersInJoinOrder(), func(p *domain.Participant, _ int) PlayerView {
			return PlayerView{
				ID:     p.ID,
				Avatar: p.Avatar,
				Name:   p.Name,
				Score:  p.Score,
				IsHost: p.IsHost,
			}
		}),
		IsEnded: room.IsEnded,
		History: room.History,
	}
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func ErrorEvent(err error) Event {
	return Event{Type: EventError, Data: ErrorData{Code: errors.CodeOf(err), Message: err.Error()}}
}

type TransferSuccessData struct {
	FromID    string `json:"fromId"`
	FromName  string `json:"fromName"`
	FromEmoji string `json:"fromEmoji"`
	ToID      string `json:"toId"`
	ToName    string `json:"toName"`
	ToEmoji   string `json:"toEmoji"`
	Amount    int    `json:"amount"`
}

type TransferAnimationData struct {
	FromID string `json:"fromId"`
	ToID   string `json:"toId"`
	Amount int    `json:"amount"`
}

func TransferSuccessEvent(record domain.TransferRecord) Event {
	return Event{Type: EventTransferSuccess, Data: TransferSuccessData{
		FromID:    record.FromID,
		FromName:  record.FromName,
		FromEmoji: record.FromEmoji,
		ToID:      record.ToID,
		ToName:    record.ToName,
		ToEmoji:   record.ToEmoji,
		Amount:    record.Amount,
	}}
}

func TransferAnimationEvent(record domain.TransferRecord) Event {
	return Event{Type: EventTransferAnimate, Data: TransferAnimationData{
		FromID: record.FromID,
		ToID:   record.ToID,
		Amount: record.Amount,
	}}
}

type AckData struct {
	Message string `json:"message"`
}

func RoomLeftEvent() Event {
	return Event{Type: EventRoomLeft, Data: AckData{Message: "left room"}}
}

func PongEvent() Event {
	return Event{Type: EventPong}
}
