package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"score-table/domain"
	"score-table/errors"
)

func TestDecode_EveryKind(t *testing.T) {
	req := require.New(t)
	player := uuid.NewString()
	target := uuid.NewString()

	tests := []struct {
		name string
		raw  string
		want Command
	}{
		{
			name: "create room",
			raw:  `{"type":"CREATE_ROOM","playerId":"` + player + `"}`,
			want: CreateRoom{PlayerID: player},
		},
		{
			name: "join room",
			raw:  `{"type":"JOIN_ROOM","playerId":"` + player + `","roomId":"1234"}`,
			want: JoinRoom{PlayerID: player, RoomCode: "1234"},
		},
		{
			name: "transfer",
			raw:  `{"type":"TRANSFER","playerId":"` + player + `","targetPlayerId":"` + target + `","amount":5}`,
			want: Transfer{PlayerID: player, TargetID: target, Amount: 5},
		},
		{
			name: "end game",
			raw:  `{"type":"END_GAME","playerId":"` + player + `"}`,
			want: EndGame{PlayerID: player},
		},
		{
			name: "change avatar",
			raw:  `{"type":"CHANGE_AVATAR","playerId":"` + player + `","avatar":{"emoji":"🐼","name_cn":"熊猫","name_en":"Panda"}}`,
			want: ChangeAvatar{PlayerID: player, Avatar: domain.AvatarProfile{Emoji: "🐼", NameCN: "熊猫", NameEN: "Panda"}},
		},
		{
			name: "leave room",
			raw:  `{"type":"LEAVE_ROOM","playerId":"` + player + `"}`,
			want: LeaveRoom{PlayerID: player},
		},
		{
			name: "ping",
			raw:  `{"type":"PING"}`,
			want: Ping{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Decode([]byte(tt.raw))
			req.NoError(err)
			req.Equal(tt.want, cmd)
		})
	}
}

func TestDecode_MalformedRequests(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `{{{`},
		{name: "unknown type", raw: `{"type":"DANCE"}`},
		{name: "empty type", raw: `{}`},
		{name: "join without code", raw: `{"type":"JOIN_ROOM","playerId":"p"}`},
		{name: "join with short code", raw: `{"type":"JOIN_ROOM","playerId":"p","roomId":"42"}`},
		{name: "join with alpha code", raw: `{"type":"JOIN_ROOM","playerId":"p","roomId":"abcd"}`},
		{name: "transfer without target", raw: `{"type":"TRANSFER","playerId":"p","amount":5}`},
		{name: "transfer zero amount", raw: `{"type":"TRANSFER","playerId":"p","targetPlayerId":"q","amount":0}`},
		{name: "transfer negative amount", raw: `{"type":"TRANSFER","playerId":"p","targetPlayerId":"q","amount":-3}`},
		{name: "change avatar without avatar", raw: `{"type":"CHANGE_AVATAR","playerId":"p"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			req.ErrorIs(err, errors.ErrMalformedRequest)
		})
	}
}

func TestSnapshot_KeepsJoinOrderAndLedger(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	room := domain.NewRoom("1234", now)

	a, b := uuid.NewString(), uuid.NewString()
	room.AddParticipant(domain.NewParticipant(a, domain.Catalog[0], true, now))
	room.AddParticipant(domain.NewParticipant(b, domain.Catalog[1], false, now))
	_, err := room.ApplyTransfer(a, b, 7, now)
	req.NoError(err)

	snapshot := Snapshot(room)

	req.Equal("1234", snapshot.RoomID)
	req.False(snapshot.IsEnded)
	req.Len(snapshot.Players, 2)
	req.Equal(a, snapshot.Players[0].ID)
	req.True(snapshot.Players[0].IsHost)
	req.Equal(-7, snapshot.Players[0].Score)
	req.Equal(b, snapshot.Players[1].ID)
	req.Len(snapshot.History, 1)
}

func TestErrorEvent_CarriesWireCode(t *testing.T) {
	req := require.New(t)

	evt := ErrorEvent(errors.ErrScoreNotZero)

	req.Equal(EventError, evt.Type)
	data, ok := evt.Data.(ErrorData)
	req.True(ok)
	req.Equal(errors.CodeScoreNotZero, data.Code)

	raw, err := json.Marshal(evt)
	req.NoError(err)
	req.Contains(string(raw), `"SCORE_NOT_ZERO"`)
}
