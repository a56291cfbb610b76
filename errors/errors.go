package errors

import (
	"errors"
	"fmt"
)

var (
	ErrRoomNotFound     = fmt.Errorf("room not found")
	ErrRoomEnded        = fmt.Errorf("room already ended")
	ErrNotInRoom        = fmt.Errorf("not a member of any room")
	ErrPlayerNotFound   = fmt.Errorf("player not found in room")
	ErrSelfTransfer     = fmt.Errorf("cannot transfer points to yourself")
	ErrNotAuthorized    = fmt.Errorf("only the host may end the room")
	ErrScoreNotZero     = fmt.Errorf("score must be zero to leave")
	ErrMalformedRequest = fmt.Errorf("malformed request")
	ErrWorkerPanic      = fmt.Errorf("worker panic")
)

// Wire codes surfaced in ERROR payloads so clients can branch on the
// failure reason without parsing the human message.
const (
	CodeRoomNotFound     = "ROOM_NOT_FOUND"
	CodeRoomEnded        = "ROOM_ENDED"
	CodeNotInRoom        = "NOT_IN_ROOM"
	CodePlayerNotFound   = "PLAYER_NOT_FOUND"
	CodeSelfTransfer     = "SELF_TRANSFER"
	CodeNotAuthorized    = "NOT_AUTHORIZED"
	CodeScoreNotZero     = "SCORE_NOT_ZERO"
	CodeMalformedRequest = "MALFORMED_REQUEST"
	CodeInternal         = "INTERNAL"
)

// CodeOf maps a domain error to its wire code. Unknown errors collapse to
// CodeInternal: the caller learns the request failed, nothing more.
func CodeOf(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return CodeRoomNotFound
	case errors.Is(err, ErrRoomEnded):
		return CodeRoomEnded
	case errors.Is(err, ErrNotInRoom):
		return CodeNotInRoom
	case errors.Is(err, ErrPlayerNotFound):
		return CodePlayerNotFound
	case errors.Is(err, ErrSelfTransfer):
		return CodeSelfTransfer
	case errors.Is(err, ErrNotAuthorized):
		return CodeNotAuthorized
	case errors.Is(err, ErrScoreNotZero):
		return CodeScoreNotZero
	case errors.Is(err, ErrMalformedRequest):
		return CodeMalformedRequest
	default:
		return CodeInternal
	}
}
