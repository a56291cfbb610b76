package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"score-table/contract"
	"score-table/errors"
	"score-table/protocol"
	"score-table/runtime"
)

const maxMessageSize = 4096

// Handler upgrades connections and runs one read loop per session. Each
// message is decoded once into a typed command, resolved to an identity,
// and dispatched to the coordinator; every failure is reported back to the
// requesting session only.
type Handler struct {
	log         *slog.Logger
	coordinator *runtime.Coordinator
	verifier    contract.IdentityVerifier
	sendBuffer  int
	upgrader    websocket.Upgrader
}

func NewHandler(log *slog.Logger, coordinator *runtime.Coordinator, verifier contract.IdentityVerifier, sendBuffer int) *Handler {
	return &Handler{
		log:         log,
		coordinator: coordinator,
		verifier:    verifier,
		sendBuffer:  sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Join links are opened from arbitrary origins (QR scan, chat
			// apps); the coordinator has no cookie-based ambient authority
			// to protect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	session := NewSession(conn, h.sendBuffer)
	defer session.Close()
	h.log.Debug("session opened", "remote", r.RemoteAddr)

	// The identity is remembered for the lifetime of the channel once the
	// first request declares it.
	var identity string

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		h.handleMessage(session, &identity, data)
	}

	// Connection loss only drops the channel binding; membership survives
	// so the identity can rejoin after a reload.
	if identity != "" {
		h.coordinator.Disconnect(identity)
	}
	h.log.Debug("session closed", "remote", r.RemoteAddr, "identity", identity)
}

// handleMessage processes one inbound frame. A panic anywhere below is
// caught here and reported as a generic failure: no request may kill the
// coordinator process.
func (h *Handler) handleMessage(session *Session, identity *string, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("panic while handling message", "panic", r)
			_ = session.Send(protocol.ErrorEvent(fmt.Errorf("internal error")))
		}
	}()

	cmd, err := protocol.Decode(data)
	if err != nil {
		_ = session.Send(protocol.ErrorEvent(err))
		return
	}

	if err := h.dispatch(session, identity, cmd); err != nil {
		_ = session.Send(protocol.ErrorEvent(err))
	}
}

func (h *Handler) dispatch(session *Session, identity *string, cmd protocol.Command) error {
	switch cmd := cmd.(type) {
	case protocol.Ping:
		return session.Send(protocol.PongEvent())

	case protocol.CreateRoom:
		id, err := h.resolve(identity, cmd.PlayerID, false)
		if err != nil {
			return err
		}
		snapshot := h.coordinator.Create(id, session)
		return session.Send(protocol.Event{Type: protocol.EventRoomCreated, Data: snapshot})

	case protocol.JoinRoom:
		// A reloaded page may declare a different identity than this
		// channel saw before; the declared one wins.
		id, err := h.resolve(identity, cmd.PlayerID, true)
		if err != nil {
			return err
		}
		snapshot, _, err := h.coordinator.Join(id, cmd.RoomCode, session)
		if err != nil {
			return err
		}
		return session.Send(protocol.Event{Type: protocol.EventRoomJoined, Data: snapshot})

	case protocol.Transfer:
		id, err := h.resolve(identity, cmd.PlayerID, false)
		if err != nil {
			return err
		}
		record, err := h.coordinator.Transfer(id, cmd.TargetID, cmd.Amount)
		if err != nil {
			return err
		}
		return session.Send(protocol.TransferSuccessEvent(record))

	case protocol.EndGame:
		id, err := h.resolve(identity, cmd.PlayerID, false)
		if err != nil {
			return err
		}
		// The settlement broadcast reaches the caller's own live channel;
		// no separate acknowledgment.
		return h.coordinator.End(id)

	case protocol.ChangeAvatar:
		id, err := h.resolve(identity, cmd.PlayerID, false)
		if err != nil {
			return err
		}
		return h.coordinator.ChangeAvatar(id, cmd.Avatar)

	case protocol.LeaveRoom:
		id, err := h.resolve(identity, cmd.PlayerID, false)
		if err != nil {
			return err
		}
		if err := h.coordinator.Leave(id); err != nil {
			return err
		}
		return session.Send(protocol.RoomLeftEvent())

	default:
		return fmt.Errorf("%w: unhandled command %T", errors.ErrMalformedRequest, cmd)
	}
}

// resolve settles the identity for one request: the channel's remembered
// identity wins unless force re-resolves from the declared value.
func (h *Handler) resolve(identity *string, declared string, force bool) (string, error) {
	if !force && *identity != "" {
		return *identity, nil
	}
	resolved, err := h.verifier.Verify(declared)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrMalformedRequest, err)
	}
	*identity = resolved
	return resolved, nil
}
