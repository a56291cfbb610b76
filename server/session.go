// Package server exposes the coordinator over one persistent websocket per
// client device.
package server

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"score-table/protocol"
)

const writeWait = 10 * time.Second

var (
	errSessionClosed = errors.New("session closed")
	errBufferFull    = errors.New("outbound buffer full, event dropped")
)

// Session wraps one websocket connection as a SessionSink. Send only
// enqueues: a dedicated write pump drains the buffer onto the wire, so a
// stalled client can never hold up the caller. When the buffer is full the
// event is dropped and the caller told so.
type Session struct {
	conn   *websocket.Conn
	outbox chan protocol.Event
	done   chan struct{}
	once   sync.Once
}

func NewSession(conn *websocket.Conn, bufferSize int) *Session {
	s := &Session{
		conn:   conn,
		outbox: make(chan protocol.Event, bufferSize),
		done:   make(chan struct{}),
	}
	go s.writePump()
	return s
}

func (s *Session) Send(event protocol.Event) error {
	select {
	case <-s.done:
		return errSessionClosed
	default:
	}
	select {
	case s.outbox <- event:
		return nil
	default:
		return errBufferFull
	}
}

// Close stops the write pump. Pending buffered events are discarded; the
// connection itself is closed by the read loop that owns it.
func (s *Session) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Session) writePump() {
	for {
		select {
		case <-s.done:
			return
		case event := <-s.outbox:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.Close()
				return
			}
			if err := s.conn.WriteJSON(event); err != nil {
				s.Close()
				return
			}
		}
	}
}
