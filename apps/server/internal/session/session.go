// Package session implements the per-connection player session (C3):
// identity, outbound event queue, liveness timestamp and connected flag.
// Grounded on original_source/src/core/manager.rs's PlayerSession
// (Arc<AtomicBool> connected flag, Mutex<Instant> last_ping) and the
// teacher's buffered Connection.Send channel idiom.
package session

import (
	"sync"
	"sync/atomic"
	"time"
)

const outboundBuffer = 64

// Session is a server-side record of an authenticated user, independent of
// any particular connection.
type Session struct {
	UserID string

	connected atomic.Bool

	mu       sync.Mutex
	outbound chan []byte
	lastPing time.Time
}

// New constructs a session with a fresh buffered outbound channel,
// connected=true, last_ping=now.
func New(userID string) *Session {
	s := &Session{
		UserID:   userID,
		outbound: make(chan []byte, outboundBuffer),
		lastPing: time.Now(),
	}
	s.connected.Store(true)
	return s
}

// Rebind replaces the outbound channel on reconnect and marks the session
// connected again. Used when a new connection authenticates with a
// user_id already known to the manager.
func (s *Session) Rebind() chan []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbound = make(chan []byte, outboundBuffer)
	s.connected.Store(true)
	s.lastPing = time.Now()
	return s.outbound
}

// Outbound returns the current outbound channel. The channel identity
// changes across a Rebind, so callers must re-fetch it after reconnect.
func (s *Session) Outbound() chan []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outbound
}

// Send enqueues data without blocking. If the channel is full or closed,
// the seat is treated as disconnected, per §4.3's fan-out discipline.
func (s *Session) Send(data []byte) bool {
	ch := s.Outbound()
	defer func() {
		// A send on a closed channel panics; treat it the same as a full
		// buffer — disconnect the seat rather than crash the caller.
		if r := recover(); r != nil {
			s.MarkDisconnected()
		}
	}()
	select {
	case ch <- data:
		return true
	default:
		s.MarkDisconnected()
		return false
	}
}

func (s *Session) MarkConnected()    { s.connected.Store(true) }
func (s *Session) MarkDisconnected() { s.connected.Store(false) }
func (s *Session) Connected() bool   { return s.connected.Load() }

// Touch updates last_ping to now. Called on any inbound frame that counts
// as liveness: a text intent, a ping frame, or the binary keepalive byte.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPing = now
}

func (s *Session) LastPing() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPing
}

// StaleFor reports whether no liveness frame has arrived within d.
func (s *Session) StaleFor(d time.Duration) bool {
	return time.Since(s.LastPing()) > d
}
