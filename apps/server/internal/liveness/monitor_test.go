package liveness

import (
	"testing"
	"time"

	"squirrel/apps/server/internal/matchmaker"
	"squirrel/apps/server/internal/session"
)

func formRoom(t *testing.T, m *matchmaker.Manager) []*session.Session {
	t.Helper()
	sessions := make([]*session.Session, 4)
	for i := range sessions {
		sessions[i] = session.New(string(rune('A' + i)))
		if err := m.Join(sessions[i]); err != nil {
			t.Fatalf("unexpected join error: %v", err)
		}
	}
	return sessions
}

// TestSweepEvictsStaleSeatAndClosesRoom covers testable property 10.
func TestSweepEvictsStaleSeatAndClosesRoom(t *testing.T) {
	m := matchmaker.New()
	sessions := formRoom(t, m)
	sessions[0].Touch(time.Now().Add(-time.Minute))

	mon := New(m)
	mon.staleThreshold = 15 * time.Second
	mon.sweep()

	if sessions[0].Connected() {
		t.Fatal("expected stale seat to be marked disconnected")
	}
	rooms := m.Rooms()
	if len(rooms) != 0 {
		t.Fatalf("expected affected room to be closed, got %d remaining", len(rooms))
	}
}

func TestSweepLeavesFreshRoomsAlone(t *testing.T) {
	m := matchmaker.New()
	formRoom(t, m)

	mon := New(m)
	mon.staleThreshold = 15 * time.Second
	mon.sweep()

	if len(m.Rooms()) != 1 {
		t.Fatal("expected room with fresh seats to remain open")
	}
}

func TestSafeSweepRecoversFromPanic(t *testing.T) {
	m := matchmaker.New()
	mon := New(m)
	mon.manager = nil // forces a nil-pointer panic inside sweep

	if ok := mon.safeSweep(); ok {
		t.Fatal("expected safeSweep to report a panic")
	}
}
