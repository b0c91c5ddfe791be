// Package matchmaker implements the GameManager (C5): the global waiting
// queue and active-room registry, join admission, room formation and
// lookup/close. Grounded on original_source/src/core/manager.rs::GameManager
// (join, try_start_game, find_player_by_uid, close_room) and the teacher's
// lobby.Lobby (mutex-guarded maps). The manager has no cleanup ticker or
// Stop; stale seats are evicted by package liveness.
package matchmaker

import (
	"encoding/json"
	"errors"
	"log"
	"sync"

	"squirrel/apps/server/internal/room"
	"squirrel/apps/server/internal/session"
	"squirrel/apps/server/internal/wire"
	"squirrel/game"
)

var (
	ErrAlreadyInQueue = errors.New("already in queue")
	ErrAlreadyInGame  = errors.New("already in game")
)

// seatCount is the number of sessions drawn from the queue to form a room.
// The source's try_start_game gate was "queue.len() >= 4" in one branch and
// "> 4" in another, with a seating loop that could miss a seat; this fixes
// both by draining exactly 4 sessions per iteration under a strict >= gate.
const seatCount = 4

// Manager owns the queue and the room registry. Lock order (§5): the
// queue mutex is acquired before the rooms mutex, and the two are never
// held together; a Room's or PlayerSession's lock may be taken while
// roomsMu is held (FindSeatedByUID calls Room.SeatFor), never the reverse.
type Manager struct {
	queueMu sync.Mutex
	queue   []*session.Session

	roomsMu sync.Mutex
	rooms   map[string]*room.Room
}

// New constructs an empty manager.
func New() *Manager {
	return &Manager{
		rooms: make(map[string]*room.Room),
	}
}

// Join enqueues s (FIFO, deduped by user_id) and attempts to start a match.
func (m *Manager) Join(s *session.Session) error {
	m.queueMu.Lock()
	for _, queued := range m.queue {
		if queued.UserID == s.UserID {
			m.queueMu.Unlock()
			return ErrAlreadyInQueue
		}
	}
	m.queueMu.Unlock()

	if _, ok := m.FindSeatedByUID(s.UserID); ok {
		return ErrAlreadyInGame
	}

	m.queueMu.Lock()
	m.queue = append(m.queue, s)
	m.queueMu.Unlock()

	m.tryStartMatch()
	return nil
}

// tryStartMatch drains the queue four sessions at a time, seating each
// group N, E, S, W and registering a freshly dealt Room for it.
func (m *Manager) tryStartMatch() {
	for {
		m.queueMu.Lock()
		if len(m.queue) < seatCount {
			m.queueMu.Unlock()
			return
		}
		var seats [seatCount]*session.Session
		copy(seats[:], m.queue[:seatCount])
		m.queue = m.queue[seatCount:]
		m.queueMu.Unlock()

		r := room.New(seats)

		m.roomsMu.Lock()
		m.rooms[r.ID] = r
		m.roomsMu.Unlock()

		for i, pos := range game.Positions {
			seats[i].Send(mustMarshal(wire.NewGameStartEvent(r.ID, pos.JSONValue())))
		}
		r.InitialDeal()
		log.Printf("[Matchmaker] started room %s", r.ID)
	}
}

// FindSeatedByUID scans active rooms' seats for uid, matching the
// documented lock order: rooms are walked under roomsMu alone.
func (m *Manager) FindSeatedByUID(uid string) (*room.Room, bool) {
	m.roomsMu.Lock()
	defer m.roomsMu.Unlock()
	for _, r := range m.rooms {
		if _, ok := r.SeatFor(uid); ok {
			return r, true
		}
	}
	return nil, false
}

// FindByUID scans active rooms then the queue, returning the first match,
// matching §4.4's find_by_uid and its lock-release-before-queue discipline.
func (m *Manager) FindByUID(uid string) (*session.Session, bool) {
	if r, ok := m.FindSeatedByUID(uid); ok {
		if pos, ok := r.SeatFor(uid); ok {
			return r.Seats[pos], true
		}
	}
	m.queueMu.Lock()
	defer m.queueMu.Unlock()
	for _, s := range m.queue {
		if s.UserID == uid {
			return s, true
		}
	}
	return nil, false
}

// GetRoom returns a registered room by id.
func (m *Manager) GetRoom(roomID string) (*room.Room, bool) {
	m.roomsMu.Lock()
	defer m.roomsMu.Unlock()
	r, ok := m.rooms[roomID]
	return r, ok
}

// Rooms returns a snapshot slice of all active rooms, used by the liveness
// monitor to scan without holding roomsMu during the scan.
func (m *Manager) Rooms() []*room.Room {
	m.roomsMu.Lock()
	defer m.roomsMu.Unlock()
	out := make([]*room.Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	return out
}

// CloseRoom removes roomID from the registry and emits game_close to each
// surviving seat's outbound channel.
func (m *Manager) CloseRoom(roomID, reason string) {
	m.roomsMu.Lock()
	r, ok := m.rooms[roomID]
	if ok {
		delete(m.rooms, roomID)
	}
	m.roomsMu.Unlock()
	if !ok {
		return
	}
	r.Broadcast(wire.NewGameCloseEvent(reason))
	log.Printf("[Matchmaker] closed room %s: %s", roomID, reason)
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[Matchmaker] marshal failed: %v", err)
		return nil
	}
	return data
}
