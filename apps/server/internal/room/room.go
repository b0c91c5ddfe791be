// Package room implements the Room (C4): it binds four seated sessions to
// one authoritative GameState, fans events out to every seat, and evicts a
// single seat on disconnect. Grounded on original_source's
// core::manager::GameRoom (kick_player) and the teacher's table.Table actor
// shape — a single mutex serialises all state mutation for the room,
// matching §5's "no parallel mutation of any single Room's state".
package room

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"

	"squirrel/apps/server/internal/session"
	"squirrel/apps/server/internal/wire"
	"squirrel/card"
	"squirrel/game"
)

// Room binds N/E/S/W seats to one GameState.
type Room struct {
	ID string

	mu    sync.Mutex
	Seats map[game.Position]*session.Session
	State *game.State
}

// New constructs a room with a freshly dealt GameState, seating sessions in
// dequeue order N, E, S, W.
func New(seats [4]*session.Session) *Room {
	r := &Room{
		ID:    uuid.NewString(),
		Seats: make(map[game.Position]*session.Session, 4),
		State: game.NewState(),
	}
	for i, pos := range game.Positions {
		r.Seats[pos] = seats[i]
	}
	return r
}

// SeatFor returns the position of a seated user_id, if any.
func (r *Room) SeatFor(userID string) (game.Position, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for pos, s := range r.Seats {
		if s.UserID == userID {
			return pos, true
		}
	}
	return 0, false
}

func (r *Room) sendTo(pos game.Position, payload any) {
	s, ok := r.Seats[pos]
	if !ok {
		return
	}
	data, err := marshal(payload)
	if err != nil {
		log.Printf("[Room %s] marshal failed: %v", r.ID, err)
		return
	}
	s.Send(data)
}

// Broadcast sends payload to every seat.
func (r *Room) Broadcast(payload any) {
	data, err := marshal(payload)
	if err != nil {
		log.Printf("[Room %s] marshal failed: %v", r.ID, err)
		return
	}
	for _, s := range r.Seats {
		s.Send(data)
	}
}

func marshal(payload any) ([]byte, error) {
	return json.Marshal(payload)
}

// Kick marks the seat's session disconnected and broadcasts
// player_disconnected to the other three seats. It does not mutate game
// state; the enclosing close/continuation decision belongs to the manager.
func (r *Room) Kick(pos game.Position) {
	r.mu.Lock()
	s, ok := r.Seats[pos]
	r.mu.Unlock()
	if !ok {
		return
	}
	s.MarkDisconnected()
	for p, other := range r.Seats {
		if p == pos {
			continue
		}
		data, err := marshal(wire.NewPlayerDisconnectedEvent(pos.JSONValue()))
		if err != nil {
			continue
		}
		other.Send(data)
	}
}

func cardView(c card.Card) wire.CardView {
	return wire.CardView{Suit: c.Suit.JSONValue(), Rank: c.Rank.JSONValue()}
}

func handView(cards []card.Card) []wire.CardView {
	views := make([]wire.CardView, len(cards))
	for i, c := range cards {
		views[i] = cardView(c)
	}
	return views
}

// InitialDeal fans out the freshly dealt hands for a new room: your_hand to
// every seat, then your_turn to North (the fixed first leader per
// game.NewState). Matches §5's "within a single seat, your_hand for a new
// deal always precedes your_turn for that deal" for the match's first deal,
// the same ordering PlayCard's round-boundary fan-out already applies to
// every subsequent deal.
func (r *Room) InitialDeal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range game.Positions {
		r.sendTo(p, wire.NewYourHandEvent(handView(r.State.Hands[p])))
	}
	r.sendTo(r.State.CurrentTurn, wire.NewYourTurnEvent())
}

// PlayCard applies a play_card intent from pos and drives the full
// round-boundary fan-out sequence described in §4.6: card_played, then (if
// the trick completed) trick_won, then (if the round ended) eye_updated,
// trump_updated, per-seat your_hand and your_turn to the new leader, then
// (if the match ended) game_over to all. Otherwise your_turn to the next
// seat.
func (r *Room) PlayCard(pos game.Position, c card.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.State.PlayCard(pos, c); err != nil {
		return err
	}
	r.Broadcast(wire.NewCardPlayedEvent(pos.JSONValue(), cardView(c)))

	winner, resolved := r.State.ResolveTrick()
	if !resolved {
		r.sendTo(r.State.CurrentTurn, wire.NewYourTurnEvent())
		return nil
	}
	r.Broadcast(wire.NewTrickWonEvent(winner.JSONValue()))

	if !r.State.RoundOver() {
		r.sendTo(winner, wire.NewYourTurnEvent())
		return nil
	}

	finalScores := map[string]int{"1": r.State.TeamScores[1], "2": r.State.TeamScores[2]}
	r.State.AdvanceRound()
	r.Broadcast(wire.NewEyeUpdatedEvent(r.State.TeamEye[1], r.State.TeamEye[2]))
	r.Broadcast(wire.NewTrumpUpdatedEvent(r.State.Trump.JSONValue()))
	for _, p := range game.Positions {
		r.sendTo(p, wire.NewYourHandEvent(handView(r.State.Hands[p])))
	}
	r.sendTo(r.State.CurrentTurn, wire.NewYourTurnEvent())

	if r.State.MatchOver() {
		r.Broadcast(wire.NewGameOverEvent(finalScores))
	}
	return nil
}
