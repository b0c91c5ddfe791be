package game

import (
	"math/rand"

	"squirrel/card"
)

// TrickCard is one play within the current trick.
type TrickCard struct {
	Position Position
	Card     card.Card
}

// State is the per-room authoritative game state (C2).
type State struct {
	Hands        map[Position][]card.Card
	Trump        card.Suit
	CurrentTrick []TrickCard
	TeamScores   map[int]int
	TeamEye      map[int]int
	CurrentTurn  Position
	IsFirstRound bool
}

// NewState deals a fresh match: random initial trump, a shuffled deal, the
// leader fixed at North, zeroed scores and eyes, and is_first_round=true.
func NewState() *State {
	hands := card.BuildAndDeal()
	s := &State{
		Hands:        make(map[Position][]card.Card, 4),
		Trump:        randomSuit(),
		CurrentTrick: nil,
		TeamScores:   map[int]int{1: 0, 2: 0},
		TeamEye:      map[int]int{1: 0, 2: 0},
		CurrentTurn:  North,
		IsFirstRound: true,
	}
	for i, p := range Positions {
		s.Hands[p] = hands[i]
	}
	return s
}

func randomSuit() card.Suit {
	return card.Suits[rand.Intn(len(card.Suits))]
}

func (s *State) handContains(pos Position, c card.Card) bool {
	for _, held := range s.Hands[pos] {
		if held == c {
			return true
		}
	}
	return false
}

func (s *State) removeFromHand(pos Position, c card.Card) {
	hand := s.Hands[pos]
	for i, held := range hand {
		if held == c {
			s.Hands[pos] = append(hand[:i], hand[i+1:]...)
			return
		}
	}
}

func (s *State) hasSuit(pos Position, suit card.Suit) bool {
	for _, held := range s.Hands[pos] {
		if held.Suit == suit {
			return true
		}
	}
	return false
}

// PlayCard applies pos playing c to the current trick. No game-state
// mutation occurs when an error is returned.
func (s *State) PlayCard(pos Position, c card.Card) error {
	if pos != s.CurrentTurn {
		return ErrNotYourTurn
	}
	if !s.handContains(pos, c) {
		return ErrCardNotInHand
	}
	if len(s.CurrentTrick) > 0 {
		leadSuit := s.CurrentTrick[0].Card.Suit
		if c.Suit != leadSuit && s.hasSuit(pos, leadSuit) {
			return ErrMustFollowSuit
		}
	}
	s.removeFromHand(pos, c)
	s.CurrentTrick = append(s.CurrentTrick, TrickCard{Position: pos, Card: c})
	s.CurrentTurn = pos.Next()
	return nil
}

// ResolveTrick determines the winner of a complete (4-card) trick, credits
// its points to the winner's team, clears the trick and sets the new
// current turn to the winner. Returns ok=false if the trick is not yet
// complete.
func (s *State) ResolveTrick() (winner Position, ok bool) {
	if len(s.CurrentTrick) != 4 {
		return 0, false
	}
	leadSuit := s.CurrentTrick[0].Card.Suit
	best := s.CurrentTrick[0]
	bestKey := best.Card.TrickKey(s.Trump, leadSuit)
	points := best.Card.Points(s.Trump)
	for _, tc := range s.CurrentTrick[1:] {
		key := tc.Card.TrickKey(s.Trump, leadSuit)
		if card.TrickKeyLess(bestKey, key) {
			best = tc
			bestKey = key
		}
		points += tc.Card.Points(s.Trump)
	}
	s.TeamScores[best.Position.Team()] += points
	s.CurrentTrick = nil
	s.CurrentTurn = best.Position
	return best.Position, true
}

// UpdateEyeAfterRound scores the completed round's card points into eyes.
// Returns ok=false on a 60-60 draw, in which case no eye is awarded but
// is_first_round still clears (the round is resolved either way).
func (s *State) UpdateEyeAfterRound() (winnerTeam int, ok bool) {
	a, b := s.TeamScores[1], s.TeamScores[2]
	defer func() { s.IsFirstRound = false }()

	if a == 60 && b == 60 {
		return 0, false
	}
	winner, loserScore := 2, a
	if a > b {
		winner, loserScore = 1, b
	}
	eyes := 1
	if s.IsFirstRound {
		eyes++
	}
	if loserScore < 30 {
		eyes++
	}
	s.TeamEye[winner] += eyes
	return winner, true
}

// UpdateHands reshuffles and redeals. CurrentTrick must already be empty.
func (s *State) UpdateHands() {
	hands := card.BuildAndDeal()
	for i, p := range Positions {
		s.Hands[p] = hands[i]
	}
}

// ResetScores zeroes team_scores for a new deal.
func (s *State) ResetScores() {
	s.TeamScores[1] = 0
	s.TeamScores[2] = 0
}

// MatchEyeTarget is the eye count either team must reach to end the match.
const MatchEyeTarget = 12

// MatchOver reports whether either team has reached the eye target.
func (s *State) MatchOver() bool {
	return s.TeamEye[1] >= MatchEyeTarget || s.TeamEye[2] >= MatchEyeTarget
}

// RoundOver reports whether every hand has been exhausted.
func (s *State) RoundOver() bool {
	for _, p := range Positions {
		if len(s.Hands[p]) > 0 {
			return false
		}
	}
	return true
}

// AdvanceRound drives the full round-boundary sequence (§4.2): score eyes,
// pick a new trump, redeal, reset scores. Returns the eye-award result from
// UpdateEyeAfterRound.
func (s *State) AdvanceRound() (winnerTeam int, ok bool) {
	winnerTeam, ok = s.UpdateEyeAfterRound()
	s.Trump = randomSuit()
	s.UpdateHands()
	s.ResetScores()
	return winnerTeam, ok
}
