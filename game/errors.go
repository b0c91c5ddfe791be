package game

import "errors"

var (
	ErrNotYourTurn    = errors.New("not your turn")
	ErrCardNotInHand  = errors.New("card not in hand")
	ErrMustFollowSuit = errors.New("must follow suit")
	ErrTrickNotFull   = errors.New("trick is not complete")
	ErrRoundNotOver   = errors.New("round is not over")
)
