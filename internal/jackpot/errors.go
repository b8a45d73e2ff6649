package jackpot

import "errors"

var (
	ErrRoundNotFound     = errors.New("round_not_found")
	ErrRoundClosed       = errors.New("round_closed")
	ErrDuplicateBet      = errors.New("duplicate_bet")
	ErrInsufficientFunds = errors.New("insufficient_funds")
	ErrInvalidBet        = errors.New("invalid_bet")

	// ErrLiveRoundExists is returned by a round insert that lost the
	// creation race; the caller re-reads the current round instead.
	ErrLiveRoundExists = errors.New("live_round_exists")
)
