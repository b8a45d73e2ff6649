package jackpot

import (
	"context"
	"time"
)

// RoundStore is the persistent round row. The conditional operations are the
// only write path: concurrent clients race through them and the store lets at
// most one commit per transition.
type RoundStore interface {
	// CurrentRound returns the most recent round in open or spinning
	// status, or ErrRoundNotFound.
	CurrentRound(ctx context.Context) (*Round, error)
	GetRound(ctx context.Context, id string) (*Round, error)
	// InsertRound creates a fresh open round with a store-assigned id and
	// seed. Returns ErrLiveRoundExists if another live round already won
	// the creation race.
	InsertRound(ctx context.Context, ownerID string, endsAt time.Time) (*Round, error)
	// CASStatus commits status=to and, when to==StatusSpinning, the winner
	// id — only if the stored status still equals from. Reports whether
	// the write committed.
	CASStatus(ctx context.Context, id string, from, to Status, winnerID string) (bool, error)
	// ArmCountdown moves ends_at from the waiting sentinel to a live
	// deadline, only while the round is open and still pending.
	ArmCountdown(ctx context.Context, id string, endsAt time.Time) (bool, error)
}

// BetStore is the append-only per-round bet list.
type BetStore interface {
	// ListBets returns the round's bets in creation order.
	ListBets(ctx context.Context, roundID string) ([]Bet, error)
	// InsertBet atomically debits the bettor's balance and appends the
	// bet. Fails with ErrDuplicateBet if the bettor already bet this
	// round, ErrInsufficientFunds if the balance does not cover amount.
	InsertBet(ctx context.Context, roundID, bettorID string, amount int64, meta DisplayMeta) (*Bet, error)
}

// PayoutStore is the idempotent payout procedure: pays the round's pot to the
// winner exactly once, returning the paid amount (zero on repeat claims and
// for non-winners).
type PayoutStore interface {
	ClaimPayout(ctx context.Context, roundID, bettorID string) (int64, error)
}

// BalanceReader exposes the bettor's current balance for advisory checks and
// view state; the balance itself is owned by the profile layer.
type BalanceReader interface {
	Balance(ctx context.Context, bettorID string) (int64, error)
}

// Stores bundles the persistence contracts the engine needs.
type Stores interface {
	RoundStore
	BetStore
	PayoutStore
}
