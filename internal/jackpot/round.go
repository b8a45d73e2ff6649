package jackpot

import "time"

// Status is the closed set of round states. A round only moves forward:
// open -> spinning -> finished.
type Status string

const (
	StatusOpen     Status = "open"
	StatusSpinning Status = "spinning"
	StatusFinished Status = "finished"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusSpinning, StatusFinished:
		return true
	}
	return false
}

// PendingHorizon marks the "waiting for players" sentinel: an open round whose
// ends_at lies further out than this has no live countdown yet.
const PendingHorizon = 365 * 24 * time.Hour

type Round struct {
	ID            string
	Status        Status
	Seed          string
	OwnerID       string
	WinnerID      string
	EndsAt        time.Time
	PayoutClaimed bool
	CreatedAt     time.Time
}

// CountdownPending reports whether the round is still waiting for enough
// players, i.e. its countdown has not been armed.
func (r *Round) CountdownPending(now time.Time) bool {
	return r.EndsAt.After(now.Add(PendingHorizon))
}

// Expired reports whether an armed countdown has run out.
func (r *Round) Expired(now time.Time) bool {
	return !r.CountdownPending(now) && now.After(r.EndsAt)
}

type DisplayMeta struct {
	Name   string
	Avatar string
}

type Bet struct {
	ID        string
	RoundID   string
	BettorID  string
	Amount    int64
	Meta      DisplayMeta
	CreatedAt time.Time
}

// DistinctBettors counts unique bettor ids; bets are unique per bettor per
// round at the store, so this normally equals len(bets).
func DistinctBettors(bets []Bet) int {
	seen := map[string]struct{}{}
	for _, b := range bets {
		seen[b.BettorID] = struct{}{}
	}
	return len(seen)
}

func TotalWagered(bets []Bet) int64 {
	var total int64
	for _, b := range bets {
		total += b.Amount
	}
	return total
}
