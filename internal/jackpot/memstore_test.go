package jackpot

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// memStore is an in-memory stand-in for the Postgres store with the same
// conditional-write semantics: status CAS, one live round, one bet per
// bettor per round, idempotent payout.
type memStore struct {
	mu       sync.Mutex
	rounds   map[string]*Round
	order    []string
	bets     map[string][]Bet
	balances map[string]int64
	nextID   int
}

func newMemStore() *memStore {
	return &memStore{
		rounds:   map[string]*Round{},
		bets:     map[string][]Bet{},
		balances: map[string]int64{},
	}
}

func (m *memStore) id() string {
	m.nextID++
	return fmt.Sprintf("id-%d", m.nextID)
}

func (m *memStore) CurrentRound(ctx context.Context) (*Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.order) - 1; i >= 0; i-- {
		r := m.rounds[m.order[i]]
		if r.Status == StatusOpen || r.Status == StatusSpinning {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrRoundNotFound
}

func (m *memStore) GetRound(ctx context.Context, id string) (*Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[id]
	if !ok {
		return nil, ErrRoundNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) InsertRound(ctx context.Context, ownerID string, endsAt time.Time) (*Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		if s := m.rounds[id].Status; s == StatusOpen || s == StatusSpinning {
			return nil, ErrLiveRoundExists
		}
	}
	r := &Round{
		ID:        m.id(),
		Status:    StatusOpen,
		Seed:      m.id(),
		OwnerID:   ownerID,
		EndsAt:    endsAt,
		CreatedAt: time.Now(),
	}
	m.rounds[r.ID] = r
	m.order = append(m.order, r.ID)
	cp := *r
	return &cp, nil
}

func (m *memStore) CASStatus(ctx context.Context, id string, from, to Status, winnerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	if winnerID != "" {
		r.WinnerID = winnerID
	}
	return true, nil
}

func (m *memStore) ArmCountdown(ctx context.Context, id string, endsAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[id]
	if !ok || r.Status != StatusOpen || !r.CountdownPending(time.Now()) {
		return false, nil
	}
	r.EndsAt = endsAt
	return true, nil
}

func (m *memStore) ListBets(ctx context.Context, roundID string) ([]Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Bet(nil), m.bets[roundID]...), nil
}

func (m *memStore) InsertBet(ctx context.Context, roundID, bettorID string, amount int64, meta DisplayMeta) (*Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[roundID]
	if !ok {
		return nil, ErrRoundNotFound
	}
	if r.Status != StatusOpen {
		return nil, ErrRoundClosed
	}
	for _, b := range m.bets[roundID] {
		if b.BettorID == bettorID {
			return nil, ErrDuplicateBet
		}
	}
	if m.balances[bettorID] < amount {
		return nil, ErrInsufficientFunds
	}
	m.balances[bettorID] -= amount
	b := Bet{
		ID:        m.id(),
		RoundID:   roundID,
		BettorID:  bettorID,
		Amount:    amount,
		Meta:      meta,
		CreatedAt: time.Now(),
	}
	m.bets[roundID] = append(m.bets[roundID], b)
	cp := b
	return &cp, nil
}

func (m *memStore) ClaimPayout(ctx context.Context, roundID, bettorID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[roundID]
	if !ok || r.Status != StatusFinished || r.WinnerID != bettorID || r.PayoutClaimed {
		return 0, nil
	}
	r.PayoutClaimed = true
	var pot int64
	for _, b := range m.bets[roundID] {
		pot += b.Amount
	}
	m.balances[bettorID] += pot
	return pot, nil
}

func (m *memStore) Balance(ctx context.Context, bettorID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[bettorID], nil
}

// expireRound forces a round's countdown into the past.
func (m *memStore) expireRound(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rounds[id]; ok {
		r.EndsAt = time.Now().Add(-time.Second)
	}
}

func (m *memStore) setBalance(bettorID string, balance int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[bettorID] = balance
}
