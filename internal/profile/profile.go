package profile

import (
	"context"
	"encoding/json"

	"orbit-jackpot/internal/jackpot"
	"orbit-jackpot/internal/store"
)

// Service owns the per-user profile: balance and the game_data blob. The
// jackpot core never persists balance itself; it reads through this service
// and the store's bet/payout transactions apply the deltas.
type Service struct {
	Store           *store.Store
	StartingBalance int64
}

func New(s *store.Store, startingBalance int64) *Service {
	return &Service{Store: s, StartingBalance: startingBalance}
}

func (s *Service) Ensure(ctx context.Context, bettor jackpot.Bettor) error {
	return s.Store.EnsurePlayer(ctx, bettor.ID, bettor.Meta.Name, bettor.Meta.Avatar, s.StartingBalance)
}

func (s *Service) Get(ctx context.Context, id string) (*store.Player, error) {
	return s.Store.GetPlayer(ctx, id)
}

func (s *Service) SaveGameData(ctx context.Context, id string, data json.RawMessage) error {
	return s.Store.SaveGameData(ctx, id, data)
}

// Balance satisfies jackpot.BalanceReader.
func (s *Service) Balance(ctx context.Context, id string) (int64, error) {
	return s.Store.Balance(ctx, id)
}
