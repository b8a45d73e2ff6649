package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// Player is the per-user profile row: balance plus the denormalized game_data
// blob the rest of the game reads and rewrites wholesale.
type Player struct {
	ID          string
	DisplayName string
	AvatarURL   string
	Balance     int64
	GameData    json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EnsurePlayer creates the profile on first sight with the starting balance;
// existing rows only refresh their display metadata.
func (s *Store) EnsurePlayer(ctx context.Context, id, displayName, avatarURL string, startingBalance int64) error {
	_, err := s.Pool.Exec(ctx, `INSERT INTO players (id, display_name, avatar_url, balance)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET display_name = $2, avatar_url = $3, updated_at = now()`,
		id, displayName, avatarURL, startingBalance)
	return err
}

func (s *Store) GetPlayer(ctx context.Context, id string) (*Player, error) {
	row := s.Pool.QueryRow(ctx, `SELECT id, display_name, avatar_url, balance, game_data, created_at, updated_at
		FROM players WHERE id = $1`, id)
	var p Player
	err := row.Scan(&p.ID, &p.DisplayName, &p.AvatarURL, &p.Balance, &p.GameData, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) Balance(ctx context.Context, id string) (int64, error) {
	var balance int64
	err := s.Pool.QueryRow(ctx, `SELECT balance FROM players WHERE id = $1`, id).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return balance, nil
}

// SaveGameData replaces the whole blob. Single-writer per user, so last write
// wins against yourself only.
func (s *Store) SaveGameData(ctx context.Context, id string, data json.RawMessage) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE players SET game_data = $2, updated_at = now() WHERE id = $1`, id, data)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
