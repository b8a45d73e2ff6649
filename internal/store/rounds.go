package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"orbit-jackpot/internal/jackpot"
)

const roundColumns = `id, status, seed, owner_id, COALESCE(winner_id, ''), ends_at, payout_claimed, created_at`

func scanRound(row pgx.Row) (*jackpot.Round, error) {
	var r jackpot.Round
	var status string
	err := row.Scan(&r.ID, &status, &r.Seed, &r.OwnerID, &r.WinnerID, &r.EndsAt, &r.PayoutClaimed, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, jackpot.ErrRoundNotFound
		}
		return nil, err
	}
	r.Status = jackpot.Status(status)
	return &r, nil
}

// CurrentRound returns the single live (open or spinning) round.
func (s *Store) CurrentRound(ctx context.Context) (*jackpot.Round, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+roundColumns+` FROM rounds
		WHERE status IN ('open', 'spinning')
		ORDER BY created_at DESC LIMIT 1`)
	return scanRound(row)
}

func (s *Store) GetRound(ctx context.Context, id string) (*jackpot.Round, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+roundColumns+` FROM rounds WHERE id = $1`, id)
	return scanRound(row)
}

// InsertRound creates a fresh open round with a new id and seed. The
// rounds_one_live index turns a lost creation race into ErrLiveRoundExists.
func (s *Store) InsertRound(ctx context.Context, ownerID string, endsAt time.Time) (*jackpot.Round, error) {
	id := NewID()
	seed := NewID()
	row := s.Pool.QueryRow(ctx, `INSERT INTO rounds (id, status, seed, owner_id, ends_at)
		VALUES ($1, 'open', $2, $3, $4)
		RETURNING `+roundColumns, id, seed, ownerID, endsAt)
	round, err := scanRound(row)
	if isUniqueViolation(err) {
		return nil, jackpot.ErrLiveRoundExists
	}
	return round, err
}

// CASStatus transitions the round only if its stored status still matches
// from. The returned bool reports whether this caller's write committed;
// false means another client got there first, which is not an error.
func (s *Store) CASStatus(ctx context.Context, id string, from, to jackpot.Status, winnerID string) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `UPDATE rounds
		SET status = $3, winner_id = CASE WHEN $4 = '' THEN winner_id ELSE $4 END
		WHERE id = $1 AND status = $2`,
		id, string(from), string(to), winnerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ArmCountdown moves ends_at from the waiting sentinel onto a live deadline.
// The guard only fires while the round is open and ends_at is still in the
// far future, so concurrent armers collapse to one effective write.
func (s *Store) ArmCountdown(ctx context.Context, id string, endsAt time.Time) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `UPDATE rounds
		SET ends_at = $2
		WHERE id = $1 AND status = 'open' AND ends_at > $3`,
		id, endsAt, time.Now().Add(jackpot.PendingHorizon))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
