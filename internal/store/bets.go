package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"orbit-jackpot/internal/jackpot"
)

const betColumns = `id, round_id, bettor_id, amount, display_name, avatar_url, created_at`

func scanBet(row pgx.Row) (*jackpot.Bet, error) {
	var b jackpot.Bet
	err := row.Scan(&b.ID, &b.RoundID, &b.BettorID, &b.Amount, &b.Meta.Name, &b.Meta.Avatar, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBets returns the round's bets in creation order — the order the winner
// walk depends on, so it must be stable across clients.
func (s *Store) ListBets(ctx context.Context, roundID string) ([]jackpot.Bet, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+betColumns+` FROM bets
		WHERE round_id = $1 ORDER BY created_at ASC, id ASC`, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []jackpot.Bet{}
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// InsertBet appends a bet and debits the bettor's balance in one transaction.
// The (round_id, bettor_id) uniqueness constraint — not an application
// pre-check — is what prevents double betting across racing clients.
func (s *Store) InsertBet(ctx context.Context, roundID, bettorID string, amount int64, meta jackpot.DisplayMeta) (*jackpot.Bet, error) {
	if amount <= 0 {
		return nil, jackpot.ErrInvalidBet
	}
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// FOR SHARE holds the close CAS out until this bet commits, and a bet
	// started after the close sees the new status here and aborts — the
	// engine's open-check alone races against other clients closing.
	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM rounds WHERE id = $1 FOR SHARE`, roundID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, jackpot.ErrRoundNotFound
		}
		return nil, err
	}
	if jackpot.Status(status) != jackpot.StatusOpen {
		return nil, jackpot.ErrRoundClosed
	}

	var balance int64
	err = tx.QueryRow(ctx, `SELECT balance FROM players WHERE id = $1 FOR UPDATE`, bettorID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if balance < amount {
		return nil, jackpot.ErrInsufficientFunds
	}

	row := tx.QueryRow(ctx, `INSERT INTO bets (id, round_id, bettor_id, amount, display_name, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+betColumns, NewID(), roundID, bettorID, amount, meta.Name, meta.Avatar)
	bet, err := scanBet(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, jackpot.ErrDuplicateBet
		}
		return nil, err
	}

	_, err = tx.Exec(ctx, `UPDATE players SET balance = balance - $2, updated_at = now() WHERE id = $1`, bettorID, amount)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return bet, nil
}
