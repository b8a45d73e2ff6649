package store

import "context"

// ClaimPayout pays the round's pot to the winner exactly once. The claim flag
// flips in the same transaction that credits the balance, so repeat calls —
// from retries or from a client that crashed mid-claim — read zero. Callers
// other than the stored winner always get zero.
func (s *Store) ClaimPayout(ctx context.Context, roundID, bettorID string) (int64, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE rounds SET payout_claimed = true
		WHERE id = $1 AND status = 'finished' AND winner_id = $2 AND NOT payout_claimed`,
		roundID, bettorID)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() == 0 {
		return 0, nil
	}

	var pot int64
	err = tx.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM bets WHERE round_id = $1`, roundID).Scan(&pot)
	if err != nil {
		return 0, err
	}
	if pot > 0 {
		_, err = tx.Exec(ctx, `UPDATE players SET balance = balance + $2, updated_at = now() WHERE id = $1`, bettorID, pot)
		if err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return pot, nil
}
