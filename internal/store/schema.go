package store

import "context"

const schemaDDL = `
CREATE TABLE IF NOT EXISTS players (
	id TEXT PRIMARY KEY,
	display_name TEXT NOT NULL DEFAULT '',
	avatar_url TEXT NOT NULL DEFAULT '',
	balance BIGINT NOT NULL DEFAULT 0,
	game_data JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS rounds (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL DEFAULT 'open',
	seed TEXT NOT NULL,
	owner_id TEXT NOT NULL DEFAULT '',
	winner_id TEXT,
	ends_at TIMESTAMPTZ NOT NULL,
	payout_claimed BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

-- At most one round may be open or spinning at a time; racing creators get a
-- unique violation and re-read instead of duplicating rounds.
CREATE UNIQUE INDEX IF NOT EXISTS rounds_one_live
	ON rounds ((true)) WHERE status IN ('open', 'spinning');

CREATE TABLE IF NOT EXISTS bets (
	id TEXT PRIMARY KEY,
	round_id TEXT NOT NULL REFERENCES rounds (id),
	bettor_id TEXT NOT NULL,
	amount BIGINT NOT NULL CHECK (amount > 0),
	display_name TEXT NOT NULL DEFAULT '',
	avatar_url TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (round_id, bettor_id)
);

CREATE INDEX IF NOT EXISTS bets_round_idx ON bets (round_id, created_at);
`

// EnsureSchema applies the DDL; every statement is idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schemaDDL)
	return err
}
