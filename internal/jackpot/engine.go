package jackpot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Config carries the round timings and bet limits shared by every client.
type Config struct {
	Countdown     time.Duration
	SpinDuration  time.Duration
	RolloverDelay time.Duration
	PollInterval  time.Duration
	MinBettors    int
	MinBet        int64
	MaxBet        int64
}

func DefaultConfig() Config {
	return Config{
		Countdown:     30 * time.Second,
		SpinDuration:  5 * time.Second,
		RolloverDelay: 3 * time.Second,
		PollInterval:  time.Second,
		MinBettors:    2,
		MinBet:        1,
		MaxBet:        100000,
	}
}

// pendingEndsAt is the "waiting for players" sentinel written into fresh
// rounds; it sits far beyond PendingHorizon so it never reads as a live
// countdown.
func pendingEndsAt(now time.Time) time.Time {
	return now.Add(10 * 365 * 24 * time.Hour)
}

// Engine performs the round lifecycle transitions. It holds no round state of
// its own: every operation is a read or a conditional write against the
// store, so any number of clients may drive it concurrently.
type Engine struct {
	stores Stores
	feed   *Feed
	cfg    Config
}

func NewEngine(st Stores, feed *Feed, cfg Config) *Engine {
	if cfg.MinBettors < 2 {
		cfg.MinBettors = 2
	}
	return &Engine{stores: st, feed: feed, cfg: cfg}
}

func (e *Engine) Config() Config { return e.cfg }

// EnsureOpenRound returns the current live round, creating a fresh open one
// if none exists. Safe to call redundantly from any client.
func (e *Engine) EnsureOpenRound(ctx context.Context, ownerID string) (*Round, error) {
	round, err := e.stores.CurrentRound(ctx)
	if err == nil {
		return round, nil
	}
	if !errors.Is(err, ErrRoundNotFound) {
		return nil, err
	}

	round, err = e.stores.InsertRound(ctx, ownerID, pendingEndsAt(time.Now()))
	if errors.Is(err, ErrLiveRoundExists) {
		// Another client created the round first; use theirs.
		return e.stores.CurrentRound(ctx)
	}
	if err != nil {
		return nil, err
	}
	metricRoundsCreatedTotal.Add(1)
	log.Info().Str("round_id", round.ID).Str("owner_id", ownerID).Msg("round created")
	e.publish(Event{Kind: EventRound, RoundID: round.ID})
	return round, nil
}

// PlaceBet appends a bet to an open round, debiting the bettor's balance in
// the same store transaction. Double bets surface as ErrDuplicateBet from the
// store's uniqueness constraint — there is deliberately no pre-check here,
// because check-then-insert is racy across clients.
func (e *Engine) PlaceBet(ctx context.Context, roundID, bettorID string, amount int64, meta DisplayMeta) (*Bet, error) {
	if amount < e.cfg.MinBet || amount > e.cfg.MaxBet {
		return nil, fmt.Errorf("%w: amount %d outside [%d,%d]", ErrInvalidBet, amount, e.cfg.MinBet, e.cfg.MaxBet)
	}
	round, err := e.stores.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if round.Status != StatusOpen || round.Expired(now) {
		return nil, ErrRoundClosed
	}

	bet, err := e.stores.InsertBet(ctx, roundID, bettorID, amount, meta)
	if err != nil {
		return nil, err
	}
	metricBetsPlacedTotal.Add(1)
	e.publish(Event{Kind: EventBet, RoundID: roundID})

	if round.CountdownPending(now) {
		e.maybeArmCountdown(ctx, round)
	}
	return bet, nil
}

// maybeArmCountdown starts the live countdown once enough distinct bettors
// are in. The CAS at the store keeps concurrent armers harmless.
func (e *Engine) maybeArmCountdown(ctx context.Context, round *Round) {
	bets, err := e.stores.ListBets(ctx, round.ID)
	if err != nil {
		log.Warn().Err(err).Str("round_id", round.ID).Msg("list bets for countdown failed")
		return
	}
	if DistinctBettors(bets) < e.cfg.MinBettors {
		return
	}
	armed, err := e.stores.ArmCountdown(ctx, round.ID, time.Now().Add(e.cfg.Countdown))
	if err != nil {
		log.Warn().Err(err).Str("round_id", round.ID).Msg("arm countdown failed")
		return
	}
	if armed {
		log.Info().Str("round_id", round.ID).Dur("countdown", e.cfg.Countdown).Msg("countdown armed")
		e.publish(Event{Kind: EventRound, RoundID: round.ID})
	}
}

// TryCloseRound attempts the open -> spinning transition, fixing the winner.
// It returns (nil, nil) whenever the round is not closable or another client
// got there first — losing the race is the expected outcome for all callers
// but one.
func (e *Engine) TryCloseRound(ctx context.Context, round *Round, bets []Bet) (*Round, error) {
	if round == nil || round.Status != StatusOpen {
		return nil, nil
	}
	if !round.Expired(time.Now()) {
		return nil, nil
	}
	if DistinctBettors(bets) < e.cfg.MinBettors {
		return nil, nil
	}
	winner := SelectWinner(bets, round.Seed, round.ID)
	if winner == nil {
		return nil, nil
	}

	committed, err := e.stores.CASStatus(ctx, round.ID, StatusOpen, StatusSpinning, winner.BettorID)
	if err != nil {
		return nil, err
	}
	if !committed {
		metricCloseLostTotal.Add(1)
		return nil, nil
	}
	metricCloseWonTotal.Add(1)
	log.Info().Str("round_id", round.ID).Str("winner_id", winner.BettorID).
		Int64("pot", TotalWagered(bets)).Msg("round closed")
	e.publish(Event{Kind: EventRound, RoundID: round.ID})

	closed := *round
	closed.Status = StatusSpinning
	closed.WinnerID = winner.BettorID
	return &closed, nil
}

// TryFinishRound attempts the spinning -> finished transition after the spin
// presentation delay. Reports whether this caller committed it.
func (e *Engine) TryFinishRound(ctx context.Context, roundID string) (bool, error) {
	committed, err := e.stores.CASStatus(ctx, roundID, StatusSpinning, StatusFinished, "")
	if err != nil {
		return false, err
	}
	if committed {
		metricFinishWonTotal.Add(1)
		log.Info().Str("round_id", roundID).Msg("round finished")
		e.publish(Event{Kind: EventRound, RoundID: roundID})
	}
	return committed, nil
}

// ClaimPayout invokes the store's idempotent payout procedure. A zero amount
// means nothing to claim (non-winner or already claimed) and is not an error.
func (e *Engine) ClaimPayout(ctx context.Context, roundID, bettorID string) (int64, error) {
	amount, err := e.stores.ClaimPayout(ctx, roundID, bettorID)
	if err != nil {
		return 0, err
	}
	if amount > 0 {
		metricPayoutsTotal.Add(1)
		metricPayoutAmountTotal.Add(amount)
		log.Info().Str("round_id", roundID).Str("bettor_id", bettorID).
			Int64("amount", amount).Msg("payout claimed")
	}
	return amount, nil
}

func (e *Engine) publish(ev Event) {
	if e.feed != nil {
		e.feed.Publish(ev)
	}
}
