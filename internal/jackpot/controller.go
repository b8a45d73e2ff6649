package jackpot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Bettor identifies the local player behind a controller. Identity is
// established by the surrounding application; the controller just carries it.
type Bettor struct {
	ID   string
	Meta DisplayMeta
}

// View is the controller's ephemeral, derived picture of the round — never
// the source of truth, always recomputable from store reads.
type View struct {
	Round   *Round
	Bets    []Bet
	Balance int64
}

func (v View) myBet(bettorID string) *Bet {
	for i := range v.Bets {
		if v.Bets[i].BettorID == bettorID {
			return &v.Bets[i]
		}
	}
	return nil
}

// Controller drives one client's participation in the round lifecycle: it
// watches the feed, polls on a fixed tick, races the close and finish
// transitions along with every other connected controller, and claims the
// payout when its bettor won. Stopping a controller never affects round
// state; whichever clients remain connected keep the round moving.
type Controller struct {
	engine   *Engine
	feed     *Feed
	balances BalanceReader
	bettor   Bettor

	// OnUpdate receives a view snapshot after every local state change.
	// OnPayout fires once per won round with the paid amount.
	OnUpdate func(View)
	OnPayout func(amount int64)

	mu           sync.Mutex
	view         View
	spinArmedFor string
	claimedFor   string
}

func NewController(engine *Engine, feed *Feed, balances BalanceReader, bettor Bettor) *Controller {
	return &Controller{engine: engine, feed: feed, balances: balances, bettor: bettor}
}

// Run blocks until ctx is done, driving the controller's timers and feed
// subscription. Store failures during background work are logged and
// absorbed; the next tick or event resynchronizes.
func (c *Controller) Run(ctx context.Context) error {
	events := c.feed.Subscribe(ctx)
	cfg := c.engine.Config()

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	spin := newStoppedTimer()
	defer spin.Stop()
	rollover := newStoppedTimer()
	defer rollover.Stop()

	c.start(ctx, spin, rollover)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			c.handleEvent(ctx, ev, spin, rollover)
		case <-ticker.C:
			c.pollTick(ctx, spin, rollover)
		case <-spin.C:
			c.spinElapsed(ctx)
		case <-rollover.C:
			c.rollToNextRound(ctx, spin, rollover)
		}
	}
}

func (c *Controller) start(ctx context.Context, spin, rollover *time.Timer) {
	round, err := c.engine.EnsureOpenRound(ctx, c.bettor.ID)
	if err != nil {
		log.Warn().Err(err).Str("bettor_id", c.bettor.ID).Msg("ensure open round failed")
		return
	}
	c.adoptRound(ctx, round, spin, rollover)
	c.reloadBets(ctx, round.ID)
	c.reloadBalance(ctx)
	c.pushUpdate()
}

func (c *Controller) handleEvent(ctx context.Context, ev Event, spin, rollover *time.Timer) {
	switch ev.Kind {
	case EventRound:
		round, err := c.engine.stores.GetRound(ctx, ev.RoundID)
		if err != nil {
			log.Debug().Err(err).Str("round_id", ev.RoundID).Msg("round refresh failed")
			return
		}
		c.adoptRound(ctx, round, spin, rollover)
		c.pushUpdate()
	case EventBet:
		c.mu.Lock()
		current := c.view.Round
		c.mu.Unlock()
		if current == nil || current.ID != ev.RoundID {
			return
		}
		// Full re-fetch on every bet change: simplest consistent option.
		c.reloadBets(ctx, ev.RoundID)
		c.pushUpdate()
	}
}

// pollTick is the leaderless fallback: every connected client re-reads the
// round each tick and attempts the close itself. Nobody is elected; the
// store's conditional write lets exactly one attempt through.
func (c *Controller) pollTick(ctx context.Context, spin, rollover *time.Timer) {
	c.mu.Lock()
	current := c.view.Round
	c.mu.Unlock()

	if current == nil {
		c.start(ctx, spin, rollover)
		return
	}

	round, err := c.engine.stores.GetRound(ctx, current.ID)
	if err != nil {
		log.Debug().Err(err).Str("round_id", current.ID).Msg("poll refresh failed")
		return
	}
	c.adoptRound(ctx, round, spin, rollover)

	// A pending round with enough bettors should be counting down; the arm
	// write normally happens on bet insertion, but if it failed there this
	// retries it until one client's write lands.
	if round.Status == StatusOpen && round.CountdownPending(time.Now()) {
		c.mu.Lock()
		distinct := DistinctBettors(c.view.Bets)
		c.mu.Unlock()
		if distinct >= c.engine.Config().MinBettors {
			c.engine.maybeArmCountdown(ctx, round)
		}
	}

	if round.Status == StatusOpen && round.Expired(time.Now()) {
		bets, err := c.engine.stores.ListBets(ctx, round.ID)
		if err != nil {
			log.Debug().Err(err).Str("round_id", round.ID).Msg("poll bet reload failed")
			return
		}
		closed, err := c.engine.TryCloseRound(ctx, round, bets)
		if err != nil {
			log.Warn().Err(err).Str("round_id", round.ID).Msg("close attempt failed")
			return
		}
		if closed != nil {
			c.adoptRound(ctx, closed, spin, rollover)
		}
	}
	c.pushUpdate()
}

// adoptRound folds a freshly read round into the view and reacts to status
// changes: arm the spin timer once per spinning round, claim and schedule
// rollover once per finished round.
func (c *Controller) adoptRound(ctx context.Context, round *Round, spin, rollover *time.Timer) {
	cfg := c.engine.Config()

	c.mu.Lock()
	prev := c.view.Round
	// Never switch to a different round that is already finished: it is a
	// stale notification for a round this controller has moved past, and
	// re-adopting it would strand the view (its claim and rollover already
	// happened, or belong to someone else).
	if prev != nil && prev.ID != round.ID && round.Status == StatusFinished {
		c.mu.Unlock()
		return
	}
	c.view.Round = round
	if prev != nil && prev.ID != round.ID {
		c.view.Bets = nil
	}
	c.mu.Unlock()
	if prev != nil && prev.ID != round.ID {
		c.reloadBets(ctx, round.ID)
	}

	switch round.Status {
	case StatusSpinning:
		if c.spinArmedFor != round.ID {
			c.spinArmedFor = round.ID
			spin.Reset(cfg.SpinDuration)
		}
	case StatusFinished:
		if c.claimedFor != round.ID {
			c.claimedFor = round.ID
			c.claimIfWinner(ctx, round)
			rollover.Reset(cfg.RolloverDelay)
		}
	}
}

func (c *Controller) spinElapsed(ctx context.Context) {
	if c.spinArmedFor == "" {
		return
	}
	// Harmless if another client already finished it.
	if _, err := c.engine.TryFinishRound(ctx, c.spinArmedFor); err != nil {
		log.Warn().Err(err).Str("round_id", c.spinArmedFor).Msg("finish attempt failed")
	}
}

func (c *Controller) claimIfWinner(ctx context.Context, round *Round) {
	if round.WinnerID != c.bettor.ID {
		return
	}
	amount, err := c.engine.ClaimPayout(ctx, round.ID, c.bettor.ID)
	if err != nil {
		// Logged, not surfaced: if the claim landed server-side the next
		// balance read reconciles.
		log.Warn().Err(err).Str("round_id", round.ID).Msg("payout claim failed")
		return
	}
	if amount == 0 {
		return
	}
	c.mu.Lock()
	c.view.Balance += amount
	c.mu.Unlock()
	if c.OnPayout != nil {
		c.OnPayout(amount)
	}
}

func (c *Controller) rollToNextRound(ctx context.Context, spin, rollover *time.Timer) {
	c.mu.Lock()
	c.view = View{Balance: c.view.Balance}
	c.mu.Unlock()
	c.start(ctx, spin, rollover)
}

// PlaceBet validates locally for fast feedback, then lets the store decide.
// The local balance is debited only after the store confirms the bet, never
// optimistically.
func (c *Controller) PlaceBet(ctx context.Context, amount int64) error {
	c.mu.Lock()
	round := c.view.Round
	balance := c.view.Balance
	existing := c.view.myBet(c.bettor.ID)
	c.mu.Unlock()

	if round == nil || round.Status != StatusOpen || round.Expired(time.Now()) {
		return ErrRoundClosed
	}
	if existing != nil {
		return ErrDuplicateBet
	}
	if amount > balance {
		return ErrInsufficientFunds
	}

	_, err := c.engine.PlaceBet(ctx, round.ID, c.bettor.ID, amount, c.bettor.Meta)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.view.Balance -= amount
	c.mu.Unlock()
	c.reloadBets(ctx, round.ID)
	c.pushUpdate()
	return nil
}

// Snapshot returns a copy of the current view.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.view
	v.Bets = append([]Bet(nil), c.view.Bets...)
	return v
}

func (c *Controller) reloadBets(ctx context.Context, roundID string) {
	bets, err := c.engine.stores.ListBets(ctx, roundID)
	if err != nil {
		log.Debug().Err(err).Str("round_id", roundID).Msg("bet reload failed")
		return
	}
	c.mu.Lock()
	if c.view.Round != nil && c.view.Round.ID == roundID {
		c.view.Bets = bets
	}
	c.mu.Unlock()
}

func (c *Controller) reloadBalance(ctx context.Context) {
	if c.balances == nil {
		return
	}
	balance, err := c.balances.Balance(ctx, c.bettor.ID)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Debug().Err(err).Str("bettor_id", c.bettor.ID).Msg("balance reload failed")
		}
		return
	}
	c.mu.Lock()
	c.view.Balance = balance
	c.mu.Unlock()
}

func (c *Controller) pushUpdate() {
	if c.OnUpdate == nil {
		return
	}
	c.OnUpdate(c.Snapshot())
}

func newStoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	if !t.Stop() {
		<-t.C
	}
	return t
}
