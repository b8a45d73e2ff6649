package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"orbit-jackpot/internal/jackpot"
)

func pendingEndsAt() time.Time {
	return time.Now().Add(10 * 365 * 24 * time.Hour)
}

func TestRoundInsertAndCurrent(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	_, err := st.CurrentRound(ctx)
	if !errors.Is(err, jackpot.ErrRoundNotFound) {
		t.Fatalf("empty CurrentRound err = %v, want ErrRoundNotFound", err)
	}

	round, err := st.InsertRound(ctx, "alice", pendingEndsAt())
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if round.Status != jackpot.StatusOpen || round.Seed == "" || round.ID == "" {
		t.Fatalf("unexpected round: %+v", round)
	}

	got, err := st.CurrentRound(ctx)
	if err != nil || got.ID != round.ID {
		t.Fatalf("CurrentRound = (%+v, %v), want %s", got, err, round.ID)
	}
}

func TestRoundSingleLiveConstraint(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	if _, err := st.InsertRound(ctx, "alice", pendingEndsAt()); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err := st.InsertRound(ctx, "bob", pendingEndsAt())
	if !errors.Is(err, jackpot.ErrLiveRoundExists) {
		t.Fatalf("second insert err = %v, want ErrLiveRoundExists", err)
	}
}

func TestRoundCASStatusSingleWinner(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	round, err := st.InsertRound(ctx, "alice", time.Now().Add(-time.Second))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	const n = 8
	var committed int32
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := st.CASStatus(ctx, round.ID, jackpot.StatusOpen, jackpot.StatusSpinning, "bob")
			if err != nil {
				t.Errorf("cas: %v", err)
				return
			}
			if ok {
				mu.Lock()
				committed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if committed != 1 {
		t.Fatalf("%d CAS writes committed, want exactly 1", committed)
	}

	got, err := st.GetRound(ctx, round.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != jackpot.StatusSpinning || got.WinnerID != "bob" {
		t.Fatalf("round = %+v, want spinning with winner bob", got)
	}
}

func TestArmCountdownOnlyWhilePending(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	round, err := st.InsertRound(ctx, "alice", pendingEndsAt())
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	deadline := time.Now().Add(30 * time.Second)
	armed, err := st.ArmCountdown(ctx, round.ID, deadline)
	if err != nil || !armed {
		t.Fatalf("first arm = (%v, %v), want (true, nil)", armed, err)
	}
	// Already armed: the second attempt is a no-op.
	armed, err = st.ArmCountdown(ctx, round.ID, time.Now().Add(time.Hour))
	if err != nil || armed {
		t.Fatalf("second arm = (%v, %v), want (false, nil)", armed, err)
	}

	got, _ := st.GetRound(ctx, round.ID)
	if got.EndsAt.Sub(deadline).Abs() > time.Second {
		t.Fatalf("ends_at = %v, want ~%v", got.EndsAt, deadline)
	}
}
