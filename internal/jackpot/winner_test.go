package jackpot

import (
	"fmt"
	"testing"
)

func betList(amounts map[string]int64) []Bet {
	// Fixed iteration order: bets walk in creation order, so build it
	// explicitly instead of ranging the map.
	out := []Bet{}
	for _, id := range []string{"a", "b", "c", "d"} {
		if amt, ok := amounts[id]; ok {
			out = append(out, Bet{ID: "bet-" + id, RoundID: "r1", BettorID: id, Amount: amt})
		}
	}
	return out
}

func TestSelectWinnerDeterministic(t *testing.T) {
	bets := betList(map[string]int64{"a": 10, "b": 30, "c": 5})
	first := SelectWinner(bets, "seed-1", "round-1")
	if first == nil {
		t.Fatal("expected a winner")
	}
	for i := 0; i < 200; i++ {
		got := SelectWinner(bets, "seed-1", "round-1")
		if got == nil || got.BettorID != first.BettorID {
			t.Fatalf("call %d returned %v, want %s every time", i, got, first.BettorID)
		}
	}
}

func TestSelectWinnerEmptyAndZeroTotal(t *testing.T) {
	if got := SelectWinner(nil, "seed", "round"); got != nil {
		t.Fatalf("SelectWinner(nil) = %v, want nil", got)
	}
	if got := SelectWinner([]Bet{}, "seed", "round"); got != nil {
		t.Fatalf("SelectWinner(empty) = %v, want nil", got)
	}
	zero := []Bet{{BettorID: "a", Amount: 0}, {BettorID: "b", Amount: 0}}
	if got := SelectWinner(zero, "seed", "round"); got != nil {
		t.Fatalf("SelectWinner(zero total) = %v, want nil", got)
	}
}

func TestSelectWinnerSingleBet(t *testing.T) {
	bets := []Bet{{BettorID: "solo", Amount: 7}}
	for i := 0; i < 50; i++ {
		got := SelectWinner(bets, fmt.Sprintf("seed-%d", i), "round-1")
		if got == nil || got.BettorID != "solo" {
			t.Fatalf("seed %d: got %v, want solo", i, got)
		}
	}
}

func TestSelectWinnerWeightedFairness(t *testing.T) {
	bets := betList(map[string]int64{"a": 10, "b": 30})
	const trials = 40000
	wins := map[string]int{}
	for i := 0; i < trials; i++ {
		got := SelectWinner(bets, fmt.Sprintf("seed-%d", i), "round-1")
		if got == nil {
			t.Fatal("expected a winner")
		}
		wins[got.BettorID]++
	}
	// a should win ~25% of the time, b ~75%. Allow a generous band; the
	// hash is deterministic so this test cannot flake.
	aFrac := float64(wins["a"]) / trials
	if aFrac < 0.22 || aFrac > 0.28 {
		t.Fatalf("a won %.3f of rounds, want ~0.25 (wins: %v)", aFrac, wins)
	}
}

func TestSelectWinnerVariesWithSeedAndRound(t *testing.T) {
	bets := betList(map[string]int64{"a": 50, "b": 50})
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		got := SelectWinner(bets, fmt.Sprintf("seed-%d", i), "round-1")
		seen[got.BettorID] = true
	}
	if len(seen) != 2 {
		t.Fatalf("100 seeds only ever picked %v; selection is not using the seed", seen)
	}
}
