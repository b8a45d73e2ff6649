package jackpot

import "hash/fnv"

// SelectWinner picks the winning bet for a round, weighted by amount. It is a
// pure function of its inputs: every client that knows the round's seed, id
// and bet list computes the same winner without further coordination.
//
// The draw point is a 32-bit FNV-1a hash of seed+roundID reduced modulo the
// total wagered; the bets are walked in creation order accumulating amounts
// until the draw point is covered.
func SelectWinner(bets []Bet, seed, roundID string) *Bet {
	if len(bets) == 0 {
		return nil
	}
	total := TotalWagered(bets)
	if total <= 0 {
		return nil
	}

	h := fnv.New32a()
	h.Write([]byte(seed))
	h.Write([]byte(roundID))
	r := int64(h.Sum32()) % total

	var acc int64
	for i := range bets {
		acc += bets[i].Amount
		if acc > r {
			return &bets[i]
		}
	}
	// Unreachable with exact integer arithmetic; guard anyway.
	return &bets[len(bets)-1]
}
