package jackpot

import "expvar"

var (
	metricBetsPlacedTotal    = expvar.NewInt("jackpot_bets_placed_total")
	metricRoundsCreatedTotal = expvar.NewInt("jackpot_rounds_created_total")
	metricCloseWonTotal      = expvar.NewInt("jackpot_close_won_total")
	metricCloseLostTotal     = expvar.NewInt("jackpot_close_lost_total")
	metricFinishWonTotal     = expvar.NewInt("jackpot_finish_won_total")
	metricPayoutsTotal       = expvar.NewInt("jackpot_payouts_total")
	metricPayoutAmountTotal  = expvar.NewInt("jackpot_payout_amount_total")
	metricFeedDroppedTotal   = expvar.NewInt("jackpot_feed_dropped_total")
)
