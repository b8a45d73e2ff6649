package ws

import (
	"time"

	"orbit-jackpot/internal/jackpot"
)

type JoinMessage struct {
	Type        string `json:"type"`
	BettorID    string `json:"bettor_id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

type PlaceBetMessage struct {
	Type   string `json:"type"`
	Amount int64  `json:"amount"`
}

type JoinResult struct {
	Type  string `json:"type"`
	Ok    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type BetResult struct {
	Type  string `json:"type"`
	Ok    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type PayoutMessage struct {
	Type   string `json:"type"`
	Amount int64  `json:"amount"`
}

type RoundInfo struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	Seed             string `json:"seed"`
	EndsAtMS         int64  `json:"ends_at_ms"`
	CountdownPending bool   `json:"countdown_pending"`
	WinnerID         string `json:"winner_id,omitempty"`
}

type BetInfo struct {
	BettorID    string `json:"bettor_id"`
	Amount      int64  `json:"amount"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

type RoundUpdate struct {
	Type    string     `json:"type"`
	Round   *RoundInfo `json:"round"`
	Bets    []BetInfo  `json:"bets"`
	Pot     int64      `json:"pot"`
	Balance int64      `json:"balance"`
	MyBet   int64      `json:"my_bet"`
}

func roundUpdateFromView(v jackpot.View, bettorID string) RoundUpdate {
	upd := RoundUpdate{Type: "round_update", Bets: []BetInfo{}, Balance: v.Balance}
	now := time.Now()
	if v.Round != nil {
		upd.Round = &RoundInfo{
			ID:               v.Round.ID,
			Status:           string(v.Round.Status),
			Seed:             v.Round.Seed,
			EndsAtMS:         v.Round.EndsAt.UnixMilli(),
			CountdownPending: v.Round.CountdownPending(now),
			WinnerID:         v.Round.WinnerID,
		}
	}
	for _, b := range v.Bets {
		upd.Bets = append(upd.Bets, BetInfo{
			BettorID:    b.BettorID,
			Amount:      b.Amount,
			DisplayName: b.Meta.Name,
			AvatarURL:   b.Meta.Avatar,
		})
		upd.Pot += b.Amount
		if b.BettorID == bettorID {
			upd.MyBet = b.Amount
		}
	}
	return upd
}
