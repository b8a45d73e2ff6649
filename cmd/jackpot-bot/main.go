// jackpot-bot connects a handful of headless players to a running server and
// lets them bet against each other, exercising the multi-client close race
// end to end.
package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"orbit-jackpot/internal/config"
)

type join struct {
	Type        string `json:"type"`
	BettorID    string `json:"bettor_id"`
	DisplayName string `json:"display_name"`
}

type placeBet struct {
	Type   string `json:"type"`
	Amount int64  `json:"amount"`
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load bot config failed")
	}

	var wg sync.WaitGroup
	for i := 0; i < cfg.Players; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			runPlayer(cfg, fmt.Sprintf("%s-%d", cfg.IDPrefix, n))
		}(i)
	}
	wg.Wait()
}

func runPlayer(cfg config.BotConfig, id string) {
	conn, _, err := websocket.DefaultDialer.Dial(cfg.WSURL, nil)
	if err != nil {
		log.Error().Err(err).Str("bettor_id", id).Msg("dial failed")
		return
	}
	defer conn.Close()

	send(conn, join{Type: "join", BettorID: id, DisplayName: id})

	rnd := rand.New(rand.NewSource(time.Now().UnixNano() ^ int64(len(id))))
	betRounds := map[string]bool{}
	roundsSeen := 0

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &base); err != nil {
			continue
		}
		switch base.Type {
		case "round_update":
			var upd struct {
				Round *struct {
					ID     string `json:"id"`
					Status string `json:"status"`
				} `json:"round"`
				Balance int64 `json:"balance"`
				MyBet   int64 `json:"my_bet"`
			}
			if err := json.Unmarshal(data, &upd); err != nil || upd.Round == nil {
				continue
			}
			if upd.Round.Status != "open" || upd.MyBet > 0 || betRounds[upd.Round.ID] {
				continue
			}
			if cfg.Rounds > 0 && roundsSeen >= cfg.Rounds {
				return
			}
			amount := 1 + rnd.Int63n(cfg.MaxBet)
			if amount > upd.Balance {
				amount = upd.Balance
			}
			if amount <= 0 {
				log.Warn().Str("bettor_id", id).Msg("broke, leaving the table")
				return
			}
			betRounds[upd.Round.ID] = true
			roundsSeen++
			send(conn, placeBet{Type: "place_bet", Amount: amount})
			log.Info().Str("bettor_id", id).Str("round_id", upd.Round.ID).Int64("amount", amount).Msg("bet placed")
		case "payout":
			var p struct {
				Amount int64 `json:"amount"`
			}
			_ = json.Unmarshal(data, &p)
			log.Info().Str("bettor_id", id).Int64("amount", p.Amount).Msg("won the pot")
		case "bet_result":
			var res struct {
				Ok    bool   `json:"ok"`
				Error string `json:"error"`
			}
			_ = json.Unmarshal(data, &res)
			if !res.Ok {
				log.Warn().Str("bettor_id", id).Str("error", res.Error).Msg("bet rejected")
			}
		}
	}
}

func send(conn *websocket.Conn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, data)
}
