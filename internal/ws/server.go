package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"orbit-jackpot/internal/jackpot"
	"orbit-jackpot/internal/profile"
)

type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	bettor jackpot.Bettor
	ctrl   *jackpot.Controller
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// Server attaches one round controller to every joined websocket connection.
// The controllers are independent peers; closing a connection cancels its
// controller and nothing else.
type Server struct {
	engine   *jackpot.Engine
	feed     *jackpot.Feed
	profiles *profile.Service
	upgrader websocket.Upgrader
}

func NewServer(engine *jackpot.Engine, feed *jackpot.Feed, profiles *profile.Service) *Server {
	return &Server{
		engine:   engine,
		feed:     feed,
		profiles: profiles,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{conn: conn, send: make(chan []byte, 16)}

	go s.writeLoop(client)
	s.readLoop(client)
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		if c.cancel != nil {
			c.cancel()
		}
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
		_ = c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &base); err != nil {
			continue
		}
		switch base.Type {
		case "join":
			if c.ctrl != nil {
				continue
			}
			var join JoinMessage
			if err := json.Unmarshal(msg, &join); err != nil {
				continue
			}
			s.handleJoin(c, join)
		case "place_bet":
			if c.ctrl == nil {
				continue
			}
			var bet PlaceBetMessage
			if err := json.Unmarshal(msg, &bet); err != nil {
				continue
			}
			s.handlePlaceBet(c, bet.Amount)
		}
	}
}

func (s *Server) writeLoop(c *Client) {
	for msg := range c.send {
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
	}
}

func (s *Server) handleJoin(c *Client, join JoinMessage) {
	if join.BettorID == "" {
		s.sendJSON(c, JoinResult{Type: "join_result", Ok: false, Error: "missing_bettor_id"})
		return
	}
	c.bettor = jackpot.Bettor{
		ID:   join.BettorID,
		Meta: jackpot.DisplayMeta{Name: join.DisplayName, Avatar: join.AvatarURL},
	}
	if err := s.profiles.Ensure(context.Background(), c.bettor); err != nil {
		log.Warn().Err(err).Str("bettor_id", c.bettor.ID).Msg("ensure profile failed")
		s.sendJSON(c, JoinResult{Type: "join_result", Ok: false, Error: "store_error"})
		return
	}

	ctrl := jackpot.NewController(s.engine, s.feed, s.profiles, c.bettor)
	ctrl.OnUpdate = func(v jackpot.View) {
		s.sendJSON(c, roundUpdateFromView(v, c.bettor.ID))
	}
	ctrl.OnPayout = func(amount int64) {
		s.sendJSON(c, PayoutMessage{Type: "payout", Amount: amount})
	}
	c.ctrl = ctrl

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go func() {
		if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Str("bettor_id", c.bettor.ID).Msg("controller stopped")
		}
	}()

	s.sendJSON(c, JoinResult{Type: "join_result", Ok: true})
}

func (s *Server) handlePlaceBet(c *Client, amount int64) {
	err := c.ctrl.PlaceBet(context.Background(), amount)
	if err != nil {
		s.sendJSON(c, BetResult{Type: "bet_result", Ok: false, Error: betError(err)})
		return
	}
	s.sendJSON(c, BetResult{Type: "bet_result", Ok: true})
}

// betError maps core errors onto wire codes; anything unexpected is a generic
// retryable store error.
func betError(err error) string {
	switch {
	case errors.Is(err, jackpot.ErrDuplicateBet):
		return "already_bet_this_round"
	case errors.Is(err, jackpot.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, jackpot.ErrRoundClosed):
		return "round_closed"
	case errors.Is(err, jackpot.ErrInvalidBet):
		return "invalid_bet"
	default:
		return "store_error"
	}
}

func (s *Server) sendJSON(c *Client, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		// Slow consumer; the next update supersedes this one anyway.
	}
}
