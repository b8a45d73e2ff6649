package httptransport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"orbit-jackpot/internal/jackpot"
	"orbit-jackpot/internal/profile"
	"orbit-jackpot/internal/store"
)

const maxGameDataBytes = 256 * 1024

type Handlers struct {
	store    *store.Store
	profiles *profile.Service
}

func NewHandlers(st *store.Store, profiles *profile.Service) *Handlers {
	return &Handlers{store: st, profiles: profiles}
}

func (h *Handlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.store.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

// CurrentRound serves a read-only snapshot of the live round and its bets for
// clients that render before (or without) a websocket.
func (h *Handlers) CurrentRound() http.HandlerFunc {
	type betResp struct {
		BettorID    string `json:"bettor_id"`
		Amount      int64  `json:"amount"`
		DisplayName string `json:"display_name"`
		AvatarURL   string `json:"avatar_url,omitempty"`
	}
	type roundResp struct {
		ID               string    `json:"id"`
		Status           string    `json:"status"`
		EndsAtMS         int64     `json:"ends_at_ms"`
		CountdownPending bool      `json:"countdown_pending"`
		WinnerID         string    `json:"winner_id,omitempty"`
		Pot              int64     `json:"pot"`
		Bets             []betResp `json:"bets"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		round, err := h.store.CurrentRound(r.Context())
		if errors.Is(err, jackpot.ErrRoundNotFound) {
			WriteHTTPError(w, http.StatusNotFound, "no_live_round")
			return
		}
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		bets, err := h.store.ListBets(r.Context(), round.ID)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		resp := roundResp{
			ID:               round.ID,
			Status:           string(round.Status),
			EndsAtMS:         round.EndsAt.UnixMilli(),
			CountdownPending: round.CountdownPending(time.Now()),
			WinnerID:         round.WinnerID,
			Bets:             []betResp{},
		}
		for _, b := range bets {
			resp.Pot += b.Amount
			resp.Bets = append(resp.Bets, betResp{
				BettorID:    b.BettorID,
				Amount:      b.Amount,
				DisplayName: b.Meta.Name,
				AvatarURL:   b.Meta.Avatar,
			})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *Handlers) Profile() http.HandlerFunc {
	type resp struct {
		ID          string          `json:"id"`
		DisplayName string          `json:"display_name"`
		AvatarURL   string          `json:"avatar_url,omitempty"`
		Balance     int64           `json:"balance"`
		GameData    json.RawMessage `json:"game_data"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "player_id")
		p, err := h.profiles.Get(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			WriteHTTPError(w, http.StatusNotFound, "player_not_found")
			return
		}
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(resp{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			AvatarURL:   p.AvatarURL,
			Balance:     p.Balance,
			GameData:    p.GameData,
		})
	}
}

// SaveGameData replaces the player's whole game_data blob. The blob is opaque
// here; the client owns its shape.
func (h *Handlers) SaveGameData() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "player_id")
		body, err := io.ReadAll(io.LimitReader(r.Body, maxGameDataBytes+1))
		if err != nil || len(body) > maxGameDataBytes {
			WriteHTTPError(w, http.StatusBadRequest, "body_too_large")
			return
		}
		if !json.Valid(body) {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if err := h.profiles.SaveGameData(r.Context(), id, body); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				WriteHTTPError(w, http.StatusNotFound, "player_not_found")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}
