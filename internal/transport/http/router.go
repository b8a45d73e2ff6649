package httptransport

import (
	"expvar"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"orbit-jackpot/internal/profile"
	"orbit-jackpot/internal/store"
	"orbit-jackpot/internal/ws"
)

func NewRouter(st *store.Store, profiles *profile.Service, wsServer *ws.Server) *chi.Mux {
	handlers := NewHandlers(st, profiles)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", handlers.Health())
	r.Get("/debug/vars", expvar.Handler().ServeHTTP)
	r.Get("/ws", wsServer.HandleWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/round", handlers.CurrentRound())
		r.Get("/profile/{player_id}", handlers.Profile())
		r.Put("/profile/{player_id}/game-data", handlers.SaveGameData())
	})

	return r
}
