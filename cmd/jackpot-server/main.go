package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"orbit-jackpot/internal/config"
	"orbit-jackpot/internal/jackpot"
	"orbit-jackpot/internal/logging"
	"orbit-jackpot/internal/profile"
	"orbit-jackpot/internal/store"
	httptransport "orbit-jackpot/internal/transport/http"
	"orbit-jackpot/internal/ws"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	st, err := store.New(cfg.Server.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer st.Close()
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}
	if err := st.EnsureSchema(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("ensure schema failed")
	}

	feed := jackpot.NewFeed()
	defer feed.Close()
	engine := jackpot.NewEngine(st, feed, jackpotConfig(cfg.Jackpot))
	profiles := profile.New(st, cfg.Server.StartingBalance)
	wsServer := ws.NewServer(engine, feed, profiles)
	r := httptransport.NewRouter(st, profiles, wsServer)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

func jackpotConfig(cfg config.JackpotConfig) jackpot.Config {
	return jackpot.Config{
		Countdown:     cfg.Countdown(),
		SpinDuration:  cfg.SpinDuration(),
		RolloverDelay: cfg.RolloverDelay(),
		PollInterval:  cfg.PollInterval(),
		MinBettors:    cfg.MinBettors,
		MinBet:        cfg.MinBet,
		MaxBet:        cfg.MaxBet,
	}
}
