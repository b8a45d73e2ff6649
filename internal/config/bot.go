package config

import "github.com/caarlos0/env/v11"

type BotConfig struct {
	WSURL    string `env:"WS_URL" envDefault:"ws://localhost:8080/ws"`
	Players  int    `env:"BOT_PLAYERS" envDefault:"3"`
	MaxBet   int64  `env:"BOT_MAX_BET" envDefault:"50"`
	Rounds   int    `env:"BOT_ROUNDS" envDefault:"0"`
	IDPrefix string `env:"BOT_ID_PREFIX" envDefault:"bot"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
