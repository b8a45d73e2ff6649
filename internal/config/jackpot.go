package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// JackpotConfig carries the round timing and betting limits. Every connected
// client runs the same timings, so they all attempt the same transitions at
// roughly the same moment; the store arbitrates.
type JackpotConfig struct {
	CountdownSecs int   `env:"JACKPOT_COUNTDOWN_SECONDS" envDefault:"30"`
	SpinSecs      int   `env:"JACKPOT_SPIN_SECONDS" envDefault:"5"`
	RolloverSecs  int   `env:"JACKPOT_ROLLOVER_SECONDS" envDefault:"3"`
	PollMS        int   `env:"JACKPOT_POLL_MS" envDefault:"1000"`
	MinBettors    int   `env:"JACKPOT_MIN_BETTORS" envDefault:"2"`
	MinBet        int64 `env:"JACKPOT_MIN_BET" envDefault:"1"`
	MaxBet        int64 `env:"JACKPOT_MAX_BET" envDefault:"100000"`
}

func LoadJackpot() (JackpotConfig, error) {
	var cfg JackpotConfig
	err := env.Parse(&cfg)
	return cfg, err
}

func (c JackpotConfig) Countdown() time.Duration { return time.Duration(c.CountdownSecs) * time.Second }
func (c JackpotConfig) SpinDuration() time.Duration { return time.Duration(c.SpinSecs) * time.Second }
func (c JackpotConfig) RolloverDelay() time.Duration {
	return time.Duration(c.RolloverSecs) * time.Second
}
func (c JackpotConfig) PollInterval() time.Duration {
	return time.Duration(c.PollMS) * time.Millisecond
}
