package config

import "github.com/caarlos0/env/v11"

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty bool   `env:"LOG_PRETTY" envDefault:"false"`
	File   string `env:"LOG_FILE"`
	MaxMB  int    `env:"LOG_MAX_MB" envDefault:"10"`

	// SampleEvery > 1 keeps only every Nth log event.
	SampleEvery int `env:"LOG_SAMPLE_EVERY" envDefault:"0"`
}

func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	err := env.Parse(&cfg)
	return cfg, err
}
