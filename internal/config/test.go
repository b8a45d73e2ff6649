package config

import "github.com/caarlos0/env/v11"

// TestConfig gates the tests that need a real database. Suites call LoadTest
// and skip when TEST_POSTGRES_DSN is not set, so `go test ./...` stays green
// on machines without Postgres.
type TestConfig struct {
	TestPostgresDSN string `env:"TEST_POSTGRES_DSN,required,notEmpty"`
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	err := env.Parse(&cfg)
	return cfg, err
}
