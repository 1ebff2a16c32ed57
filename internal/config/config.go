package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable the server reads at startup.
type Config struct {
	Addr           string   `env:"QUIZROOM_ADDR"            envDefault:":8080"`
	LogLevel       string   `env:"QUIZROOM_LOG_LEVEL"       envDefault:"info"`
	SessionSecret  string   `env:"QUIZROOM_SESSION_SECRET"`
	RateLimit      float64  `env:"QUIZROOM_RATE_LIMIT"      envDefault:"50"`
	RateBurst      int      `env:"QUIZROOM_RATE_BURST"      envDefault:"50"`
	PermanentRooms []string `env:"QUIZROOM_PERMANENT_ROOMS" envSeparator:"," envDefault:"hq"`
	Denylist       []string `env:"QUIZROOM_DENYLIST"        envSeparator:","`
}

// Load reads .env if present, then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
