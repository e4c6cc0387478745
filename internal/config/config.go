package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Address       string   `env:"ADDRESS" env-default:":3000"`
	UsersFile     string   `env:"USERS_FILE" env-default:"users.json"`
	FeedbacksFile string   `env:"FEEDBACKS_FILE" env-default:"feedbacks.json"`
	DatabaseDSN   string   `env:"DATABASE_DSN"`
	JWTSecret     string   `env:"JWT_SECRET" env-default:"earnwatch-dev-secret"`
	CORSOrigins   []string `env:"CORS_ORIGINS" env-separator:","`
}

// Load reads an optional .env file and then the environment. An empty
// DatabaseDSN selects the JSON file store.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("couldn't read environment variables: %w", err)
	}

	return cfg, nil
}
