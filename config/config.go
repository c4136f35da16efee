package config

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sethvargo/go-envconfig"
)

// Config is the full configuration surface of the server. DatabaseURL, when
// set, wins over the individual DB_* parts.
type Config struct {
	Port        string   `env:"PORT, default=8080"`
	CORSOrigins []string `env:"CORS_ORIGINS, default=http://localhost:3000"`

	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST, default=localhost"`
	DBPort      int    `env:"DB_PORT, default=5432"`
	DBUser      string `env:"DB_USER, default=postgres"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBName      string `env:"DB_NAME, default=guestlist"`
}

func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// DSN returns the Postgres connection string, escaping credentials.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
