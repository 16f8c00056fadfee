package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Client configures the command line client.
type Client struct {
	ServerURL string `env:"NEURALFEED_URL" envDefault:"http://localhost:8080"`
	// Home holds the persisted session. Defaults to ~/.neuralfeed.
	Home string `env:"NEURALFEED_HOME"`
}

// LoadClient reads the client settings from the environment, loading a
// .env file first when one exists.
func LoadClient() (*Client, error) {
	_ = godotenv.Load()

	cfg := &Client{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse client configuration: %w", err)
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	if cfg.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("NEURALFEED_HOME is not set and the home directory is unknown: %w", err)
		}
		cfg.Home = filepath.Join(home, ".neuralfeed")
	}
	return cfg, nil
}

// SessionPath is where the client keeps its session cookie.
func (c *Client) SessionPath() string {
	return filepath.Join(c.Home, "session.json")
}
