// Package config assembles runtime settings for the BoostFeed client.
// Sources are applied in order, later ones winning: built-in defaults,
// environment variables, a JSON config file, command-line flags.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings for the client.
//
// Fields:
//   - APIEndpointURL: base URL of the identity backend (auth + record store).
//   - APIKey: the publishable API key sent with every request.
//   - RequestTimeout: per-request timeout for backend calls.
type Config struct {
	APIEndpointURL string        `env:"BOOSTFEED_API_URL"`
	APIKey         string        `env:"BOOSTFEED_API_KEY"`
	RequestTimeout time.Duration `env:"BOOSTFEED_REQUEST_TIMEOUT"`
}

func (c *Config) loadDefaults() {
	c.APIEndpointURL = "http://127.0.0.1:54321"
	c.RequestTimeout = 15 * time.Second
}

// Load builds a Config from args (usually os.Args[1:]).
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.loadDefaults()

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	fl, err := parseFlags(args)
	if err != nil {
		return nil, err
	}
	if fl.configFile != "" {
		if err := applyJSON(cfg, fl.configFile); err != nil {
			return nil, err
		}
	}
	fl.apply(cfg)

	return cfg, nil
}
