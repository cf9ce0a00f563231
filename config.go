package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server settings. Environment variables provide the
// defaults and command line flags override them.
type Config struct {
	Port            int           `env:"LUDO_PORT"             envDefault:"8080"`
	Host            string        `env:"LUDO_HOST"             envDefault:"localhost"`
	ScenarioDir     string        `env:"LUDO_SCENARIO_DIR"     envDefault:"scenarios"`
	ResultDir       string        `env:"LUDO_RESULT_DIR"`
	ResultTTL       time.Duration `env:"LUDO_RESULT_TTL"       envDefault:"24h"`
	CleanupInterval time.Duration `env:"LUDO_CLEANUP_INTERVAL" envDefault:"1h"`
	Debug           bool          `env:"LUDO_DEBUG"`

	NgrokEnabled   bool   `env:"NGROK_ENABLED"`
	NgrokAuthToken string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain    string `env:"NGROK_DOMAIN"`

	Version bool
}

// loadConfig reads the environment
func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// bindFlags registers every flag on fs using the values already in cfg as defaults
func bindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fs.StringVar(&cfg.Host, "host", cfg.Host, "HTTP server host")
	fs.StringVar(&cfg.ScenarioDir, "scenario-dir", cfg.ScenarioDir, "Directory containing scenario files")
	fs.StringVar(&cfg.ResultDir, "result-dir", cfg.ResultDir, "Directory where simulations are persisted (empty keeps them in memory)")
	fs.DurationVar(&cfg.ResultTTL, "result-ttl", cfg.ResultTTL, "How long unused simulations are kept (0 keeps them forever)")
	fs.DurationVar(&cfg.CleanupInterval, "cleanup-interval", cfg.CleanupInterval, "How often expired simulations are pruned")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")
	fs.BoolVar(&cfg.Version, "version", false, "Show version information")
	fs.BoolVar(&cfg.NgrokEnabled, "ngrok", cfg.NgrokEnabled, "Enable ngrok tunnel")
	fs.StringVar(&cfg.NgrokAuthToken, "ngrok-auth", cfg.NgrokAuthToken, "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	fs.StringVar(&cfg.NgrokDomain, "ngrok-domain", cfg.NgrokDomain, "Custom ngrok domain (optional)")
}

// Addr is the host:port the HTTP server listens on
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
