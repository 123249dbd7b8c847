package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/calvinwijaya/concentor/internal/game"
)

const envPrefix = "CONCENTOR_"

type Config struct {
	// PreviewDelay is how long every card stays face-up when a round starts.
	PreviewDelay time.Duration
	// HideDelay is how long a mismatched pair stays face-up.
	HideDelay time.Duration
	// TickInterval is the length of one elapsed-time unit.
	TickInterval time.Duration

	Port        string
	FrontendURL string
	LogLevel    string
	// SessionTTL is how long an idle web session is kept before it is reaped.
	SessionTTL time.Duration
	// Seed fixes the shuffle order when non-zero.
	Seed int64
}

// Default returns the timings of the reference game.
func Default() Config {
	return Config{
		PreviewDelay: 1500 * time.Millisecond,
		HideDelay:    1500 * time.Millisecond,
		TickInterval: time.Second,
		Port:         "8080",
		FrontendURL:  "http://localhost:8080",
		LogLevel:     "info",
		SessionTTL:   30 * time.Minute,
	}
}

// Load reads an optional .env file and applies CONCENTOR_* environment
// overrides on top of the defaults.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read env file: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv applies overrides from lookup on top of the defaults.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Default()

	durations := map[string]*time.Duration{
		"PREVIEW_DELAY": &c.PreviewDelay,
		"HIDE_DELAY":    &c.HideDelay,
		"TICK_INTERVAL": &c.TickInterval,
		"SESSION_TTL":   &c.SessionTTL,
	}
	for key, dst := range durations {
		v, ok := lookup(envPrefix + key)
		if !ok || v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s%s: %w", envPrefix, key, err)
		}
		*dst = d
	}

	texts := map[string]*string{
		"PORT":         &c.Port,
		"FRONTEND_URL": &c.FrontendURL,
		"LOG_LEVEL":    &c.LogLevel,
	}
	for key, dst := range texts {
		if v, ok := lookup(envPrefix + key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup(envPrefix + "SEED"); ok && v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %sSEED: %w", envPrefix, err)
		}
		c.Seed = seed
	}

	return c, c.Validate()
}

// Validate rejects settings the game cannot run with.
func (c Config) Validate() error {
	if c.PreviewDelay <= 0 {
		return fmt.Errorf("preview delay must be positive, got %s", c.PreviewDelay)
	}
	if c.HideDelay <= 0 {
		return fmt.Errorf("hide delay must be positive, got %s", c.HideDelay)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q: %w", c.Port, err)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// Timing returns the round delays.
func (c Config) Timing() game.Timing {
	return game.Timing{
		Preview: c.PreviewDelay,
		Hide:    c.HideDelay,
		Tick:    c.TickInterval,
	}
}
