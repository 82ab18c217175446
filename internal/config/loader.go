package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TAPER_CONFIG is set
//  3. env (prefix TAPER_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("TAPER_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: TAPER_ADDR, TAPER_QUEUE_SIZE, ...
	// Map env keys like TAPER_QUEUE_SIZE -> queue_size (flat keys).
	envProvider := env.Provider("TAPER_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "taper_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.DefaultWindowDays {
	case 7, 14, 28:
	default:
		return fmt.Errorf("%w: default_window_days must be 7, 14 or 28", ErrInvalidConfig)
	}
	if c.BaseACWRThreshold <= 0 || c.BaseMonotonyThreshold <= 0 || c.BaseStrainThreshold <= 0 {
		return fmt.Errorf("%w: base thresholds must be positive", ErrInvalidConfig)
	}
	return nil
}
