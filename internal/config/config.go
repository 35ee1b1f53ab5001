package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scoring holds the point formula tunables.
type Scoring struct {
	BasePoints      int `yaml:"base_points"`       // awarded for any correct answer
	MaxTimeBonus    int `yaml:"max_time_bonus"`    // cap on the linear speed bonus
	StreakThreshold int `yaml:"streak_threshold"`  // consecutive corrects before hot-streak
}

// Timing holds the engine's broadcast cadence.
type Timing struct {
	TickInterval        time.Duration `yaml:"tick_interval"`
	RebroadcastInterval time.Duration `yaml:"rebroadcast_interval"`
}

// Config is the engine configuration, loadable from YAML.
type Config struct {
	Scoring Scoring `yaml:"scoring"`
	Timing  Timing  `yaml:"timing"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Scoring: Scoring{
			BasePoints:      100,
			MaxTimeBonus:    100,
			StreakThreshold: 3,
		},
		Timing: Timing{
			TickInterval:        time.Second,
			RebroadcastInterval: 5 * time.Second,
		},
	}
}

// Load reads a YAML config file, filling omitted fields from defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
