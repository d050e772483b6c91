package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	WSAddr       string  `env:"SIMPLIX_WS_ADDR" envDefault:":8080"`
	DBPath       string  `env:"SIMPLIX_DB_PATH" envDefault:"data/simplix.db"`
	WorldFile    string  `env:"SIMPLIX_WORLD_FILE" envDefault:"configs/world.yaml"`
	Workers      int     `env:"SIMPLIX_WORKERS" envDefault:"4"`
	QueueSize    int     `env:"SIMPLIX_QUEUE_SIZE" envDefault:"256"`
	CommandRate  float64 `env:"SIMPLIX_COMMAND_RATE" envDefault:"5"`
	CommandBurst int     `env:"SIMPLIX_COMMAND_BURST" envDefault:"10"`
	Console      bool    `env:"SIMPLIX_CONSOLE" envDefault:"true"`
	TargetRange  int     `env:"SIMPLIX_TARGET_RANGE" envDefault:"10"`
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("config: SIMPLIX_WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("config: SIMPLIX_QUEUE_SIZE must be at least 1, got %d", c.QueueSize)
	}
	if c.CommandRate <= 0 {
		return fmt.Errorf("config: SIMPLIX_COMMAND_RATE must be positive, got %v", c.CommandRate)
	}
	if c.CommandBurst < 1 {
		return fmt.Errorf("config: SIMPLIX_COMMAND_BURST must be at least 1, got %d", c.CommandBurst)
	}
	if c.TargetRange < 1 {
		return fmt.Errorf("config: SIMPLIX_TARGET_RANGE must be at least 1, got %d", c.TargetRange)
	}
	return nil
}
