package seeder

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Sample is one classifier decision to insert.
type Sample struct {
	Text       string  `yaml:"text"`
	Confidence float64 `yaml:"confidence"`
	Model      string  `yaml:"model"`
}

// Config holds seeding settings.
type Config struct {
	// UserID owns the inserted logs. Empty inserts unowned logs, which no
	// scoped query returns.
	UserID    string   `yaml:"user_id"    env:"SEED_USER_ID"`
	Copies    int      `yaml:"copies"     env:"SEED_COPIES"     env-default:"1"`
	BatchSize int      `yaml:"batch_size" env:"SEED_BATCH_SIZE" env-default:"500"`
	Threshold float64  `yaml:"threshold"  env:"SEED_THRESHOLD"  env-default:"0.5"`
	DryRun    bool     `yaml:"dry_run"    env:"SEED_DRY_RUN"`
	Samples   []Sample `yaml:"samples"`
}

// LoadConfig reads seeding configuration from a YAML file and environment
// variables. Priority: ENV > YAML > defaults. Without samples the built-in
// set is used.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("seed config: file %s not found", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("seed config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("seed config: read env: %w", err)
	}

	if len(cfg.Samples) == 0 {
		cfg.Samples = DefaultSamples()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("seed config: %w", err)
	}
	return &cfg, nil
}

// Validate checks bounds on every field.
func (c *Config) Validate() error {
	if c.Copies < 1 {
		return fmt.Errorf("copies must be >= 1 (got %d)", c.Copies)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be >= 1 (got %d)", c.BatchSize)
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be in [0, 1] (got %v)", c.Threshold)
	}
	for i, s := range c.Samples {
		if s.Text == "" {
			return fmt.Errorf("samples[%d]: text is required", i)
		}
		if s.Confidence < 0 || s.Confidence > 1 {
			return fmt.Errorf("samples[%d]: confidence must be in [0, 1] (got %v)", i, s.Confidence)
		}
	}
	return nil
}
