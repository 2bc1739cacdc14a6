package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pario-ai/costplan/pkg/models"
)

// Config holds all costplan configuration.
type Config struct {
	LogLevel  string              `yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat string              `yaml:"log_format" validate:"oneof=text json"`
	Pricing   models.ModelPricing `yaml:"pricing"`
	Baseline  models.UsageParams  `yaml:"baseline"`
	Sweep     SweepConfig         `yaml:"sweep"`
	Reduction ReductionConfig     `yaml:"reduction"`
	Budget    BudgetConfig        `yaml:"budget"`
	Usage     UsageConfig         `yaml:"usage"`
}

// SweepConfig defines the sensitivity grid.
type SweepConfig struct {
	DailyRequests    models.Range `yaml:"daily_requests"`
	PromptTokens     models.Range `yaml:"prompt_tokens"`
	CompletionTokens models.Range `yaml:"completion_tokens"`
	// HeatmapDailyRequests selects the heatmap slice. Zero means the
	// baseline daily request count.
	HeatmapDailyRequests float64 `yaml:"heatmap_daily_requests" validate:"gte=0"`
}

// ReductionConfig controls the prompt engineering scenario.
type ReductionConfig struct {
	Factor float64 `yaml:"factor" validate:"gte=0,lte=1"`
}

// BudgetConfig controls projected-spend checks.
type BudgetConfig struct {
	Enabled  bool                  `yaml:"enabled"`
	Policies []models.BudgetPolicy `yaml:"policies" validate:"dive"`
}

// UsageConfig points at a pario usage database for baselines.
type UsageConfig struct {
	DBPath string `yaml:"db_path"`
}

// HeatmapRequests returns the daily request count the heatmap is sliced at.
func (c *Config) HeatmapRequests() float64 {
	if c.Sweep.HeatmapDailyRequests > 0 {
		return c.Sweep.HeatmapDailyRequests
	}
	return c.Baseline.DailyRequests
}

// Default returns the reference scenario: gpt-4 list pricing, 1000 requests
// a day at 300 prompt and 500 completion tokens, over 30 days.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Pricing: models.ModelPricing{
			Model:          "gpt-4",
			PromptCost:     0.03,
			CompletionCost: 0.06,
		},
		Baseline: models.UsageParams{
			DailyRequests:    1000,
			PromptTokens:     300,
			CompletionTokens: 500,
			Days:             30,
		},
		Sweep: SweepConfig{
			DailyRequests:    models.Range{Start: 500, Stop: 2000, Step: 500},
			PromptTokens:     models.Range{Start: 100, Stop: 500, Step: 100},
			CompletionTokens: models.Range{Start: 200, Stop: 800, Step: 100},
		},
		Reduction: ReductionConfig{
			Factor: 0.7,
		},
		Budget: BudgetConfig{
			Enabled: false,
		},
		Usage: UsageConfig{
			DBPath: "pario.db",
		},
	}
}

// Load reads a YAML config file and expands environment variables. A .env
// file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path, or returns Default when path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports the first violation.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		return fmt.Errorf("invalid config: %s: failed %q (value %v)", e.Namespace(), e.Tag()+paramSuffix(e.Param()), e.Value())
	}
	return fmt.Errorf("invalid config: %w", err)
}

func paramSuffix(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}
