package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// BlackoutOverride marks recurring dates that must never be scheduled
type BlackoutOverride struct {
	RRule  string `yaml:"rrule" validate:"required"`
	Reason string `yaml:"reason,omitempty"`
}

// WeekendSlotOverride changes how many analysts cover weekend days matched by the rule
type WeekendSlotOverride struct {
	RRule string `yaml:"rrule" validate:"required"`
	Slots int    `yaml:"slots" validate:"min=1"`
}

// EngineSettings mirrors the scheduler engine configuration in yaml form.
// Zero values fall back to the engine defaults at generation time.
type EngineSettings struct {
	Strategy              string  `yaml:"strategy,omitempty" validate:"omitempty,oneof=GREEDY HILL_CLIMBING SIMULATED_ANNEALING GENETIC"`
	FairnessWeight        float64 `yaml:"fairnessWeight,omitempty" validate:"omitempty,min=0,max=1"`
	EfficiencyWeight      float64 `yaml:"efficiencyWeight,omitempty" validate:"omitempty,min=0,max=1"`
	ConstraintWeight      float64 `yaml:"constraintWeight,omitempty" validate:"omitempty,min=0,max=1"`
	MaxIterations         int     `yaml:"maxIterations,omitempty" validate:"omitempty,min=1"`
	ConvergenceThreshold  float64 `yaml:"convergenceThreshold,omitempty" validate:"omitempty,min=0"`
	RandomizationFactor   float64 `yaml:"randomizationFactor,omitempty" validate:"omitempty,min=0,max=1"`
	MaxConsecutiveDays    int     `yaml:"maxConsecutiveDays,omitempty" validate:"omitempty,min=1"`
	WeekendAnalystsPerDay int     `yaml:"weekendAnalystsPerDay,omitempty" validate:"omitempty,min=1"`
	TimeoutSeconds        int     `yaml:"timeoutSeconds,omitempty" validate:"omitempty,min=1"`
	ScreenerStrategy      string  `yaml:"screenerStrategy,omitempty" validate:"omitempty,oneof=scored round-robin"`
	WeekendStrategy       string  `yaml:"weekendStrategy,omitempty" validate:"omitempty,oneof=rotation-fairness lowest-streak"`
	Seed                  int64   `yaml:"seed,omitempty"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL          string                `yaml:"databaseURL" validate:"required"`
	VacationCalendar     string                `yaml:"vacationCalendar,omitempty"`
	Engine               EngineSettings        `yaml:"engine,omitempty"`
	BlackoutOverrides    []BlackoutOverride    `yaml:"blackoutOverrides,omitempty" validate:"dive"`
	WeekendSlotOverrides []WeekendSlotOverride `yaml:"weekendSlotOverrides,omitempty" validate:"dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from shiftplanner_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, override := range cfg.BlackoutOverrides {
		if _, err := rrule.StrToRRule(override.RRule); err != nil {
			return fmt.Errorf("invalid rrule in blackoutOverrides[%d]: %w", i, err)
		}
	}

	for i, override := range cfg.WeekendSlotOverrides {
		if _, err := rrule.StrToRRule(override.RRule); err != nil {
			return fmt.Errorf("invalid rrule in weekendSlotOverrides[%d]: %w", i, err)
		}
	}

	return nil
}

// findConfigFile searches for shiftplanner_config.yaml in current directory and home directory
func findConfigFile() (string, error) {
	configFileName := "shiftplanner_config.yaml"

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
