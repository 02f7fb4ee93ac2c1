package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := &Config{
		DatabaseURL:      "postgres://localhost:5432/shiftplanner",
		VacationCalendar: "vacations.ics",
		Engine: EngineSettings{
			Strategy:              "HILL_CLIMBING",
			FairnessWeight:        0.4,
			EfficiencyWeight:      0.3,
			ConstraintWeight:      0.3,
			MaxIterations:         1000,
			RandomizationFactor:   0.1,
			WeekendAnalystsPerDay: 2,
		},
		BlackoutOverrides: []BlackoutOverride{
			{
				RRule:  "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25",
				Reason: "company holiday",
			},
		},
		WeekendSlotOverrides: []WeekendSlotOverride{
			{
				RRule: "FREQ=MONTHLY;BYDAY=1SA",
				Slots: 3,
			},
		},
	}

	err := Validate(cfg)
	assert.NoError(t, err)
}

func TestValidate_MinimalConfig(t *testing.T) {
	cfg := &Config{
		DatabaseURL: "postgres://localhost:5432/shiftplanner",
	}

	err := Validate(cfg)
	assert.NoError(t, err)
}

func TestValidate_MissingDatabaseURL(t *testing.T) {
	cfg := &Config{
		VacationCalendar: "vacations.ics",
	}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_InvalidStrategy(t *testing.T) {
	cfg := &Config{
		DatabaseURL: "postgres://localhost:5432/shiftplanner",
		Engine: EngineSettings{
			Strategy: "TABU_SEARCH",
		},
	}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_InvalidRRule(t *testing.T) {
	cfg := &Config{
		DatabaseURL: "postgres://localhost:5432/shiftplanner",
		BlackoutOverrides: []BlackoutOverride{
			{RRule: "INVALID_RRULE_SYNTAX"},
		},
	}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rrule")
}

func TestValidate_InvalidWeekendSlotRRule(t *testing.T) {
	cfg := &Config{
		DatabaseURL: "postgres://localhost:5432/shiftplanner",
		WeekendSlotOverrides: []WeekendSlotOverride{
			{RRule: "NOT_A_RULE", Slots: 2},
		},
	}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rrule")
}

func TestValidate_WeekendSlotOverrideZeroSlots(t *testing.T) {
	cfg := &Config{
		DatabaseURL: "postgres://localhost:5432/shiftplanner",
		WeekendSlotOverrides: []WeekendSlotOverride{
			{RRule: "FREQ=WEEKLY;BYDAY=SA", Slots: 0},
		},
	}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_ComplexValidRRule(t *testing.T) {
	cfg := &Config{
		DatabaseURL: "postgres://localhost:5432/shiftplanner",
		BlackoutOverrides: []BlackoutOverride{
			{RRule: "FREQ=MONTHLY;BYDAY=1SU;BYMONTH=1,4,7,10"},
		},
	}

	err := Validate(cfg)
	assert.NoError(t, err)
}

func TestLoadFromPath_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.yaml")

	validConfig := `
databaseURL: "postgres://localhost:5432/shiftplanner"
vacationCalendar: "vacations.ics"
engine:
  strategy: "SIMULATED_ANNEALING"
  fairnessWeight: 0.5
  efficiencyWeight: 0.25
  constraintWeight: 0.25
  maxIterations: 500
  weekendAnalystsPerDay: 3
  seed: 42
blackoutOverrides:
  - rrule: "FREQ=YEARLY;BYMONTH=1;BYMONTHDAY=1"
    reason: "new year"
weekendSlotOverrides:
  - rrule: "FREQ=MONTHLY;BYDAY=1SA"
    slots: 3
`

	err := os.WriteFile(configPath, []byte(validConfig), 0644)
	require.NoError(t, err)

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/shiftplanner", cfg.DatabaseURL)
	assert.Equal(t, "vacations.ics", cfg.VacationCalendar)
	assert.Equal(t, "SIMULATED_ANNEALING", cfg.Engine.Strategy)
	assert.Equal(t, 0.5, cfg.Engine.FairnessWeight)
	assert.Equal(t, 500, cfg.Engine.MaxIterations)
	assert.Equal(t, 3, cfg.Engine.WeekendAnalystsPerDay)
	assert.Equal(t, int64(42), cfg.Engine.Seed)

	require.Len(t, cfg.BlackoutOverrides, 1)
	assert.Equal(t, "FREQ=YEARLY;BYMONTH=1;BYMONTHDAY=1", cfg.BlackoutOverrides[0].RRule)
	assert.Equal(t, "new year", cfg.BlackoutOverrides[0].Reason)

	require.Len(t, cfg.WeekendSlotOverrides, 1)
	assert.Equal(t, 3, cfg.WeekendSlotOverrides[0].Slots)
}

func TestLoadFromPath_MinimalConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "minimal_config.yaml")

	minimalConfig := `
databaseURL: "postgres://localhost:5432/shiftplanner"
`

	err := os.WriteFile(configPath, []byte(minimalConfig), 0644)
	require.NoError(t, err)

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/shiftplanner", cfg.DatabaseURL)
	assert.Empty(t, cfg.VacationCalendar)
	assert.Empty(t, cfg.BlackoutOverrides)
	assert.Empty(t, cfg.Engine.Strategy)
}

func TestLoadFromPath_InvalidRRule(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_rrule.yaml")

	invalidConfig := `
databaseURL: "postgres://localhost:5432/shiftplanner"
blackoutOverrides:
  - rrule: "INVALID_RRULE_SYNTAX"
`

	err := os.WriteFile(configPath, []byte(invalidConfig), 0644)
	require.NoError(t, err)

	_, err = LoadFromPath(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rrule")
}

func TestLoadFromPath_MissingRequiredField(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_config.yaml")

	invalidConfig := `
vacationCalendar: "vacations.ics"
`

	err := os.WriteFile(configPath, []byte(invalidConfig), 0644)
	require.NoError(t, err)

	_, err = LoadFromPath(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_yaml.yaml")

	invalidYAML := `
databaseURL: "postgres://localhost"
  invalid indentation
vacationCalendar: "vacations.ics"
`

	err := os.WriteFile(configPath, []byte(invalidYAML), 0644)
	require.NoError(t, err)

	_, err = LoadFromPath(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadFromPath_FileNotFound(t *testing.T) {
	_, err := LoadFromPath("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadFromPath_BlackoutOverrideWithoutRRule(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_override.yaml")

	invalidOverride := `
databaseURL: "postgres://localhost:5432/shiftplanner"
blackoutOverrides:
  - reason: "missing rule"
`

	err := os.WriteFile(configPath, []byte(invalidOverride), 0644)
	require.NoError(t, err)

	_, err = LoadFromPath(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}
