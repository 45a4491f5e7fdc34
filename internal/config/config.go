package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// TimePreset is a named clock configuration selectable at game start.
type TimePreset struct {
	ID               string `json:"id"`
	Mode             string `json:"mode"`
	MainSeconds      int    `json:"main_seconds"`
	IncrementSeconds int    `json:"increment_seconds"`
	PeriodSeconds    int    `json:"period_seconds"`
	Periods          int    `json:"periods"`
}

type ArenaConfig struct {
	DefaultKomi      float64      `json:"default_komi"`
	DefaultBoardSize int          `json:"default_board_size"`
	DefaultScoring   string       `json:"default_scoring"`
	DefaultPreset    string       `json:"default_preset"`
	TimePresets      []TimePreset `json:"time_presets"`
}

var (
	cfg      *ArenaConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadArenaConfig loads the arena configuration from the given path.
func LoadArenaConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read arena config: %w", err)
			return
		}

		var c ArenaConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal arena config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetArenaConfig returns the global arena configuration.
func GetArenaConfig() *ArenaConfig {
	return cfg
}

// GetDefaultKomi returns the configured komi, or the standard value when the
// config is missing.
func GetDefaultKomi() float64 {
	if cfg == nil || cfg.DefaultKomi == 0 {
		return 6.5 // Safe default
	}
	return cfg.DefaultKomi
}

// GetDefaultBoardSize returns the configured board size, or 9 when the config
// is missing.
func GetDefaultBoardSize() int {
	if cfg == nil || cfg.DefaultBoardSize == 0 {
		return 9
	}
	return cfg.DefaultBoardSize
}

// GetDefaultScoring returns the configured scoring method name, or area
// scoring when the config is missing.
func GetDefaultScoring() string {
	if cfg == nil || cfg.DefaultScoring == "" {
		return "chinese"
	}
	return cfg.DefaultScoring
}

// GetTimePreset returns the preset for a given ID, or the default if not found.
func GetTimePreset(presetID string) (TimePreset, bool) {
	if cfg == nil {
		return TimePreset{}, false
	}

	target := presetID
	if target == "" {
		target = cfg.DefaultPreset
	}

	for _, preset := range cfg.TimePresets {
		if preset.ID == target {
			return preset, true
		}
	}

	// Fallback to default preset if specific ID not found
	for _, preset := range cfg.TimePresets {
		if preset.ID == cfg.DefaultPreset {
			return preset, true
		}
	}

	return TimePreset{}, false
}
