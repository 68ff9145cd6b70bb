package config

import (
	"fmt"
	"os"

	"github.com/snapscore/melodex/constants"
	"gopkg.in/yaml.v3"
)

// Config is the numeric configuration surface of the pipeline. All
// fields are simple overrides; the only validation is positivity.
type Config struct {
	// ConfidenceThreshold filters detections before classification.
	ConfidenceThreshold float32 `yaml:"confidence_threshold"`

	// DefaultNoteDurationMS is the note length used when a detection
	// carries no duration hint, in milliseconds of wall time at TempoBPM.
	DefaultNoteDurationMS float64 `yaml:"default_note_duration_ms"`

	TempoBPM float64 `yaml:"tempo_bpm"`

	// BatchSize bounds how many tiles go into one inference call.
	BatchSize int `yaml:"batch_size"`

	TicksPerBeat uint16 `yaml:"ticks_per_beat"`
}

func Default() Config {
	return Config{
		ConfidenceThreshold:   0.5,
		DefaultNoteDurationMS: 100,
		TempoBPM:              120,
		BatchSize:             32,
		TicksPerBeat:          constants.DefaultTicksPerBeat,
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults as is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	dat, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(dat, &cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be in [0,1], got %v", c.ConfidenceThreshold)
	}
	if c.DefaultNoteDurationMS <= 0 {
		return fmt.Errorf("default_note_duration_ms must be positive, got %v", c.DefaultNoteDurationMS)
	}
	if c.TempoBPM <= 0 {
		return fmt.Errorf("tempo_bpm must be positive, got %v", c.TempoBPM)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %v", c.BatchSize)
	}
	if c.TicksPerBeat == 0 {
		return fmt.Errorf("ticks_per_beat must be positive")
	}
	return nil
}

// DefaultNoteDurationBeats converts the configured default duration from
// milliseconds to beats at the configured tempo. This is the single
// place where the ms-to-beats unit conversion happens; everything inside
// the core works in beats.
func (c Config) DefaultNoteDurationBeats() float64 {
	return c.DefaultNoteDurationMS / 1000 * c.TempoBPM / 60
}
