package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/flowgrid/internal/engine"
	"github.com/specialistvlad/flowgrid/internal/report"
)

// DefaultPlayInterval is the delay between steps in play mode when none is set.
const DefaultPlayInterval = 500 * time.Millisecond

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ProgramPaths []string // hcl files or directories
	LevelPath    string   // yaml level, empty for the built-in one

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	VisualizerURL       string
	VisualizerNamespace string
	VisualizerInsecure  bool

	Play         bool
	PlayInterval time.Duration
	MaxSteps     int
	Debug        bool
	ReportFormat string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ProgramPaths) == 0 {
		return nil, errors.New("at least one program path is required")
	}

	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	if cfg.PlayInterval < 0 {
		return nil, fmt.Errorf("invalid interval %s: must not be negative", cfg.PlayInterval)
	}
	if cfg.Play && cfg.PlayInterval == 0 {
		cfg.PlayInterval = DefaultPlayInterval
	}

	switch {
	case cfg.MaxSteps == 0:
		cfg.MaxSteps = engine.DefaultMaxSteps
	case cfg.MaxSteps < 0:
		return nil, fmt.Errorf("invalid max-steps %d: must be positive", cfg.MaxSteps)
	}

	if _, err := report.ParseMode(cfg.ReportFormat); err != nil {
		return nil, err
	}

	return &cfg, nil
}
