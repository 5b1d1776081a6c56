package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Command modes accepted by Validate.
const (
	ModeMigrate   = "migrate"
	ModeClassify  = "classify"
	ModePropagate = "propagate"
	ModeExport    = "export"
	ModeExplain   = "explain"
	ModeImport    = "import"
	ModeRuns      = "runs"
)

const maxWorkers = 64

// Validate checks the settings a command mode needs.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case ModeMigrate, ModeClassify, ModePropagate, ModeExport, ModeImport, ModeRuns:
		errs = append(errs, c.validateStore()...)
	case ModeExplain:
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch mode {
	case ModeClassify, ModePropagate:
		errs = append(errs, c.validatePipeline()...)
	case ModeExport:
		if c.Export.Format != "csv" && c.Export.Format != "xlsx" {
			errs = append(errs, fmt.Sprintf("export.format must be csv or xlsx, got %q", c.Export.Format))
		}
		if c.Export.Limit < 0 {
			errs = append(errs, "export.limit must be >= 0")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateStore() []string {
	var errs []string
	switch c.Store.Driver {
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	case "sqlite":
		if c.Store.SQLitePath == "" {
			errs = append(errs, "store.sqlite_path is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be postgres or sqlite, got %q", c.Store.Driver))
	}
	return errs
}

func (c *Config) validatePipeline() []string {
	var errs []string
	p := c.Pipeline
	if p.PageSize < 1 {
		errs = append(errs, "pipeline.page_size must be >= 1")
	}
	if p.Workers < 1 || p.Workers > maxWorkers {
		errs = append(errs, fmt.Sprintf("pipeline.workers must be between 1 and %d", maxWorkers))
	}
	if p.MaxWritesPerSec < 0 {
		errs = append(errs, "pipeline.max_writes_per_sec must be >= 0")
	}
	if p.Retry.MaxAttempts < 1 {
		errs = append(errs, "pipeline.retry.max_attempts must be >= 1")
	}
	if p.Retry.InitialBackoffMs < 0 || p.Retry.MaxBackoffMs < p.Retry.InitialBackoffMs {
		errs = append(errs, "pipeline.retry backoff must satisfy 0 <= initial_backoff_ms <= max_backoff_ms")
	}
	return errs
}
