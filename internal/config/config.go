package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Reference ReferenceConfig `yaml:"reference" mapstructure:"reference"`
	Scorer    ScorerConfig    `yaml:"scorer" mapstructure:"scorer"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	MaxConns    int    `yaml:"max_conns" mapstructure:"max_conns"`
}

// PipelineConfig configures the batch classification and propagation passes.
type PipelineConfig struct {
	PageSize        int           `yaml:"page_size" mapstructure:"page_size"`
	Workers         int           `yaml:"workers" mapstructure:"workers"`
	MaxWritesPerSec float64       `yaml:"max_writes_per_sec" mapstructure:"max_writes_per_sec"`
	Retry           RetryConfig   `yaml:"retry" mapstructure:"retry"`
	Breaker         BreakerConfig `yaml:"breaker" mapstructure:"breaker"`
}

// RetryConfig configures retries of page writes.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// BreakerConfig configures the circuit breaker around page writes.
type BreakerConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// ReferenceConfig points at an optional reference-table override file.
type ReferenceConfig struct {
	OverridesPath string `yaml:"overrides_path" mapstructure:"overrides_path"`
}

// ScorerConfig holds the lead-score constants. Empty lists and nil scalars
// fall back to the scorer package defaults; an explicit 0 is kept.
type ScorerConfig struct {
	StatusScores       []StatusScore `yaml:"status_scores" mapstructure:"status_scores"`
	DefaultStatusScore *int          `yaml:"default_status_score" mapstructure:"default_status_score"`
	CostBrackets       []Bracket     `yaml:"cost_brackets" mapstructure:"cost_brackets"`
	FreshnessBrackets  []Bracket     `yaml:"freshness_brackets" mapstructure:"freshness_brackets"`
	StalenessBrackets  []Bracket     `yaml:"staleness_brackets" mapstructure:"staleness_brackets"`
	ActivePhaseBonus   *int          `yaml:"active_phase_bonus" mapstructure:"active_phase_bonus"`
	ConfidenceScale    *float64      `yaml:"confidence_scale" mapstructure:"confidence_scale"`
	RevocationPenalty  *int          `yaml:"revocation_penalty" mapstructure:"revocation_penalty"`
	RevocationKeywords []string      `yaml:"revocation_keywords" mapstructure:"revocation_keywords"`
}

// StatusScore is the base score for statuses containing any of Contains.
type StatusScore struct {
	Contains []string `yaml:"contains" mapstructure:"contains"`
	Score    int      `yaml:"score" mapstructure:"score"`
}

// Bracket awards Points when a value crosses Threshold. Cost brackets use
// value >= Threshold, freshness value <= Threshold, staleness value > Threshold.
type Bracket struct {
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
	Points    int     `yaml:"points" mapstructure:"points"`
}

// ExportConfig configures lead export.
type ExportConfig struct {
	Format   string `yaml:"format" mapstructure:"format"`
	MinScore int    `yaml:"min_score" mapstructure:"min_score"`
	Limit    int    `yaml:"limit" mapstructure:"limit"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PERMITS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.sqlite_path", "permits.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("pipeline.page_size", 500)
	v.SetDefault("pipeline.workers", 8)
	v.SetDefault("pipeline.max_writes_per_sec", 20)
	v.SetDefault("pipeline.retry.max_attempts", 3)
	v.SetDefault("pipeline.retry.initial_backoff_ms", 200)
	v.SetDefault("pipeline.retry.max_backoff_ms", 5000)
	v.SetDefault("pipeline.breaker.failure_threshold", 5)
	v.SetDefault("pipeline.breaker.reset_timeout_secs", 30)
	v.SetDefault("reference.overrides_path", "")
	v.SetDefault("export.format", "csv")
	v.SetDefault("export.min_score", 0)
	v.SetDefault("export.limit", 10000)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
