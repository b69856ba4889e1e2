package domain

import (
	"strconv"
	"time"
)

// Config represents the main application configuration.
type Config struct {
	Sources     SourcesConfig     `mapstructure:"sources"`
	Coordinator CoordinatorConfig `mapstructure:"coordinator"`
	Pipeline    PipelineConfig    `mapstructure:"pipeline"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Packaging   PackagingConfig   `mapstructure:"packaging"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// SourcesConfig groups the per-upstream client configurations.
type SourcesConfig struct {
	ClinVar SourceConfig `mapstructure:"clinvar"`
	PubMed  SourceConfig `mapstructure:"pubmed"`
	HPO     SourceConfig `mapstructure:"hpo"`
	UniProt SourceConfig `mapstructure:"uniprot"`
}

// SourceConfig represents one upstream source client configuration.
type SourceConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	License    string        `mapstructure:"license"`
	LicenseURL string        `mapstructure:"license_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RateLimit  int           `mapstructure:"rate_limit"`
	RetryCount int           `mapstructure:"retry_count"`
	BatchSize  int           `mapstructure:"batch_size"`
}

// Snapshot flattens the source configuration for embedding in a job record.
// Secrets are excluded.
func (s SourceConfig) Snapshot() map[string]string {
	return map[string]string{
		"base_url":    s.BaseURL,
		"license":     s.License,
		"timeout":     s.Timeout.String(),
		"rate_limit":  strconv.Itoa(s.RateLimit),
		"retry_count": strconv.Itoa(s.RetryCount),
		"batch_size":  strconv.Itoa(s.BatchSize),
	}
}

// CoordinatorConfig represents ingestion coordinator configuration.
type CoordinatorConfig struct {
	MaxConcurrentWorkers int           `mapstructure:"max_concurrent_workers"`
	Parallel             bool          `mapstructure:"parallel"`
	WorkerTimeout        time.Duration `mapstructure:"worker_timeout"`
}

// PipelineConfig represents ETL pipeline configuration.
type PipelineConfig struct {
	Mode      PipelineMode `mapstructure:"mode"`
	OutputDir string       `mapstructure:"output_dir"`
}

// StorageConfig represents job store configuration.
type StorageConfig struct {
	Backend         string        `mapstructure:"backend"` // "sqlite" or "postgres"
	SQLitePath      string        `mapstructure:"sqlite_path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// PackagingConfig represents research-object packaging configuration.
type PackagingConfig struct {
	StorageBase    string `mapstructure:"storage_base"`
	PackageLicense string `mapstructure:"package_license"`
	Creator        string `mapstructure:"creator"`
}

// CacheConfig represents the Redis response cache configuration.
type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	RedisURL    string        `mapstructure:"redis_url"`
	DefaultTTL  time.Duration `mapstructure:"default_ttl"`
	MaxRetries  int           `mapstructure:"max_retries"`
	PoolSize    int           `mapstructure:"pool_size"`
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
	Output string `mapstructure:"output"`
}
