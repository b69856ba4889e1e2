// Package config loads and validates the harvester configuration from
// files, environment variables, and defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/biodata-harvester/internal/domain"
)

// Manager loads the configuration via Viper.
type Manager struct {
	v      *viper.Viper
	config *domain.Config
}

// NewManager loads configuration from config.yaml (searched in ., ./config,
// /etc/biodata-harvester), BIOHARVEST_* environment variables, and defaults.
func NewManager() (*Manager, error) {
	m := &Manager{v: viper.New()}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

func (m *Manager) loadConfig() error {
	m.v.SetConfigName("config")
	m.v.SetConfigType("yaml")
	m.v.AddConfigPath(".")
	m.v.AddConfigPath("./config")
	m.v.AddConfigPath("/etc/biodata-harvester/")

	m.v.SetEnvPrefix("BIOHARVEST")
	m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.v.AutomaticEnv()

	m.setDefaults()

	// The config file is optional; defaults and env vars suffice.
	if err := m.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := m.v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}
	m.config = config
	return nil
}

func (m *Manager) setDefaults() {
	// Source defaults
	m.v.SetDefault("sources.clinvar.base_url", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils")
	m.v.SetDefault("sources.clinvar.license", "CC0-1.0")
	m.v.SetDefault("sources.clinvar.timeout", "30s")
	m.v.SetDefault("sources.clinvar.rate_limit", 3)
	m.v.SetDefault("sources.clinvar.retry_count", 3)
	m.v.SetDefault("sources.clinvar.batch_size", 100)

	m.v.SetDefault("sources.pubmed.base_url", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils")
	m.v.SetDefault("sources.pubmed.license", "CC0-1.0")
	m.v.SetDefault("sources.pubmed.timeout", "30s")
	m.v.SetDefault("sources.pubmed.rate_limit", 3)
	m.v.SetDefault("sources.pubmed.retry_count", 3)
	m.v.SetDefault("sources.pubmed.batch_size", 50)

	m.v.SetDefault("sources.hpo.base_url", "https://purl.obolibrary.org/obo/hp")
	m.v.SetDefault("sources.hpo.license", "CC-BY-4.0")
	m.v.SetDefault("sources.hpo.timeout", "60s")
	m.v.SetDefault("sources.hpo.rate_limit", 5)
	m.v.SetDefault("sources.hpo.retry_count", 3)

	m.v.SetDefault("sources.uniprot.base_url", "https://rest.uniprot.org")
	m.v.SetDefault("sources.uniprot.license", "CC-BY-4.0")
	m.v.SetDefault("sources.uniprot.timeout", "30s")
	m.v.SetDefault("sources.uniprot.rate_limit", 5)
	m.v.SetDefault("sources.uniprot.retry_count", 3)

	// Coordinator defaults
	m.v.SetDefault("coordinator.max_concurrent_workers", 4)
	m.v.SetDefault("coordinator.parallel", true)
	m.v.SetDefault("coordinator.worker_timeout", "5m")

	// Pipeline defaults
	m.v.SetDefault("pipeline.mode", "sequential")
	m.v.SetDefault("pipeline.output_dir", "./output")

	// Storage defaults
	m.v.SetDefault("storage.backend", "sqlite")
	m.v.SetDefault("storage.sqlite_path", "./data/jobs.db")
	m.v.SetDefault("storage.host", "localhost")
	m.v.SetDefault("storage.port", 5432)
	m.v.SetDefault("storage.database", "bioharvest")
	m.v.SetDefault("storage.username", "postgres")
	m.v.SetDefault("storage.password", "")
	m.v.SetDefault("storage.ssl_mode", "disable")
	m.v.SetDefault("storage.max_open_conns", 25)
	m.v.SetDefault("storage.max_idle_conns", 5)
	m.v.SetDefault("storage.conn_max_lifetime", "5m")

	// Packaging defaults
	m.v.SetDefault("packaging.storage_base", "./archive")
	m.v.SetDefault("packaging.package_license", "CC-BY-4.0")
	m.v.SetDefault("packaging.creator", "biodata-harvester")

	// Cache defaults
	m.v.SetDefault("cache.enabled", false)
	m.v.SetDefault("cache.redis_url", "redis://localhost:6379")
	m.v.SetDefault("cache.default_ttl", "24h")
	m.v.SetDefault("cache.max_retries", 3)
	m.v.SetDefault("cache.pool_size", 10)
	m.v.SetDefault("cache.pool_timeout", "4s")

	// Logging defaults
	m.v.SetDefault("logging.level", "info")
	m.v.SetDefault("logging.format", "json")
	m.v.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration.
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// Reload reloads the configuration from its sources.
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate checks the loaded configuration for inconsistencies.
func (m *Manager) Validate() error {
	config := m.config

	for name, source := range map[string]domain.SourceConfig{
		"clinvar": config.Sources.ClinVar,
		"pubmed":  config.Sources.PubMed,
		"hpo":     config.Sources.HPO,
		"uniprot": config.Sources.UniProt,
	} {
		if source.BaseURL == "" {
			return fmt.Errorf("%s base URL is required", name)
		}
	}

	if config.Coordinator.MaxConcurrentWorkers < 1 {
		return fmt.Errorf("invalid max_concurrent_workers: %d", config.Coordinator.MaxConcurrentWorkers)
	}

	switch config.Storage.Backend {
	case "sqlite":
		if config.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case "postgres":
		if config.Storage.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
		if config.Storage.Database == "" {
			return fmt.Errorf("postgres database name is required")
		}
		if config.Storage.Username == "" {
			return fmt.Errorf("postgres username is required")
		}
	default:
		return fmt.Errorf("unknown storage backend: %s", config.Storage.Backend)
	}

	switch config.Pipeline.Mode {
	case domain.ModeSequential, domain.ModeParallel, domain.ModeIncremental:
	default:
		return fmt.Errorf("unknown pipeline mode: %s", config.Pipeline.Mode)
	}

	if config.Cache.Enabled && config.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when the cache is enabled")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}
	return nil
}

// PostgresURL returns the connection URL for the postgres backend.
func (m *Manager) PostgresURL() string {
	s := m.config.Storage
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		s.Username, s.Password, s.Host, s.Port, s.Database, s.SSLMode)
}
