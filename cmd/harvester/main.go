package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/biodata-harvester/internal/config"
	"github.com/biodata-harvester/internal/coordinator"
	"github.com/biodata-harvester/internal/domain"
	"github.com/biodata-harvester/internal/license"
	"github.com/biodata-harvester/internal/packaging"
	"github.com/biodata-harvester/internal/parser"
	"github.com/biodata-harvester/internal/pipeline"
	"github.com/biodata-harvester/internal/provenance"
	"github.com/biodata-harvester/internal/repository"
	"github.com/biodata-harvester/pkg/sources"
)

func main() {
	gene := flag.String("gene", "", "gene symbol to harvest (required)")
	version := flag.String("version", "1.0.0", "package version")
	outputDir := flag.String("output", "", "output directory (overrides configuration)")
	flag.Parse()

	if *gene == "" {
		fmt.Fprintln(os.Stderr, "usage: harvester -gene <symbol> [-version <v>] [-output <dir>]")
		os.Exit(2)
	}

	configManager, err := config.NewManager()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := configManager.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration validation failed: %v\n", err)
		os.Exit(1)
	}
	cfg := configManager.GetConfig()
	if *outputDir != "" {
		cfg.Pipeline.OutputDir = *outputDir
	}

	log := newLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Shutdown signal received, cancelling harvest")
		cancel()
	}()

	if err := run(ctx, log, configManager, *gene, *version); err != nil {
		log.WithError(err).Fatal("Harvest failed")
	}
	log.Info("Harvest completed")
}

func run(ctx context.Context, log *logrus.Logger, configManager *config.Manager, gene, version string) error {
	cfg := configManager.GetConfig()

	store, err := newStore(configManager)
	if err != nil {
		return fmt.Errorf("opening job store: %w", err)
	}
	defer store.Close()

	registry := parser.NewRegistry(log)

	var cache *sources.Cache
	if cfg.Cache.Enabled {
		cache, err = sources.NewCache(cfg.Cache)
		if err != nil {
			return fmt.Errorf("connecting response cache: %w", err)
		}
		defer cache.Close()
	}

	// Parsed outputs from concurrent workers feed one pipeline run.
	var mu sync.Mutex
	var parsed []*parser.Output
	sink := func(out *parser.Output) {
		mu.Lock()
		defer mu.Unlock()
		parsed = append(parsed, out)
	}

	fetchers := map[domain.SourceName]sources.Fetcher{
		domain.SourceClinVar: sources.NewClinVarClient(cfg.Sources.ClinVar),
		domain.SourceUniProt: sources.NewUniProtClient(cfg.Sources.UniProt),
		domain.SourceHPO:     sources.NewHPOClient(cfg.Sources.HPO),
		domain.SourcePubMed:  sources.NewPubMedClient(cfg.Sources.PubMed),
	}

	tasks := make([]coordinator.IngestionTask, 0, len(fetchers))
	for i, source := range domain.BuiltinSources() {
		resilient := sources.NewResilientClient(log, fetchers[source], cache)
		worker := sources.NewWorker(log, resilient, registry, sources.WithSink(sink))
		tasks = append(tasks, coordinator.IngestionTask{
			Source:     source,
			Factory:    coordinator.NewStaticFactory(worker),
			Parameters: map[string]string{"gene_symbol": gene},
			Priority:   i,
		})
	}

	coordOpts := []coordinator.Option{coordinator.WithMaxWorkers(cfg.Coordinator.MaxConcurrentWorkers)}
	if !cfg.Coordinator.Parallel {
		coordOpts = append(coordOpts, coordinator.WithSequential())
	}
	coord := coordinator.NewCoordinator(log, coordOpts...)

	globalParams := map[string]string{}
	if cfg.Coordinator.WorkerTimeout > 0 {
		globalParams["timeout"] = cfg.Coordinator.WorkerTimeout.String()
	}
	result, err := coord.Coordinate(ctx, tasks, globalParams)
	if err != nil {
		return fmt.Errorf("coordinating ingestion: %w", err)
	}
	recordJobs(ctx, log, store, cfg, result)

	summary := coord.Summarize(result)
	log.WithFields(logrus.Fields{
		"completed":    summary.CompletedSources,
		"failed":       summary.FailedSources,
		"records":      summary.TotalRecords,
		"success_rate": summary.SuccessRate,
	}).Info("Ingestion finished")

	packagePath := filepath.Join(cfg.Pipeline.OutputDir, fmt.Sprintf("%s-harvest", gene))
	stagingDir := filepath.Join(cfg.Pipeline.OutputDir, "normalized")

	pipe, err := pipeline.New(log, registry, pipeline.WithMode(cfg.Pipeline.Mode))
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}
	pipelineResult, err := pipe.Run(ctx, pipeline.Input{Parsed: parsed, OutputDir: stagingDir})
	if err != nil {
		return fmt.Errorf("running pipeline: %w", err)
	}
	log.WithFields(logrus.Fields{
		"files":  len(pipelineResult.Export.FilesCreated),
		"errors": len(pipelineResult.Errors),
	}).Info("Pipeline finished")

	return publish(log, cfg, gene, version, packagePath, result, pipelineResult)
}

// publish assembles the research object package: license manifest,
// provenance ledger, RO-Crate metadata, and the versioned archive.
func publish(log *logrus.Logger, cfg *domain.Config, gene, version, packagePath string, coordResult *domain.CoordinatorResult, pipelineResult *pipeline.Result) error {
	validator := license.NewValidator(log, cfg.Packaging.PackageLicense)
	manifest, err := validator.GenerateManifest(sourceLicenses(cfg), filepath.Join(packagePath, "license-manifest.yml"))
	if err != nil {
		return fmt.Errorf("generating license manifest: %w", err)
	}
	if manifest.Compliance.Status != "compliant" {
		log.WithField("issues", manifest.Compliance.Issues).
			Warn("Package license compliance has issues")
	}

	var records []domain.Provenance
	for _, source := range domain.BuiltinSources() {
		if outcome, ok := coordResult.SourceResults[string(source)]; ok {
			records = append(records, outcome.Provenance)
		}
	}
	ledger := provenance.NewLedger(log)
	if err := ledger.WriteFile(records, filepath.Join(packagePath, "provenance.json")); err != nil {
		return fmt.Errorf("writing provenance ledger: %w", err)
	}

	builder := packaging.NewBuilder(log)
	info := packaging.PackageInfo{
		Name:        fmt.Sprintf("%s-harvest", gene),
		Description: fmt.Sprintf("Harvested variant, phenotype, and literature data for %s", gene),
		Version:     version,
		License:     validator.PackageLicense(),
		Creator:     cfg.Packaging.Creator,
		Keywords:    []string{"genomics", "variants", "phenotypes", gene},
	}
	if err := builder.Build(packagePath, info, pipelineResult.Export.FilesCreated, records); err != nil {
		return fmt.Errorf("building package: %w", err)
	}

	if report := builder.Validate(packagePath); !report.Valid {
		return fmt.Errorf("package validation failed: %v", report.Issues)
	}

	archiver := packaging.NewArchiver(log, cfg.Packaging.StorageBase)
	if _, err := archiver.ArchivePackage(packagePath, version, info.Name); err != nil {
		return fmt.Errorf("archiving package: %w", err)
	}
	zipPath, err := archiver.CreateZipArchive(packagePath, version, info.Name)
	if err != nil {
		return fmt.Errorf("creating zip archive: %w", err)
	}
	log.WithField("archive", zipPath).Info("Published package")
	return nil
}

// recordJobs persists one ingestion job per source outcome. Persistence
// failures are logged, not fatal; the harvest itself already succeeded.
func recordJobs(ctx context.Context, log *logrus.Logger, store repository.JobStore, cfg *domain.Config, result *domain.CoordinatorResult) {
	snapshots := map[string]domain.SourceConfig{
		"clinvar": cfg.Sources.ClinVar,
		"pubmed":  cfg.Sources.PubMed,
		"hpo":     cfg.Sources.HPO,
		"uniprot": cfg.Sources.UniProt,
	}

	for source, outcome := range result.SourceResults {
		job := domain.NewIngestionJob(source, domain.TriggerManual, "harvester-cli")
		if sourceCfg, ok := snapshots[source]; ok {
			job.SourceConfigSnapshot = sourceCfg.Snapshot()
		}
		job.Provenance = outcome.Provenance

		job, err := job.Start()
		if err == nil {
			if outcome.Status == domain.JobCompleted {
				job, err = job.Complete(outcome.Metrics)
			} else {
				failure := domain.NewIngestionError(domain.ErrorUnknown, "ingestion failed")
				if len(outcome.Errors) > 0 {
					failure = outcome.Errors[0]
					for _, extra := range outcome.Errors[1:] {
						job = job.AddError(extra)
					}
				}
				job, err = job.Fail(failure)
			}
		}
		if err != nil {
			log.WithError(err).WithField("source", source).Warn("Failed to finalize job record")
			continue
		}
		if err := store.Save(ctx, job); err != nil {
			log.WithError(err).WithField("source", source).Warn("Failed to persist job record")
		}
	}
}

func sourceLicenses(cfg *domain.Config) []license.SourceLicense {
	return []license.SourceLicense{
		{Source: "clinvar", License: cfg.Sources.ClinVar.License, LicenseURL: cfg.Sources.ClinVar.LicenseURL},
		{Source: "uniprot", License: cfg.Sources.UniProt.License, LicenseURL: cfg.Sources.UniProt.LicenseURL},
		{Source: "hpo", License: cfg.Sources.HPO.License, LicenseURL: cfg.Sources.HPO.LicenseURL},
		{Source: "pubmed", License: cfg.Sources.PubMed.License, LicenseURL: cfg.Sources.PubMed.LicenseURL},
	}
}

func newStore(configManager *config.Manager) (repository.JobStore, error) {
	cfg := configManager.GetConfig()
	switch cfg.Storage.Backend {
	case "postgres":
		return repository.NewPostgresStoreFromURL(configManager.PostgresURL())
	default:
		return repository.NewSQLiteStore(cfg.Storage.SQLitePath)
	}
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	switch cfg.Output {
	case "", "stdout":
		log.SetOutput(os.Stdout)
	case "stderr":
		log.SetOutput(os.Stderr)
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.SetOutput(os.Stdout)
			log.WithError(err).Warn("Failed to open log file, falling back to stdout")
		} else {
			log.SetOutput(file)
		}
	}
	return log
}
