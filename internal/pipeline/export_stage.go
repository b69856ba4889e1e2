package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/biodata-harvester/internal/domain"
)

// exportedEntity is the flat export shape shared by all entity kinds.
type exportedEntity struct {
	PrimaryID       string  `json:"primary_id"`
	DisplayName     string  `json:"display_name"`
	Source          string  `json:"source"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// runExport writes one JSON file per non-empty entity collection plus the
// mapping counts. The first I/O failure stops the stage and marks it
// FAILED; artifacts written before the failure stay on disk.
func (p *Pipeline) runExport(_ context.Context, input Input, result *Result) domain.StageResult {
	started := time.Now()
	report := ExportReport{}

	failStage := func(err error) domain.StageResult {
		report.Errors = append(report.Errors, err.Error())
		result.Export = report
		return newStageResult(domain.StageExport, domain.StageFailed, len(report.FilesCreated), 1, nil, report.Errors, started)
	}

	if err := os.MkdirAll(input.OutputDir, 0o755); err != nil {
		return failStage(fmt.Errorf("creating output directory: %w", err))
	}

	write := func(kind string, entities []exportedEntity) error {
		if len(entities) == 0 {
			return nil
		}
		path := filepath.Join(input.OutputDir, kind+"_normalized.json")
		data, err := json.MarshalIndent(entities, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding %s export: %w", kind, err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s export: %w", kind, err)
		}
		report.FilesCreated = append(report.FilesCreated, path)
		return nil
	}

	genes := make([]exportedEntity, 0, len(result.Normalized.Genes))
	for _, g := range result.Normalized.Genes {
		genes = append(genes, exportedEntity{g.PrimaryID, g.DisplayName(), g.Source, g.Confidence})
	}
	variants := make([]exportedEntity, 0, len(result.Normalized.Variants))
	for _, v := range result.Normalized.Variants {
		variants = append(variants, exportedEntity{v.PrimaryID, v.DisplayName(), v.Source, v.Confidence})
	}
	phenotypes := make([]exportedEntity, 0, len(result.Normalized.Phenotypes))
	for _, ph := range result.Normalized.Phenotypes {
		phenotypes = append(phenotypes, exportedEntity{ph.PrimaryID, ph.DisplayName(), ph.Source, ph.Confidence})
	}
	publications := make([]exportedEntity, 0, len(result.Normalized.Publications))
	for _, pub := range result.Normalized.Publications {
		publications = append(publications, exportedEntity{pub.PrimaryID, pub.DisplayName(), pub.Source, pub.Confidence})
	}

	for _, batch := range []struct {
		kind     string
		entities []exportedEntity
	}{
		{"genes", genes},
		{"variants", variants},
		{"phenotypes", phenotypes},
		{"publications", publications},
	} {
		if err := write(batch.kind, batch.entities); err != nil {
			return failStage(err)
		}
	}

	mappings := map[string]int{
		"gene_variant_count":      len(result.Mapped.GeneVariantLinks),
		"variant_phenotype_count": len(result.Mapped.VariantPhenotypeLinks),
		"networks_count":          len(result.Mapped.Networks),
	}
	mappingPath := filepath.Join(input.OutputDir, "entity_mappings.json")
	data, err := json.MarshalIndent(mappings, "", "  ")
	if err != nil {
		return failStage(fmt.Errorf("encoding entity mappings: %w", err))
	}
	if err := os.WriteFile(mappingPath, data, 0o644); err != nil {
		return failStage(fmt.Errorf("writing entity mappings: %w", err))
	}
	report.FilesCreated = append(report.FilesCreated, mappingPath)

	result.Export = report
	snapshot := map[string]int{"files_created": len(report.FilesCreated)}
	return newStageResult(domain.StageExport, domain.StageCompleted, len(report.FilesCreated), 0, snapshot, nil, started)
}
