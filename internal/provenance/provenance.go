// Package provenance serializes acquisition lineage into JSON-LD
// DataDownload entities and attaches them to package metadata.
package provenance

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/biodata-harvester/internal/domain"
)

// Ledger turns Provenance records into schema.org DataDownload entities.
type Ledger struct {
	log *logrus.Logger
}

func NewLedger(log *logrus.Logger) *Ledger {
	return &Ledger{log: log}
}

// Serialize renders one provenance record as a DataDownload entity.
// AcquiredAt drives datePublished; when unset, the current time is used.
func (l *Ledger) Serialize(p domain.Provenance) map[string]interface{} {
	published := p.AcquiredAt
	if published.IsZero() {
		published = time.Now().UTC()
	}

	entity := map[string]interface{}{
		"@type":         "DataDownload",
		"name":          p.Source,
		"datePublished": published.UTC().Format(time.RFC3339),
	}
	if p.SourceURL != "" {
		entity["url"] = p.SourceURL
	}
	if p.SourceVersion != "" {
		entity["version"] = p.SourceVersion
	}
	if len(p.ProcessingSteps) > 0 {
		entity["processingSteps"] = p.ProcessingSteps
	}
	if p.QualityScore != nil {
		entity["qualityScore"] = *p.QualityScore
	}
	if p.ValidationStatus != "" {
		entity["validationStatus"] = string(p.ValidationStatus)
	}
	return entity
}

// EnrichMetadata appends every serialized record to the hasPart list of the
// root dataset (the "@id": "./" entity) inside metadata's @graph. Metadata
// without an @graph is returned unchanged.
func (l *Ledger) EnrichMetadata(metadata map[string]interface{}, records []domain.Provenance) map[string]interface{} {
	graph, ok := metadata["@graph"].([]interface{})
	if !ok {
		l.log.Debug("Metadata has no @graph, skipping provenance enrichment")
		return metadata
	}

	for _, raw := range graph {
		entity, ok := raw.(map[string]interface{})
		if !ok || entity["@id"] != "./" {
			continue
		}
		hasPart, _ := entity["hasPart"].([]interface{})
		for _, record := range records {
			hasPart = append(hasPart, l.Serialize(record))
		}
		entity["hasPart"] = hasPart
		break
	}
	return metadata
}

// WriteFile emits a standalone provenance document of the form
// {"sources": [...]} at outputPath, creating parent directories.
func (l *Ledger) WriteFile(records []domain.Provenance, outputPath string) error {
	sources := make([]map[string]interface{}, 0, len(records))
	for _, record := range records {
		sources = append(sources, l.Serialize(record))
	}

	document := map[string]interface{}{"sources": sources}
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding provenance document: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("creating provenance directory: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("writing provenance file: %w", err)
	}

	l.log.WithFields(logrus.Fields{
		"path":    outputPath,
		"sources": len(sources),
	}).Info("Wrote provenance ledger")
	return nil
}
