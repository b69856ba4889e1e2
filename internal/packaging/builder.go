// Package packaging assembles harvested data into RO-Crate research
// object packages and archives released versions.
package packaging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/biodata-harvester/internal/domain"
	"github.com/biodata-harvester/internal/provenance"
)

const metadataFileName = "ro-crate-metadata.json"

// encodingFormats maps file extensions to MIME types for File entities.
var encodingFormats = map[string]string{
	".json": "application/json",
	".csv":  "text/csv",
	".tsv":  "text/tab-separated-values",
	".xml":  "application/xml",
	".txt":  "text/plain",
}

// PackageInfo describes the package being built.
type PackageInfo struct {
	Name        string
	Description string
	Version     string
	License     string
	Creator     string
	Keywords    []string
}

// Builder lays out an RO-Crate package directory and writes its metadata.
type Builder struct {
	log    *logrus.Logger
	ledger *provenance.Ledger
}

func NewBuilder(log *logrus.Logger) *Builder {
	return &Builder{log: log, ledger: provenance.NewLedger(log)}
}

// Build creates the package tree under basePath, copies dataFiles into
// data/, and writes ro-crate-metadata.json. Provenance records, when
// present, attach to the root dataset as DataDownload entries.
func (b *Builder) Build(basePath string, info PackageInfo, dataFiles []string, records []domain.Provenance) error {
	for _, dir := range []string{filepath.Join(basePath, "data"), filepath.Join(basePath, "metadata")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating package directory: %w", err)
		}
	}

	copied := make([]string, 0, len(dataFiles))
	for _, src := range dataFiles {
		name := filepath.Base(src)
		if err := copyFile(src, filepath.Join(basePath, "data", name)); err != nil {
			return fmt.Errorf("copying data file %s: %w", name, err)
		}
		copied = append(copied, name)
	}

	metadata := b.buildMetadata(info, copied)
	if len(records) > 0 {
		metadata = b.ledger.EnrichMetadata(metadata, records)
	}

	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding crate metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(basePath, metadataFileName), data, 0o644); err != nil {
		return fmt.Errorf("writing crate metadata: %w", err)
	}

	b.log.WithFields(logrus.Fields{
		"package":    info.Name,
		"version":    info.Version,
		"data_files": len(copied),
	}).Info("Built research object package")
	return nil
}

func (b *Builder) buildMetadata(info PackageInfo, dataFiles []string) map[string]interface{} {
	hasPart := make([]interface{}, 0, len(dataFiles))
	graph := make([]interface{}, 0, len(dataFiles)+2)

	graph = append(graph, map[string]interface{}{
		"@id":        metadataFileName,
		"@type":      "CreativeWork",
		"about":      map[string]interface{}{"@id": "./"},
		"conformsTo": map[string]interface{}{"@id": "https://w3id.org/ro/crate/1.1"},
	})

	root := map[string]interface{}{
		"@id":           "./",
		"@type":         "Dataset",
		"name":          info.Name,
		"description":   info.Description,
		"version":       info.Version,
		"license":       licenseEntity(info.License),
		"creator":       info.Creator,
		"datePublished": time.Now().UTC().Format(time.RFC3339),
		"keywords":      info.Keywords,
	}
	graph = append(graph, root)

	for _, name := range dataFiles {
		id := "data/" + name
		hasPart = append(hasPart, map[string]interface{}{"@id": id})
		graph = append(graph, map[string]interface{}{
			"@id":            id,
			"@type":          "File",
			"name":           name,
			"encodingFormat": EncodingFormat(name),
		})
	}
	root["hasPart"] = hasPart

	return map[string]interface{}{
		"@context": map[string]interface{}{
			"@vocab":   "https://schema.org/",
			"ro-crate": "https://w3id.org/ro/crate#",
		},
		"@graph": graph,
	}
}

func licenseEntity(id string) map[string]interface{} {
	return map[string]interface{}{
		"@id":   fmt.Sprintf("https://spdx.org/licenses/%s.html", id),
		"@type": "CreativeWork",
		"name":  id,
	}
}

// EncodingFormat infers a MIME type from the file extension, defaulting
// to application/octet-stream.
func EncodingFormat(name string) string {
	if format, ok := encodingFormats[filepath.Ext(name)]; ok {
		return format
	}
	return "application/octet-stream"
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
