package packaging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Report is the outcome of validating one aspect of a crate.
type Report struct {
	Valid    bool     `json:"valid"`
	Issues   []string `json:"issues"`
	Warnings []string `json:"warnings"`
}

func newReport() *Report {
	return &Report{Valid: true, Issues: []string{}, Warnings: []string{}}
}

func (r *Report) issue(format string, args ...interface{}) {
	r.Valid = false
	r.Issues = append(r.Issues, fmt.Sprintf(format, args...))
}

func (r *Report) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// FAIRReport summarizes a crate against the four FAIR facets.
type FAIRReport struct {
	Valid         bool    `json:"valid"`
	Findable      *Report `json:"findable"`
	Accessible    *Report `json:"accessible"`
	Interoperable *Report `json:"interoperable"`
	Reusable      *Report `json:"reusable"`
}

// Validate checks the structural shape of an on-disk crate: the metadata
// file exists and parses, carries @context and @graph, and the graph holds
// a root dataset. A missing data/ directory is only a warning.
func (b *Builder) Validate(basePath string) *Report {
	report := newReport()

	metadata, ok := b.readMetadata(basePath, report)
	if !ok {
		return report
	}
	if _, ok := metadata["@context"]; !ok {
		report.issue("metadata is missing @context")
	}
	graph, ok := metadata["@graph"].([]interface{})
	if !ok {
		report.issue("metadata is missing @graph")
		return report
	}
	if rootDataset(graph) == nil {
		report.issue("no root dataset entity with @id \"./\"")
	}

	if info, err := os.Stat(filepath.Join(basePath, "data")); err != nil || !info.IsDir() {
		report.warn("package has no data directory")
	}
	return report
}

// validateMetadata checks the descriptive completeness of the root
// dataset: name, description, version, and license.
func (b *Builder) validateMetadata(basePath string) *Report {
	report := newReport()

	metadata, ok := b.readMetadata(basePath, report)
	if !ok {
		return report
	}
	graph, ok := metadata["@graph"].([]interface{})
	if !ok {
		report.issue("metadata is missing @graph")
		return report
	}
	root := rootDataset(graph)
	if root == nil {
		report.issue("no root dataset entity with @id \"./\"")
		return report
	}

	for _, field := range []string{"name", "description", "version"} {
		if value, _ := root[field].(string); value == "" {
			report.issue("root dataset is missing %s", field)
		}
	}
	if _, ok := root["license"]; !ok {
		report.issue("root dataset is missing license")
	}
	return report
}

// FAIRSummary reports the crate against the FAIR facets: the structural
// report covers findability; the metadata report covers the rest.
func (b *Builder) FAIRSummary(basePath string) *FAIRReport {
	structural := b.Validate(basePath)
	descriptive := b.validateMetadata(basePath)

	return &FAIRReport{
		Valid:         structural.Valid && descriptive.Valid,
		Findable:      structural,
		Accessible:    descriptive,
		Interoperable: descriptive,
		Reusable:      descriptive,
	}
}

func (b *Builder) readMetadata(basePath string, report *Report) (map[string]interface{}, bool) {
	path := filepath.Join(basePath, metadataFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		report.issue("metadata file not readable: %v", err)
		return nil, false
	}
	var metadata map[string]interface{}
	if err := json.Unmarshal(data, &metadata); err != nil {
		report.issue("metadata is not valid JSON: %v", err)
		return nil, false
	}
	return metadata, true
}

func rootDataset(graph []interface{}) map[string]interface{} {
	for _, raw := range graph {
		entity, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if entity["@id"] == "./" && entity["@type"] == "Dataset" {
			return entity
		}
	}
	return nil
}
