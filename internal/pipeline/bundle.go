package pipeline

import (
	"io"

	"github.com/biodata-harvester/internal/domain"
	"github.com/biodata-harvester/internal/parser"
)

// Input feeds one pipeline invocation. Raw payloads are parsed by the parse
// stage; pre-parsed outputs (typically returned by ingestion workers) are
// merged into the parsed bundle as-is.
type Input struct {
	Payloads map[domain.SourceName]io.Reader
	Parsed   []*parser.Output
	// OutputDir receives the export stage artifacts.
	OutputDir string
}

// ParsedBundle aggregates the typed records of all sources after the parse
// stage.
type ParsedBundle struct {
	ClinVar []domain.ClinVarRecord
	PubMed  []domain.PubMedRecord
	HPO     []domain.HPOTerm
	UniProt []domain.UniProtRecord
}

// RecordCount returns the number of parsed records across all kinds.
func (b *ParsedBundle) RecordCount() int {
	return len(b.ClinVar) + len(b.PubMed) + len(b.HPO) + len(b.UniProt)
}

func (b *ParsedBundle) absorb(out *parser.Output) {
	b.ClinVar = append(b.ClinVar, out.ClinVar...)
	b.PubMed = append(b.PubMed, out.PubMed...)
	b.HPO = append(b.HPO, out.HPO...)
	b.UniProt = append(b.UniProt, out.UniProt...)
}

// NormalizedBundle carries the canonical entities after the normalization
// stage.
type NormalizedBundle struct {
	Genes        []domain.NormalizedGene
	Variants     []domain.NormalizedVariant
	Phenotypes   []domain.NormalizedPhenotype
	Publications []domain.NormalizedPublication
}

// EntityCount returns the number of canonical entities across all kinds.
func (b *NormalizedBundle) EntityCount() int {
	return len(b.Genes) + len(b.Variants) + len(b.Phenotypes) + len(b.Publications)
}

// MappedBundle carries the relationship links and the cross-reference
// networks after the mapping stage.
type MappedBundle struct {
	GeneVariantLinks      []domain.GeneVariantLink
	VariantPhenotypeLinks []domain.VariantPhenotypeLink
	Networks              map[string][]string
}

// LinkCount returns the number of links across both link kinds.
func (b *MappedBundle) LinkCount() int {
	return len(b.GeneVariantLinks) + len(b.VariantPhenotypeLinks)
}

// ValidationSummary is the outcome of the validation stage.
type ValidationSummary struct {
	Passed int
	Failed int
	Errors []string
}

// ExportReport lists the artifacts written by the export stage.
type ExportReport struct {
	FilesCreated []string
	Errors       []string
}

// Result is the immutable snapshot handed to callers after a pipeline run.
type Result struct {
	Stages     []domain.StageResult
	Parsed     ParsedBundle
	Normalized NormalizedBundle
	Mapped     MappedBundle
	Validation ValidationSummary
	Export     ExportReport
	// Errors aggregates every stage's errors for reporting.
	Errors  []string
	Metrics MetricsSnapshot
}
