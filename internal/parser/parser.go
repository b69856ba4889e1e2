// Package parser converts raw upstream payloads (XML, JSON, line records)
// into typed source records. Parsers are pure with respect to I/O: they read
// from a supplied reader and never fetch anything themselves.
package parser

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/biodata-harvester/internal/domain"
)

// Parser converts one source's raw payload into typed records.
type Parser interface {
	// Source identifies the upstream this parser understands.
	Source() domain.SourceName
	// Parse consumes the payload and returns the typed records. Malformed
	// individual records are skipped and reported as issues; Parse returns
	// an error only when the payload as a whole is unreadable.
	Parse(r io.Reader) (*Output, error)
}

// Output carries the typed records produced by a parse run. Only the slice
// matching the parser's source is populated.
type Output struct {
	Source  domain.SourceName
	ClinVar []domain.ClinVarRecord
	PubMed  []domain.PubMedRecord
	HPO     []domain.HPOTerm
	UniProt []domain.UniProtRecord
	// Issues records per-record validation findings; a record with issues
	// was still parsed unless it also appears in SkippedRecords.
	Issues         []string
	SkippedRecords int
	BytesRead      int64
}

// RecordCount returns the number of records parsed, across all kinds.
func (o *Output) RecordCount() int {
	return len(o.ClinVar) + len(o.PubMed) + len(o.HPO) + len(o.UniProt)
}

// Merge appends another output's records and issues into this one.
func (o *Output) Merge(other *Output) {
	if other == nil {
		return
	}
	o.ClinVar = append(o.ClinVar, other.ClinVar...)
	o.PubMed = append(o.PubMed, other.PubMed...)
	o.HPO = append(o.HPO, other.HPO...)
	o.UniProt = append(o.UniProt, other.UniProt...)
	o.Issues = append(o.Issues, other.Issues...)
	o.SkippedRecords += other.SkippedRecords
	o.BytesRead += other.BytesRead
}

// countingReader tracks how many payload bytes a parse run consumed.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Registry maps source names to their parsers.
type Registry struct {
	parsers map[domain.SourceName]Parser
}

// NewRegistry creates a registry pre-populated with the built-in parsers.
func NewRegistry(logger *logrus.Logger) *Registry {
	r := &Registry{parsers: map[domain.SourceName]Parser{}}
	r.Register(NewClinVarParser(logger))
	r.Register(NewPubMedParser(logger))
	r.Register(NewHPOParser(logger))
	r.Register(NewUniProtParser(logger))
	return r
}

// NewEmptyRegistry creates a registry with no parsers registered.
func NewEmptyRegistry() *Registry {
	return &Registry{parsers: map[domain.SourceName]Parser{}}
}

// Register adds or replaces the parser for its source.
func (r *Registry) Register(p Parser) {
	r.parsers[p.Source()] = p
}

// Lookup returns the parser for a source, or false when none is registered.
func (r *Registry) Lookup(source domain.SourceName) (Parser, bool) {
	p, ok := r.parsers[source]
	return p, ok
}

// Sources returns the registered source names.
func (r *Registry) Sources() []domain.SourceName {
	out := make([]domain.SourceName, 0, len(r.parsers))
	for name := range r.parsers {
		out = append(out, name)
	}
	return out
}
