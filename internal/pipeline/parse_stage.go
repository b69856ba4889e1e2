package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/biodata-harvester/internal/domain"
)

// runParse turns raw payloads into the ParsedBundle. Pre-parsed worker
// outputs are absorbed first; raw payloads then go through the registry in
// stable source-name order. A missing parser or an unreadable payload is a
// stage error for that source, never a stage abort.
func (p *Pipeline) runParse(_ context.Context, input Input, result *Result) domain.StageResult {
	started := time.Now()
	var errs []string
	processed := 0
	failed := 0

	for _, out := range input.Parsed {
		if out == nil {
			continue
		}
		result.Parsed.absorb(out)
		errs = append(errs, out.Issues...)
		processed += out.RecordCount()
		failed += out.SkippedRecords
	}

	names := make([]string, 0, len(input.Payloads))
	for name := range input.Payloads {
		names = append(names, string(name))
	}
	sort.Strings(names)

	for _, name := range names {
		source := domain.SourceName(name)
		prs, ok := p.registry.Lookup(source)
		if !ok {
			errs = append(errs, fmt.Sprintf("No parser available for source: %s", name))
			continue
		}
		out, err := prs.Parse(input.Payloads[source])
		if err != nil {
			errs = append(errs, fmt.Sprintf("Failed to parse %s payload: %v", name, err))
			continue
		}
		result.Parsed.absorb(out)
		errs = append(errs, out.Issues...)
		processed += out.RecordCount()
		failed += out.SkippedRecords
	}

	p.metrics.AddInputRecords(processed + failed)
	p.metrics.AddParsed(processed)

	status := domain.StageCompleted
	if len(errs) > 0 {
		status = domain.StagePartial
	}
	snapshot := map[string]int{
		"clinvar_records": len(result.Parsed.ClinVar),
		"pubmed_records":  len(result.Parsed.PubMed),
		"hpo_terms":       len(result.Parsed.HPO),
		"uniprot_entries": len(result.Parsed.UniProt),
	}
	return newStageResult(domain.StageParse, status, processed, failed, snapshot, errs, started)
}
