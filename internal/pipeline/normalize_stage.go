package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/biodata-harvester/internal/domain"
	"github.com/biodata-harvester/internal/normalize"
)

// runNormalize converts parsed records into canonical entities. The order
// is fixed: UniProt genes, ClinVar genes, ClinVar variants, ClinVar
// phenotypes, HPO terms, PubMed publications, UniProt publications. A
// seen-gene set keeps overlapping source contributions idempotent; HPO
// terms that collide with a ClinVar phenotype merge into one entity.
func (p *Pipeline) runNormalize(_ context.Context, _ Input, result *Result) domain.StageResult {
	started := time.Now()
	var errs []string
	processed := 0
	failed := 0

	fail := func(kind, identity string) {
		errs = append(errs, fmt.Sprintf("Failed to normalize %s: %s", kind, identity))
		failed++
	}

	seenGenes := map[string]bool{}
	bundle := &result.Normalized

	for i := range result.Parsed.UniProt {
		rec := &result.Parsed.UniProt[i]
		gene := p.normalizer.NormalizeUniProtGene(rec)
		if gene == nil {
			fail("gene", geneIdentity(rec.GeneSymbol, rec.PrimaryAccession))
			continue
		}
		if !seenGenes[strings.ToLower(gene.PrimaryID)] {
			seenGenes[strings.ToLower(gene.PrimaryID)] = true
			bundle.Genes = append(bundle.Genes, *gene)
			processed++
		}
	}

	for i := range result.Parsed.ClinVar {
		rec := &result.Parsed.ClinVar[i]
		if rec.GeneSymbol == "" {
			continue
		}
		key := strings.ToLower(normalize.NormalizeGeneSymbol(rec.GeneSymbol))
		if seenGenes[key] {
			continue
		}
		gene := p.normalizer.NormalizeClinVarGene(rec)
		if gene == nil {
			fail("gene", rec.GeneSymbol)
			continue
		}
		seenGenes[key] = true
		bundle.Genes = append(bundle.Genes, *gene)
		processed++
	}

	for i := range result.Parsed.ClinVar {
		rec := &result.Parsed.ClinVar[i]
		variant := p.normalizer.NormalizeClinVarVariant(rec)
		if variant == nil {
			fail("variant", variantIdentityLabel(rec))
			continue
		}
		bundle.Variants = append(bundle.Variants, *variant)
		processed++
	}

	phenotypeIndex := map[string]int{}
	addPhenotype := func(phenotype *domain.NormalizedPhenotype) {
		if idx, ok := phenotypeIndex[phenotype.PrimaryID]; ok {
			merged := normalize.MergePhenotypes([]domain.NormalizedPhenotype{bundle.Phenotypes[idx], *phenotype})
			if merged != nil {
				bundle.Phenotypes[idx] = *merged
			}
			return
		}
		phenotypeIndex[phenotype.PrimaryID] = len(bundle.Phenotypes)
		bundle.Phenotypes = append(bundle.Phenotypes, *phenotype)
		processed++
	}

	for i := range result.Parsed.ClinVar {
		rec := &result.Parsed.ClinVar[i]
		for _, name := range rec.Phenotypes {
			phenotype := p.normalizer.NormalizeClinVarPhenotype(name, rec)
			if phenotype == nil {
				// Placeholder trait names are skipped silently; they are
				// not normalization failures.
				continue
			}
			addPhenotype(phenotype)
		}
	}

	for i := range result.Parsed.HPO {
		term := &result.Parsed.HPO[i]
		phenotype := p.normalizer.NormalizeHPOTerm(term)
		if phenotype == nil {
			if term.IsObsolete {
				continue
			}
			fail("phenotype", term.HPOID)
			continue
		}
		addPhenotype(phenotype)
	}

	for i := range result.Parsed.PubMed {
		rec := &result.Parsed.PubMed[i]
		pub := p.normalizer.NormalizePubMedRecord(rec)
		if pub == nil {
			fail("publication", publicationIdentity(rec.PMID, rec.Title))
			continue
		}
		bundle.Publications = append(bundle.Publications, *pub)
		processed++
	}

	for i := range result.Parsed.UniProt {
		for j := range result.Parsed.UniProt[i].References {
			ref := &result.Parsed.UniProt[i].References[j]
			pub := p.normalizer.NormalizeUniProtReference(ref)
			if pub == nil {
				fail("publication", publicationIdentity(ref.PubMedID, ref.Title))
				continue
			}
			bundle.Publications = append(bundle.Publications, *pub)
			processed++
		}
	}

	p.metrics.AddNormalized(processed)

	status := domain.StageCompleted
	if len(errs) > 0 {
		status = domain.StagePartial
	}
	snapshot := map[string]int{
		"genes":        len(bundle.Genes),
		"variants":     len(bundle.Variants),
		"phenotypes":   len(bundle.Phenotypes),
		"publications": len(bundle.Publications),
	}
	return newStageResult(domain.StageNormalize, status, processed, failed, snapshot, errs, started)
}

func geneIdentity(symbol, accession string) string {
	if symbol != "" {
		return symbol
	}
	if accession != "" {
		return accession
	}
	return "<unknown>"
}

func variantIdentityLabel(rec *domain.ClinVarRecord) string {
	if rec.VariationID != "" {
		return rec.VariationID
	}
	if rec.Title != "" {
		return rec.Title
	}
	return "<unknown>"
}

func publicationIdentity(id, title string) string {
	if id != "" {
		return id
	}
	if title != "" {
		return title
	}
	return "<unknown>"
}
