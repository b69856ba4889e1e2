// Package mapping builds typed relationship links between normalized
// entities: gene-variant links from genomic coordinate arithmetic,
// variant-phenotype links from clinical significance, and a directed
// cross-reference graph over both.
//
// Links live in arenas indexed by position; the per-entity maps hold link
// indices, never entity pointers, so the graph stays acyclic at the value
// level even when the underlying biology is back-referential.
package mapping

import (
	"github.com/sirupsen/logrus"

	"github.com/biodata-harvester/internal/domain"
)

const (
	// UpstreamWindow and DownstreamWindow extend the gene interval on
	// either side for regulatory-region classification.
	UpstreamWindow   int64 = 2000
	DownstreamWindow int64 = 500

	// SpliceMargin is the distance from a gene boundary within which an
	// intragenic variant is classified as a splice-site variant.
	SpliceMargin int64 = 10

	// GeneVariantBaseConfidence is the confidence assigned to a positional
	// link; ClinVarEvidenceBoost is added when the supporting variant came
	// from ClinVar.
	GeneVariantBaseConfidence = 0.6
	ClinVarEvidenceBoost      = 0.2
)

// geneSpan tracks the observed coordinate interval of a gene. Spans start
// as a single position and widen as more variants of the gene are seen.
type geneSpan struct {
	Chromosome string
	Start      int64
	End        int64
}

// Mapper accumulates relationship links over one pipeline invocation. It is
// written by the single mapping stage and must not be shared across
// concurrent runs.
type Mapper struct {
	log *logrus.Logger

	spans map[string]*geneSpan

	geneVariantLinks      []domain.GeneVariantLink
	variantPhenotypeLinks []domain.VariantPhenotypeLink

	geneToVariants      map[string][]int
	variantToGenes      map[string][]int
	variantToPhenotypes map[string][]int
	phenotypeToVariants map[string][]int
}

// NewMapper returns an empty mapper.
func NewMapper(log *logrus.Logger) *Mapper {
	return &Mapper{
		log:                 log,
		spans:               map[string]*geneSpan{},
		geneToVariants:      map[string][]int{},
		variantToGenes:      map[string][]int{},
		variantToPhenotypes: map[string][]int{},
		phenotypeToVariants: map[string][]int{},
	}
}

// RegisterGeneCoordinates seeds the coordinate span for a gene, typically
// from an annotation source that knows the true interval. Variants observed
// later still widen the span.
func (m *Mapper) RegisterGeneCoordinates(geneID, chromosome string, start, end int64) {
	if start > end {
		start, end = end, start
	}
	m.spans[geneID] = &geneSpan{Chromosome: chromosome, Start: start, End: end}
}

// spanFor returns the span a variant position should be classified
// against, seeding a single-point span when the gene has none yet. A
// chromosome mismatch against an existing span returns nil.
func (m *Mapper) spanFor(geneID, chromosome string, pos int64) *geneSpan {
	span, ok := m.spans[geneID]
	if !ok {
		span = &geneSpan{Chromosome: chromosome, Start: pos, End: pos}
		m.spans[geneID] = span
		return span
	}
	if span.Chromosome != "" && chromosome != "" && span.Chromosome != chromosome {
		m.log.WithFields(logrus.Fields{
			"gene":     geneID,
			"expected": span.Chromosome,
			"got":      chromosome,
		}).Debug("Skipping variant on a different chromosome")
		return nil
	}
	return span
}

// widen grows a span to include a position. Widening happens after the
// position is classified, so a variant never classifies against a span it
// widened itself.
func (span *geneSpan) widen(pos int64) {
	if pos < span.Start {
		span.Start = pos
	}
	if pos > span.End {
		span.End = pos
	}
}

// GeneVariantLinks returns the gene-variant link arena.
func (m *Mapper) GeneVariantLinks() []domain.GeneVariantLink {
	return m.geneVariantLinks
}

// VariantPhenotypeLinks returns the variant-phenotype link arena.
func (m *Mapper) VariantPhenotypeLinks() []domain.VariantPhenotypeLink {
	return m.variantPhenotypeLinks
}

// VariantLinksOf returns the gene-variant links registered for a gene.
func (m *Mapper) VariantLinksOf(geneID string) []domain.GeneVariantLink {
	indices := m.geneToVariants[geneID]
	links := make([]domain.GeneVariantLink, 0, len(indices))
	for _, i := range indices {
		links = append(links, m.geneVariantLinks[i])
	}
	return links
}

// PhenotypeLinksOf returns the variant-phenotype links registered for a
// variant.
func (m *Mapper) PhenotypeLinksOf(variantID string) []domain.VariantPhenotypeLink {
	indices := m.variantToPhenotypes[variantID]
	links := make([]domain.VariantPhenotypeLink, 0, len(indices))
	for _, i := range indices {
		links = append(links, m.variantPhenotypeLinks[i])
	}
	return links
}

func (m *Mapper) recordGeneVariant(link domain.GeneVariantLink) {
	idx := len(m.geneVariantLinks)
	m.geneVariantLinks = append(m.geneVariantLinks, link)
	m.geneToVariants[link.GeneID] = append(m.geneToVariants[link.GeneID], idx)
	m.variantToGenes[link.VariantID] = append(m.variantToGenes[link.VariantID], idx)
}

func (m *Mapper) recordVariantPhenotype(link domain.VariantPhenotypeLink) {
	idx := len(m.variantPhenotypeLinks)
	m.variantPhenotypeLinks = append(m.variantPhenotypeLinks, link)
	m.variantToPhenotypes[link.VariantID] = append(m.variantToPhenotypes[link.VariantID], idx)
	m.phenotypeToVariants[link.PhenotypeID] = append(m.phenotypeToVariants[link.PhenotypeID], idx)
}

// Networks computes the one-hop cross-reference network: for every gene
// with at least one link, the variant ids it directly references, in link
// registration order without duplicates.
func (m *Mapper) Networks() map[string][]string {
	networks := make(map[string][]string, len(m.geneToVariants))
	for geneID, indices := range m.geneToVariants {
		seen := map[string]bool{}
		var refs []string
		for _, i := range indices {
			variantID := m.geneVariantLinks[i].VariantID
			if seen[variantID] {
				continue
			}
			seen[variantID] = true
			refs = append(refs, variantID)
		}
		networks[geneID] = refs
	}
	return networks
}
