package mapping

import (
	"strings"

	"github.com/biodata-harvester/internal/domain"
)

// MapGenesAndVariants links every variant to the gene named by its gene
// symbol, classifying the positional relationship from the gene's observed
// coordinate span. Variants without a usable genomic location, and variants
// whose symbol resolves to no gene, are skipped. Returns the number of links
// created.
func (m *Mapper) MapGenesAndVariants(genes []domain.NormalizedGene, variants []domain.NormalizedVariant) int {
	lookup := make(map[string]*domain.NormalizedGene, len(genes)*2)
	for i := range genes {
		gene := &genes[i]
		if gene.PrimaryID != "" {
			lookup[strings.ToLower(gene.PrimaryID)] = gene
		}
		if gene.Symbol != "" {
			lookup[strings.ToLower(gene.Symbol)] = gene
		}
	}

	created := 0
	for i := range variants {
		variant := &variants[i]
		if variant.GeneSymbol == "" {
			continue
		}
		gene, ok := lookup[strings.ToLower(variant.GeneSymbol)]
		if !ok {
			continue
		}
		loc := variant.GenomicLocation
		if loc == nil || loc.Chromosome == "" || loc.Position == 0 {
			continue
		}
		span := m.spanFor(gene.PrimaryID, loc.Chromosome, loc.Position)
		if span == nil {
			continue
		}
		if m.mapGeneVariantRelationship(gene, variant, span, loc.Position) {
			created++
		}
		span.widen(loc.Position)
	}
	return created
}

// mapGeneVariantRelationship classifies one (gene, variant) pair against a
// span and registers the resulting link. Positions outside the extended
// window produce no link.
func (m *Mapper) mapGeneVariantRelationship(gene *domain.NormalizedGene, variant *domain.NormalizedVariant, span *geneSpan, pos int64) bool {
	relationship, ok := classifyPosition(span, pos)
	if !ok {
		return false
	}

	distance := genomicDistance(span, pos)
	confidence := GeneVariantBaseConfidence
	if variant.Source == string(domain.SourceClinVar) {
		confidence += ClinVarEvidenceBoost
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	m.recordGeneVariant(domain.GeneVariantLink{
		GeneID:           gene.PrimaryID,
		VariantID:        variant.PrimaryID,
		RelationshipType: relationship,
		Confidence:       confidence,
		EvidenceSources:  []string{variant.Source},
		GenomicDistance:  &distance,
	})
	return true
}

// classifyPosition places a position relative to a gene span. The classifier
// never emits WITHIN_GENE; intragenic positions are CODING or SPLICE_SITE.
func classifyPosition(span *geneSpan, pos int64) (domain.GeneVariantRelationship, bool) {
	switch {
	case pos >= span.Start && pos <= span.End:
		if pos-span.Start <= SpliceMargin || span.End-pos <= SpliceMargin {
			return domain.RelationshipSpliceSite, true
		}
		return domain.RelationshipCoding, true
	case pos >= span.Start-UpstreamWindow && pos < span.Start:
		return domain.RelationshipUpstream, true
	case pos > span.End && pos <= span.End+DownstreamWindow:
		return domain.RelationshipDownstream, true
	default:
		return "", false
	}
}

// genomicDistance is zero inside the gene, otherwise the distance to the
// nearest gene boundary.
func genomicDistance(span *geneSpan, pos int64) int64 {
	if pos >= span.Start && pos <= span.End {
		return 0
	}
	toStart := span.Start - pos
	if toStart < 0 {
		toStart = -toStart
	}
	toEnd := pos - span.End
	if toEnd < 0 {
		toEnd = -toEnd
	}
	if toStart < toEnd {
		return toStart
	}
	return toEnd
}
