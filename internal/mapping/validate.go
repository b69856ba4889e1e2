package mapping

import (
	"fmt"

	"github.com/biodata-harvester/internal/domain"
)

// ValidateGeneVariantLink collects the issues of a gene-variant link. An
// empty result means the link is valid.
func ValidateGeneVariantLink(link domain.GeneVariantLink) []string {
	var issues []string
	if err := link.Validate(); err != nil {
		issues = append(issues, err.Error())
	}
	if link.RelationshipType == domain.RelationshipWithinGene {
		issues = append(issues, fmt.Sprintf("gene-variant link %s->%s: WITHIN_GENE is reserved and must not be emitted", link.GeneID, link.VariantID))
	}
	return issues
}

// ValidateVariantPhenotypeLink collects the issues of a variant-phenotype
// link. An empty result means the link is valid.
func ValidateVariantPhenotypeLink(link domain.VariantPhenotypeLink) []string {
	var issues []string
	if err := link.Validate(); err != nil {
		issues = append(issues, err.Error())
	}
	if link.Penetrance != nil && (*link.Penetrance < 0 || *link.Penetrance > 1) {
		issues = append(issues, fmt.Sprintf("variant-phenotype link %s->%s: penetrance %v out of range", link.VariantID, link.PhenotypeID, *link.Penetrance))
	}
	return issues
}
