package mapping

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/biodata-harvester/internal/domain"
)

// Variant-phenotype confidence schedule. The score starts at the base and
// accumulates the applicable bonuses, capped at 1.0.
const (
	phenotypeBaseConfidence = 0.3
	bothClinVarBonus        = 0.4
	pathogenicBonus         = 0.2
	likelyPathogenicBonus   = 0.1
	additionalEvidenceBonus = 0.1
	hpoTypedBonus           = 0.1
)

// MapVariantsAndPhenotypes links variants to the phenotypes that cite them.
// A phenotype cites a variant through its "clinvar" cross-references, which
// the normalizer populates with the originating variation id. Returns the
// number of links created.
func (m *Mapper) MapVariantsAndPhenotypes(variants []domain.NormalizedVariant, phenotypes []domain.NormalizedPhenotype) int {
	byID := make(map[string]*domain.NormalizedVariant, len(variants))
	for i := range variants {
		byID[variants[i].PrimaryID] = &variants[i]
	}

	created := 0
	for i := range phenotypes {
		phenotype := &phenotypes[i]
		for _, variationID := range phenotype.CrossRefs["clinvar"] {
			variant, ok := byID[variationID]
			if !ok {
				continue
			}
			if m.MapVariantPhenotype(variant, phenotype, nil) {
				created++
			}
		}
	}
	return created
}

// MapVariantPhenotype classifies and registers a single variant-phenotype
// pair. extraEvidence lists evidence sources beyond the two entities' own
// source tags; supplying any raises the confidence. Pairs with no
// recognizable significance and no shared ClinVar provenance produce no
// link.
func (m *Mapper) MapVariantPhenotype(variant *domain.NormalizedVariant, phenotype *domain.NormalizedPhenotype, extraEvidence []string) bool {
	bothClinVar := variant.Source == string(domain.SourceClinVar) &&
		phenotype.Source == string(domain.SourceClinVar)

	relationship, ok := classifySignificance(variant.ClinicalSignificance, bothClinVar)
	if !ok {
		m.log.WithFields(logrus.Fields{
			"variant":      variant.PrimaryID,
			"phenotype":    phenotype.PrimaryID,
			"significance": variant.ClinicalSignificance,
		}).Debug("No relationship derivable for variant-phenotype pair")
		return false
	}

	significance := strings.ToLower(variant.ClinicalSignificance)
	confidence := phenotypeBaseConfidence
	if bothClinVar {
		confidence += bothClinVarBonus
	}
	if strings.Contains(significance, "likely pathogenic") {
		confidence += likelyPathogenicBonus
	} else if strings.Contains(significance, "pathogenic") {
		confidence += pathogenicBonus
	}
	if len(extraEvidence) > 0 {
		confidence += additionalEvidenceBonus
	}
	if phenotype.IDType == domain.IDTypeHPO {
		confidence += hpoTypedBonus
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	evidence := []string{variant.Source}
	if phenotype.Source != variant.Source {
		evidence = append(evidence, phenotype.Source)
	}
	evidence = append(evidence, extraEvidence...)

	m.recordVariantPhenotype(domain.VariantPhenotypeLink{
		VariantID:            variant.PrimaryID,
		PhenotypeID:          phenotype.PrimaryID,
		RelationshipType:     relationship,
		Confidence:           confidence,
		EvidenceSources:      evidence,
		ClinicalSignificance: variant.ClinicalSignificance,
	})
	return true
}

// classifySignificance derives the relationship class from the variant's
// clinical significance by case-insensitive substring match. When nothing
// matches, pairs where both entities carry ClinVar provenance default to
// ASSOCIATED; all other pairs yield no relationship.
func classifySignificance(significance string, bothClinVar bool) (domain.VariantPhenotypeRelationship, bool) {
	s := strings.ToLower(significance)
	switch {
	case strings.Contains(s, "pathogenic"):
		return domain.RelationshipCausative, true
	case strings.Contains(s, "benign"):
		return domain.RelationshipProtective, true
	case strings.Contains(s, "uncertain"):
		return domain.RelationshipUncertain, true
	case strings.Contains(s, "risk"):
		return domain.RelationshipRiskFactor, true
	case bothClinVar:
		return domain.RelationshipAssociated, true
	default:
		return "", false
	}
}
