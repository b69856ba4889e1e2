package normalize

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/biodata-harvester/internal/domain"
)

// NormalizeHPOTerm derives a canonical phenotype from an ontology term.
// Obsolete terms return nil; their replacement id is only a pointer, not a
// definition.
func (s *Service) NormalizeHPOTerm(term *domain.HPOTerm) *domain.NormalizedPhenotype {
	if term.IsObsolete {
		s.log.WithFields(logrus.Fields{
			"hpo_id":      term.HPOID,
			"replaced_by": term.ReplacedBy,
		}).Debug("skipping obsolete HPO term")
		return nil
	}
	if term.HPOID == "" || term.Name == "" {
		return nil
	}

	phenotype := domain.NormalizedPhenotype{
		PrimaryID:  term.HPOID,
		IDType:     domain.IDTypeHPO,
		Name:       term.Name,
		Definition: term.Definition,
		Synonyms:   append([]string(nil), term.Synonyms...),
		CrossRefs:  domain.CrossRefs{},
		Source:     domain.SourceHPO.String(),
		Confidence: HPOConfidence,
	}
	for _, xref := range term.Xrefs {
		namespace, id, found := strings.Cut(xref, ":")
		if !found || id == "" {
			continue
		}
		phenotype.CrossRefs.Add(strings.ToLower(namespace), xref)
	}
	return &phenotype
}

// NormalizeClinVarPhenotype derives a canonical phenotype from one trait
// name on a ClinVar record. Returns nil for empty or placeholder names.
func (s *Service) NormalizeClinVarPhenotype(name string, rec *domain.ClinVarRecord) *domain.NormalizedPhenotype {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "not provided") || strings.EqualFold(name, "not specified") {
		return nil
	}

	phenotype := domain.NormalizedPhenotype{
		PrimaryID:  name,
		IDType:     domain.IDTypeOther,
		Name:       name,
		CrossRefs:  domain.CrossRefs{},
		Source:     domain.SourceClinVar.String(),
		Confidence: ClinVarConfidence,
	}
	// Trait names that already carry an HPO accession are promoted.
	if domain.HPOIDPattern.MatchString(name) {
		phenotype.IDType = domain.IDTypeHPO
	}
	phenotype.CrossRefs.Add("clinvar", rec.VariationID)
	return &phenotype
}
