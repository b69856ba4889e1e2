package domain

import "fmt"

// GeneVariantLink relates a variant to a gene by genomic position. Links
// reference entities by identifier only; they never embed entity values.
type GeneVariantLink struct {
	GeneID           string                  `json:"gene_id"`
	VariantID        string                  `json:"variant_id"`
	RelationshipType GeneVariantRelationship `json:"relationship_type"`
	Confidence       float64                 `json:"confidence"`
	EvidenceSources  []string                `json:"evidence_sources"`
	GenomicDistance  *int64                  `json:"genomic_distance,omitempty"`
	FunctionalImpact string                  `json:"functional_impact,omitempty"`
}

// Validate enforces the link invariants.
func (l GeneVariantLink) Validate() error {
	if l.GeneID == "" {
		return fmt.Errorf("gene-variant link validation: gene id is required")
	}
	if l.VariantID == "" {
		return fmt.Errorf("gene-variant link validation: variant id is required")
	}
	if l.GenomicDistance != nil && *l.GenomicDistance < 0 {
		return fmt.Errorf("gene-variant link validation: negative genomic distance %d", *l.GenomicDistance)
	}
	if !l.RelationshipType.IsValid() {
		return fmt.Errorf("gene-variant link validation: unknown relationship %q", l.RelationshipType)
	}
	if l.Confidence < 0 || l.Confidence > 1 {
		return fmt.Errorf("gene-variant link validation: confidence %v out of range", l.Confidence)
	}
	return nil
}

// VariantPhenotypeLink relates a variant to a phenotype term, typed by the
// variant's clinical significance.
type VariantPhenotypeLink struct {
	VariantID            string                       `json:"variant_id"`
	PhenotypeID          string                       `json:"phenotype_id"`
	RelationshipType     VariantPhenotypeRelationship `json:"relationship_type"`
	Confidence           float64                      `json:"confidence"`
	EvidenceSources      []string                     `json:"evidence_sources"`
	ClinicalSignificance string                       `json:"clinical_significance,omitempty"`
	Inheritance          string                       `json:"inheritance,omitempty"`
	Penetrance           *float64                     `json:"penetrance,omitempty"`
}

// Validate enforces the link invariants.
func (l VariantPhenotypeLink) Validate() error {
	if l.VariantID == "" {
		return fmt.Errorf("variant-phenotype link validation: variant id is required")
	}
	if l.PhenotypeID == "" {
		return fmt.Errorf("variant-phenotype link validation: phenotype id is required")
	}
	if len(l.EvidenceSources) == 0 {
		return fmt.Errorf("variant-phenotype link validation: evidence sources are required")
	}
	if !l.RelationshipType.IsValid() {
		return fmt.Errorf("variant-phenotype link validation: unknown relationship %q", l.RelationshipType)
	}
	if l.Confidence < 0 || l.Confidence > 1 {
		return fmt.Errorf("variant-phenotype link validation: confidence %v out of range", l.Confidence)
	}
	return nil
}
