package domain

import (
	"fmt"
	"time"
)

// GenomicLocation pins a variant to an assembly coordinate.
type GenomicLocation struct {
	Assembly   string `json:"assembly,omitempty"`
	Chromosome string `json:"chromosome"`
	Position   int64  `json:"position"`
	Reference  string `json:"reference,omitempty"`
	Alternate  string `json:"alternate,omitempty"`
}

// HGVSNotations groups the coding, protein and genomic HGVS strings of a
// variant. Any of the fields may be empty.
type HGVSNotations struct {
	Coding  string `json:"c,omitempty"`
	Protein string `json:"p,omitempty"`
	Genomic string `json:"g,omitempty"`
}

// CrossRefs maps an identifier namespace (e.g. "hgnc", "ensembl") to the
// identifiers known for the entity in that namespace.
type CrossRefs map[string][]string

// Add records an identifier in a namespace, skipping duplicates.
func (c CrossRefs) Add(namespace, id string) {
	if id == "" {
		return
	}
	for _, existing := range c[namespace] {
		if existing == id {
			return
		}
	}
	c[namespace] = append(c[namespace], id)
}

// Union merges another cross-reference map into a new map, de-duplicating
// identifiers per namespace. Neither input is modified.
func (c CrossRefs) Union(other CrossRefs) CrossRefs {
	out := CrossRefs{}
	for ns, ids := range c {
		for _, id := range ids {
			out.Add(ns, id)
		}
	}
	for ns, ids := range other {
		for _, id := range ids {
			out.Add(ns, id)
		}
	}
	return out
}

// NormalizedGene is the canonical representation of a gene across sources.
type NormalizedGene struct {
	PrimaryID  string         `json:"primary_id"`
	IDType     IdentifierType `json:"id_type"`
	Symbol     string         `json:"symbol,omitempty"`
	Name       string         `json:"name,omitempty"`
	Synonyms   []string       `json:"synonyms"`
	CrossRefs  CrossRefs      `json:"cross_refs"`
	Source     string         `json:"source"`
	Confidence float64        `json:"confidence"`
}

// Validate enforces the gene invariants.
func (g NormalizedGene) Validate() error {
	if g.PrimaryID == "" {
		return fmt.Errorf("gene validation: primary id is required")
	}
	if g.IDType == IDTypeSymbol {
		if g.Symbol == "" {
			return fmt.Errorf("gene validation: symbol-typed gene %s has no symbol", g.PrimaryID)
		}
		if !GeneSymbolPattern.MatchString(g.Symbol) {
			return fmt.Errorf("gene validation: symbol %q does not match the expected pattern", g.Symbol)
		}
	}
	if g.Confidence < 0 || g.Confidence > 1 {
		return fmt.Errorf("gene validation: confidence %v out of range", g.Confidence)
	}
	return nil
}

// DisplayName returns the best human-readable label for the gene.
func (g NormalizedGene) DisplayName() string {
	if g.Symbol != "" {
		return g.Symbol
	}
	if g.Name != "" {
		return g.Name
	}
	return g.PrimaryID
}

// NormalizedVariant is the canonical representation of a sequence variant.
type NormalizedVariant struct {
	PrimaryID            string           `json:"primary_id"`
	IDType               IdentifierType   `json:"id_type"`
	GenomicLocation      *GenomicLocation `json:"genomic_location,omitempty"`
	HGVS                 HGVSNotations    `json:"hgvs"`
	ClinicalSignificance string           `json:"clinical_significance,omitempty"`
	GeneSymbol           string           `json:"gene_symbol,omitempty"`
	CrossRefs            CrossRefs        `json:"cross_refs"`
	Source               string           `json:"source"`
	Confidence           float64          `json:"confidence"`
}

// Validate enforces the variant invariants.
func (v NormalizedVariant) Validate() error {
	if v.PrimaryID == "" {
		return fmt.Errorf("variant validation: primary id is required")
	}
	if v.GenomicLocation != nil && !ChromosomePattern.MatchString(v.GenomicLocation.Chromosome) {
		return fmt.Errorf("variant validation: chromosome %q does not match the expected pattern", v.GenomicLocation.Chromosome)
	}
	if v.HGVS.Coding != "" && !HGVSCodingPattern.MatchString(v.HGVS.Coding) {
		return fmt.Errorf("variant validation: coding HGVS %q is malformed", v.HGVS.Coding)
	}
	if v.HGVS.Protein != "" && !HGVSProteinPattern.MatchString(v.HGVS.Protein) {
		return fmt.Errorf("variant validation: protein HGVS %q is malformed", v.HGVS.Protein)
	}
	if v.HGVS.Genomic != "" && !HGVSGenomicPattern.MatchString(v.HGVS.Genomic) {
		return fmt.Errorf("variant validation: genomic HGVS %q is malformed", v.HGVS.Genomic)
	}
	if v.Confidence < 0 || v.Confidence > 1 {
		return fmt.Errorf("variant validation: confidence %v out of range", v.Confidence)
	}
	return nil
}

// DisplayName returns the best human-readable label for the variant.
func (v NormalizedVariant) DisplayName() string {
	if v.HGVS.Coding != "" {
		return v.HGVS.Coding
	}
	if v.HGVS.Genomic != "" {
		return v.HGVS.Genomic
	}
	return v.PrimaryID
}

// NormalizedPhenotype is the canonical representation of a phenotype term.
type NormalizedPhenotype struct {
	PrimaryID  string         `json:"primary_id"`
	IDType     IdentifierType `json:"id_type"`
	Name       string         `json:"name"`
	Definition string         `json:"definition,omitempty"`
	Synonyms   []string       `json:"synonyms"`
	Category   string         `json:"category,omitempty"`
	CrossRefs  CrossRefs      `json:"cross_refs"`
	Source     string         `json:"source"`
	Confidence float64        `json:"confidence"`
}

// Validate enforces the phenotype invariants.
func (p NormalizedPhenotype) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("phenotype validation: name is required")
	}
	if p.IDType == IDTypeHPO && !HPOIDPattern.MatchString(p.PrimaryID) {
		return fmt.Errorf("phenotype validation: %q is not a valid HPO identifier", p.PrimaryID)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("phenotype validation: confidence %v out of range", p.Confidence)
	}
	return nil
}

// DisplayName returns the phenotype's human-readable label.
func (p NormalizedPhenotype) DisplayName() string {
	return p.Name
}

// NormalizedPublication is the canonical representation of a literature
// reference.
type NormalizedPublication struct {
	PrimaryID  string         `json:"primary_id"`
	IDType     IdentifierType `json:"id_type"`
	Title      string         `json:"title,omitempty"`
	Authors    []string       `json:"authors"`
	Journal    string         `json:"journal,omitempty"`
	PubDate    *time.Time     `json:"pub_date,omitempty"`
	DOI        string         `json:"doi,omitempty"`
	PMCID      string         `json:"pmc_id,omitempty"`
	PubMedID   string         `json:"pubmed_id,omitempty"`
	CrossRefs  CrossRefs      `json:"cross_refs"`
	Source     string         `json:"source"`
	Confidence float64        `json:"confidence"`
}

// Validate enforces the publication invariants.
func (p NormalizedPublication) Validate() error {
	if p.PrimaryID == "" {
		return fmt.Errorf("publication validation: primary id is required")
	}
	if p.DOI != "" && !DOIPattern.MatchString(p.DOI) {
		return fmt.Errorf("publication validation: DOI %q is malformed", p.DOI)
	}
	if p.PMCID != "" && !PMCIDPattern.MatchString(p.PMCID) {
		return fmt.Errorf("publication validation: PMC id %q is malformed", p.PMCID)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("publication validation: confidence %v out of range", p.Confidence)
	}
	return nil
}

// DisplayName returns the best human-readable label for the publication.
func (p NormalizedPublication) DisplayName() string {
	if p.Title != "" {
		return p.Title
	}
	return p.PrimaryID
}
