package normalize

import (
	"github.com/biodata-harvester/internal/domain"
)

// MergedSource tags entities assembled from more than one source.
const MergedSource = "merged"

// sourceRank breaks confidence ties during base selection. Curated
// references beat aggregated ones; unlisted sources rank lowest.
var sourceRank = map[string]int{
	"uniprot": 2,
	"hpo":     2,
	"clinvar": 1,
}

// replacesBase reports whether a candidate should displace the current
// base. Ties on confidence fall back to source rank, then to the
// lexicographically smaller source name, so the outcome does not depend
// on input order.
func replacesBase(candConfidence, baseConfidence float64, candSource, baseSource string) bool {
	if candConfidence != baseConfidence {
		return candConfidence > baseConfidence
	}
	if sourceRank[candSource] != sourceRank[baseSource] {
		return sourceRank[candSource] > sourceRank[baseSource]
	}
	return candSource < baseSource
}

// MergeGenes folds several canonical genes for the same identity into one.
// The highest-confidence gene becomes the base (confidence ties go to the
// higher-ranked source); synonyms and cross-refs are unioned, and agreement
// between sources raises the confidence by MergeBoost (capped at 1.0). A
// single-element list is returned unchanged.
func MergeGenes(genes []domain.NormalizedGene) *domain.NormalizedGene {
	if len(genes) == 0 {
		return nil
	}
	if len(genes) == 1 {
		out := genes[0]
		return &out
	}

	base := genes[0]
	for _, g := range genes[1:] {
		if replacesBase(g.Confidence, base.Confidence, g.Source, base.Source) {
			base = g
		}
	}

	merged := base
	merged.Synonyms = append([]string(nil), base.Synonyms...)
	merged.CrossRefs = domain.CrossRefs{}.Union(base.CrossRefs)
	for _, g := range genes {
		merged.CrossRefs = merged.CrossRefs.Union(g.CrossRefs)
		merged.Synonyms = unionStrings(merged.Synonyms, g.Synonyms)
		if merged.Symbol == "" {
			merged.Symbol = g.Symbol
		}
		if merged.Name == "" {
			merged.Name = g.Name
		}
	}
	merged.Source = MergedSource
	merged.Confidence = capConfidence(base.Confidence + MergeBoost)
	return &merged
}

// MergePhenotypes folds several canonical phenotypes for the same identity
// into one, with the same base-selection and boost rules as MergeGenes.
func MergePhenotypes(phenotypes []domain.NormalizedPhenotype) *domain.NormalizedPhenotype {
	if len(phenotypes) == 0 {
		return nil
	}
	if len(phenotypes) == 1 {
		out := phenotypes[0]
		return &out
	}

	base := phenotypes[0]
	for _, p := range phenotypes[1:] {
		if replacesBase(p.Confidence, base.Confidence, p.Source, base.Source) {
			base = p
		}
	}

	merged := base
	merged.Synonyms = append([]string(nil), base.Synonyms...)
	merged.CrossRefs = domain.CrossRefs{}.Union(base.CrossRefs)
	for _, p := range phenotypes {
		merged.CrossRefs = merged.CrossRefs.Union(p.CrossRefs)
		merged.Synonyms = unionStrings(merged.Synonyms, p.Synonyms)
		if merged.Definition == "" {
			merged.Definition = p.Definition
		}
		if merged.Category == "" {
			merged.Category = p.Category
		}
	}
	merged.Source = MergedSource
	merged.Confidence = capConfidence(base.Confidence + MergeBoost)
	return &merged
}

// unionStrings appends items not already present, preserving order.
func unionStrings(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, s := range base {
		seen[s] = true
	}
	for _, s := range extra {
		if s != "" && !seen[s] {
			base = append(base, s)
			seen[s] = true
		}
	}
	return base
}
