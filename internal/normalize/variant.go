package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/biodata-harvester/internal/domain"
)

var (
	// proteinShapePattern matches bare protein changes such as Glu23fs,
	// V600E or Ter123= that arrive without their p. prefix.
	proteinShapePattern = regexp.MustCompile(`^[A-Z](?:[a-z]{2})?\d+(?:[A-Z](?:[a-z]{2})?|fs|del|dup|ins|Ter|\*|=)`)
	// genomicShapePattern matches bare genomic changes such as 43124027A>G
	// or 123del that arrive without their g. prefix.
	genomicShapePattern = regexp.MustCompile(`^\d+(?:_\d+)?(?:[ACGT]+>[ACGT]+|del[ACGT]*|ins[ACGT]+|dup[ACGT]*)$`)
)

// NormalizeClinVarVariant derives a canonical variant from a ClinVar record.
// Returns nil when no primary identifier can be derived.
func (s *Service) NormalizeClinVarVariant(rec *domain.ClinVarRecord) *domain.NormalizedVariant {
	primaryID, idType := variantIdentity(rec)
	if primaryID == "" {
		return nil
	}

	if cached, ok := s.variantCache.Get(primaryID); ok {
		return &cached
	}

	variant := domain.NormalizedVariant{
		PrimaryID:            primaryID,
		IDType:               idType,
		ClinicalSignificance: rec.ClinicalSignificance,
		GeneSymbol:           NormalizeGeneSymbol(rec.GeneSymbol),
		CrossRefs:            domain.CrossRefs{},
		Source:               domain.SourceClinVar.String(),
		Confidence:           ClinVarConfidence,
	}
	variant.CrossRefs.Add("clinvar", rec.VariationID)

	if rec.Chromosome != "" && rec.Position > 0 {
		variant.GenomicLocation = &domain.GenomicLocation{
			Assembly:   rec.Assembly,
			Chromosome: rec.Chromosome,
			Position:   rec.Position,
			Reference:  rec.Reference,
			Alternate:  rec.Alternate,
		}
	}

	for _, expr := range rec.HGVSExpressions {
		s.applyHGVS(&variant, expr)
	}

	s.variantCache.Add(primaryID, variant)
	return &variant
}

// variantIdentity derives the primary identifier: the ClinVar accession when
// present, an explicit variant id otherwise, and as a last resort a
// synthesized coordinate key.
func variantIdentity(rec *domain.ClinVarRecord) (string, domain.IdentifierType) {
	if rec.VariationID != "" {
		return rec.VariationID, domain.IDTypeClinVar
	}
	if id := rec.Extras["variant_id"]; id != "" {
		return id, domain.IDTypeOther
	}
	if rec.Chromosome != "" && rec.Position > 0 {
		return fmt.Sprintf("%s:%d:%s>%s", rec.Chromosome, rec.Position, rec.Reference, rec.Alternate),
			domain.IDTypeCoordinate
	}
	return "", domain.IDTypeOther
}

// applyHGVS slots one HGVS expression into the variant's notation set.
// Transcript-qualified expressions (NM_000546.6:c.215C>G) are stripped to
// their change part; bare expressions get an inferred prefix when their
// shape is unambiguous.
func (s *Service) applyHGVS(variant *domain.NormalizedVariant, expr string) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return
	}
	if idx := strings.LastIndex(expr, ":"); idx >= 0 {
		expr = expr[idx+1:]
	}

	prefixed := ExtractHGVS(expr)
	switch {
	case strings.HasPrefix(prefixed, "c."):
		if variant.HGVS.Coding == "" {
			variant.HGVS.Coding = prefixed
		}
	case strings.HasPrefix(prefixed, "p."):
		if variant.HGVS.Protein == "" {
			variant.HGVS.Protein = prefixed
		}
	case strings.HasPrefix(prefixed, "g."):
		if variant.HGVS.Genomic == "" {
			variant.HGVS.Genomic = prefixed
		}
	case prefixed == "":
		s.log.WithFields(logrus.Fields{
			"variant_id": variant.PrimaryID,
			"expression": expr,
		}).Debug("unrecognized HGVS expression")
	default:
		// m., n. and r. notations are recognized but have no slot in the
		// canonical set.
		s.log.WithFields(logrus.Fields{
			"variant_id": variant.PrimaryID,
			"expression": prefixed,
		}).Debug("HGVS notation kind not carried on canonical variants")
	}
}

// ExtractHGVS returns the expression with its HGVS prefix, inferring one for
// bare protein- or genomic-shaped strings. The empty string means the
// expression is not recognizable as HGVS.
func ExtractHGVS(expr string) string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return ""
	}
	for _, prefix := range []string{"c.", "p.", "g.", "m.", "n.", "r."} {
		if strings.HasPrefix(expr, prefix) {
			return expr
		}
	}
	if proteinShapePattern.MatchString(expr) {
		return "p." + expr
	}
	if genomicShapePattern.MatchString(expr) {
		return "g." + expr
	}
	return ""
}
