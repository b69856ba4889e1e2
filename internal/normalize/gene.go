package normalize

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/biodata-harvester/internal/domain"
)

// NormalizeUniProtGene derives a canonical gene from a UniProtKB entry.
// Returns nil when the entry carries no usable gene identity.
func (s *Service) NormalizeUniProtGene(rec *domain.UniProtRecord) *domain.NormalizedGene {
	symbol := NormalizeGeneSymbol(rec.GeneSymbol)
	primaryID := symbol
	idType := domain.IDTypeSymbol
	if primaryID == "" {
		if rec.PrimaryAccession == "" {
			return nil
		}
		primaryID = rec.PrimaryAccession
		idType = domain.IDTypeUniProt
	}

	if cached, ok := s.geneCache.Get(primaryID); ok {
		return &cached
	}

	gene := domain.NormalizedGene{
		PrimaryID:  primaryID,
		IDType:     idType,
		Symbol:     symbol,
		Name:       rec.ProteinName,
		Synonyms:   uppercaseAll(rec.GeneSynonyms),
		CrossRefs:  domain.CrossRefs{},
		Source:     domain.SourceUniProt.String(),
		Confidence: UniProtConfidence,
	}
	gene.CrossRefs.Add("uniprot", rec.PrimaryAccession)
	for _, xref := range rec.DBReferences {
		switch strings.ToLower(xref.Type) {
		case "hgnc":
			gene.CrossRefs.Add("hgnc", xref.ID)
		case "ensembl":
			gene.CrossRefs.Add("ensembl", xref.ID)
		case "geneid", "ncbi_gene":
			gene.CrossRefs.Add("ncbi_gene", xref.ID)
		}
	}

	if symbol != "" && !domain.GeneSymbolPattern.MatchString(symbol) {
		s.log.WithFields(logrus.Fields{
			"symbol": symbol,
			"source": domain.SourceUniProt,
		}).Debug("gene symbol does not match the canonical pattern")
	}

	s.geneCache.Add(primaryID, gene)
	return &gene
}

// NormalizeClinVarGene derives a canonical gene from a ClinVar record.
// Returns nil when the record names no gene.
func (s *Service) NormalizeClinVarGene(rec *domain.ClinVarRecord) *domain.NormalizedGene {
	symbol := NormalizeGeneSymbol(rec.GeneSymbol)
	if symbol == "" {
		return nil
	}

	if cached, ok := s.geneCache.Get(symbol); ok {
		return &cached
	}

	gene := domain.NormalizedGene{
		PrimaryID:  symbol,
		IDType:     domain.IDTypeSymbol,
		Symbol:     symbol,
		CrossRefs:  domain.CrossRefs{},
		Source:     domain.SourceClinVar.String(),
		Confidence: ClinVarConfidence,
	}
	gene.CrossRefs.Add("ncbi_gene", rec.GeneID)
	gene.CrossRefs.Add("clinvar", rec.VariationID)

	if !domain.GeneSymbolPattern.MatchString(symbol) {
		s.log.WithFields(logrus.Fields{
			"symbol": symbol,
			"source": domain.SourceClinVar,
		}).Debug("gene symbol does not match the canonical pattern")
	}

	s.geneCache.Add(symbol, gene)
	return &gene
}

// NormalizeGeneSymbol uppercases and trims a raw gene symbol. Symbols that
// do not match the canonical pattern are still returned; validation flags
// them separately without failing normalization.
func NormalizeGeneSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ValidGeneSymbol reports whether a normalized symbol matches the canonical
// uppercase pattern.
func ValidGeneSymbol(symbol string) bool {
	return domain.GeneSymbolPattern.MatchString(symbol)
}

func uppercaseAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
