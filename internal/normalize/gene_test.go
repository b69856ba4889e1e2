package normalize

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biodata-harvester/internal/domain"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc, err := NewService(logger)
	require.NoError(t, err)
	return svc
}

func TestNormalizeUniProtGene(t *testing.T) {
	svc := newTestService(t)
	rec := &domain.UniProtRecord{
		PrimaryAccession: "P38398",
		GeneSymbol:       "brca1",
		GeneSynonyms:     []string{"rnf53"},
		ProteinName:      "Breast cancer type 1 susceptibility protein",
		DBReferences: []domain.UniProtDBReference{
			{Type: "HGNC", ID: "HGNC:1100"},
			{Type: "Ensembl", ID: "ENSG00000012048"},
			{Type: "PDB", ID: "1JM7"},
		},
	}

	gene := svc.NormalizeUniProtGene(rec)
	require.NotNil(t, gene)
	assert.Equal(t, "BRCA1", gene.PrimaryID)
	assert.Equal(t, domain.IDTypeSymbol, gene.IDType)
	assert.Equal(t, "BRCA1", gene.Symbol)
	assert.Equal(t, []string{"RNF53"}, gene.Synonyms)
	assert.Equal(t, UniProtConfidence, gene.Confidence)
	assert.Equal(t, []string{"P38398"}, gene.CrossRefs["uniprot"])
	assert.Equal(t, []string{"HGNC:1100"}, gene.CrossRefs["hgnc"])
	assert.Equal(t, []string{"ENSG00000012048"}, gene.CrossRefs["ensembl"])
	// Unmapped xref namespaces are not invented.
	assert.NotContains(t, gene.CrossRefs, "pdb")
}

func TestNormalizeUniProtGeneFallsBackToAccession(t *testing.T) {
	svc := newTestService(t)
	gene := svc.NormalizeUniProtGene(&domain.UniProtRecord{PrimaryAccession: "Q99999"})
	require.NotNil(t, gene)
	assert.Equal(t, "Q99999", gene.PrimaryID)
	assert.Equal(t, domain.IDTypeUniProt, gene.IDType)
}

func TestNormalizeUniProtGeneNoIdentity(t *testing.T) {
	svc := newTestService(t)
	assert.Nil(t, svc.NormalizeUniProtGene(&domain.UniProtRecord{}))
}

func TestNormalizeClinVarGene(t *testing.T) {
	svc := newTestService(t)
	rec := &domain.ClinVarRecord{VariationID: "12345", GeneSymbol: "tp53", GeneID: "7157"}

	gene := svc.NormalizeClinVarGene(rec)
	require.NotNil(t, gene)
	assert.Equal(t, "TP53", gene.PrimaryID)
	assert.Equal(t, "TP53", gene.Symbol)
	assert.Equal(t, ClinVarConfidence, gene.Confidence)
	assert.Equal(t, []string{"7157"}, gene.CrossRefs["ncbi_gene"])

	assert.Nil(t, svc.NormalizeClinVarGene(&domain.ClinVarRecord{VariationID: "1"}))
}

func TestGeneCacheReturnsSameEntity(t *testing.T) {
	svc := newTestService(t)
	rec := &domain.ClinVarRecord{VariationID: "1", GeneSymbol: "BRCA2"}
	first := svc.NormalizeClinVarGene(rec)
	second := svc.NormalizeClinVarGene(&domain.ClinVarRecord{VariationID: "2", GeneSymbol: "BRCA2"})
	require.NotNil(t, first)
	require.NotNil(t, second)
	// The cached entity wins; the second record does not re-normalize.
	assert.Equal(t, first.CrossRefs, second.CrossRefs)

	cached, ok := svc.CachedGene("BRCA2")
	require.True(t, ok)
	assert.Equal(t, "BRCA2", cached.Symbol)
}

func TestNormalizeGeneSymbol(t *testing.T) {
	assert.Equal(t, "BRCA1", NormalizeGeneSymbol("  brca1 "))
	assert.True(t, ValidGeneSymbol("BRCA1"))
	assert.True(t, ValidGeneSymbol("HLA-DRB1"))
	assert.False(t, ValidGeneSymbol("1ABC"))
	assert.False(t, ValidGeneSymbol("brca1"))
}
