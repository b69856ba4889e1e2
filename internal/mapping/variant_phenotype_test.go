package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biodata-harvester/internal/domain"
)

func testPhenotype(id string, idType domain.IdentifierType, variationIDs ...string) domain.NormalizedPhenotype {
	p := domain.NormalizedPhenotype{
		PrimaryID: id,
		IDType:    idType,
		Name:      id,
		Source:    "clinvar",
		CrossRefs: domain.CrossRefs{},
	}
	for _, v := range variationIDs {
		p.CrossRefs.Add("clinvar", v)
	}
	return p
}

func TestMapVariantPhenotypeConsensus(t *testing.T) {
	m := newTestMapper(t)
	variant := domain.NormalizedVariant{
		PrimaryID:            "12345",
		IDType:               domain.IDTypeClinVar,
		ClinicalSignificance: "Pathogenic",
		Source:               "clinvar",
	}
	phenotype := testPhenotype("HP:0001250", domain.IDTypeHPO, "12345")

	created := m.MapVariantsAndPhenotypes(
		[]domain.NormalizedVariant{variant},
		[]domain.NormalizedPhenotype{phenotype},
	)
	require.Equal(t, 1, created)

	links := m.VariantPhenotypeLinks()
	require.Len(t, links, 1)
	link := links[0]
	assert.Equal(t, domain.RelationshipCausative, link.RelationshipType)
	// 0.3 base + 0.4 both clinvar + 0.2 pathogenic + 0.1 HPO-typed, capped.
	assert.InDelta(t, 1.0, link.Confidence, 1e-9)
	assert.Equal(t, []string{"clinvar"}, link.EvidenceSources)
	assert.Equal(t, "Pathogenic", link.ClinicalSignificance)
	assert.Empty(t, ValidateVariantPhenotypeLink(link))
}

func TestMapVariantPhenotypeClassification(t *testing.T) {
	tests := []struct {
		name         string
		significance string
		wantType     domain.VariantPhenotypeRelationship
		wantConf     float64
	}{
		{"likely pathogenic", "Likely pathogenic", domain.RelationshipCausative, 0.3 + 0.4 + 0.1 + 0.1},
		{"benign", "Benign", domain.RelationshipProtective, 0.3 + 0.4 + 0.1},
		{"likely benign", "Likely benign", domain.RelationshipProtective, 0.3 + 0.4 + 0.1},
		{"uncertain", "Uncertain significance", domain.RelationshipUncertain, 0.3 + 0.4 + 0.1},
		{"risk factor", "risk factor", domain.RelationshipRiskFactor, 0.3 + 0.4 + 0.1},
		{"empty defaults to associated", "", domain.RelationshipAssociated, 0.3 + 0.4 + 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMapper(t)
			variant := domain.NormalizedVariant{
				PrimaryID:            "v1",
				ClinicalSignificance: tt.significance,
				Source:               "clinvar",
			}
			phenotype := testPhenotype("HP:0000001", domain.IDTypeHPO, "v1")

			ok := m.MapVariantPhenotype(&variant, &phenotype, nil)
			require.True(t, ok)

			links := m.VariantPhenotypeLinks()
			require.Len(t, links, 1)
			assert.Equal(t, tt.wantType, links[0].RelationshipType)
			assert.InDelta(t, tt.wantConf, links[0].Confidence, 1e-9)
		})
	}
}

func TestMapVariantPhenotypeNoRelationship(t *testing.T) {
	m := newTestMapper(t)
	// Nothing matches and the phenotype is not ClinVar-sourced, so no
	// default applies.
	variant := domain.NormalizedVariant{PrimaryID: "v1", Source: "clinvar"}
	phenotype := domain.NormalizedPhenotype{
		PrimaryID: "HP:0000002",
		IDType:    domain.IDTypeHPO,
		Name:      "Some term",
		Source:    "hpo",
	}

	ok := m.MapVariantPhenotype(&variant, &phenotype, nil)
	assert.False(t, ok)
	assert.Empty(t, m.VariantPhenotypeLinks())
}

func TestMapVariantPhenotypeExtraEvidence(t *testing.T) {
	m := newTestMapper(t)
	variant := domain.NormalizedVariant{
		PrimaryID:            "v1",
		ClinicalSignificance: "Uncertain significance",
		Source:               "clinvar",
	}
	phenotype := testPhenotype("trait", domain.IDTypeOther, "v1")

	ok := m.MapVariantPhenotype(&variant, &phenotype, []string{"pubmed"})
	require.True(t, ok)

	links := m.VariantPhenotypeLinks()
	require.Len(t, links, 1)
	// 0.3 base + 0.4 both clinvar + 0.1 extra evidence; not HPO-typed.
	assert.InDelta(t, 0.8, links[0].Confidence, 1e-9)
	assert.Equal(t, []string{"clinvar", "pubmed"}, links[0].EvidenceSources)
}

func TestMapVariantsAndPhenotypesPairing(t *testing.T) {
	m := newTestMapper(t)
	variants := []domain.NormalizedVariant{
		{PrimaryID: "1", ClinicalSignificance: "Pathogenic", Source: "clinvar"},
		{PrimaryID: "2", ClinicalSignificance: "Benign", Source: "clinvar"},
	}
	phenotypes := []domain.NormalizedPhenotype{
		testPhenotype("HP:0000001", domain.IDTypeHPO, "1"),
		testPhenotype("HP:0000002", domain.IDTypeHPO, "2", "missing"),
		testPhenotype("HP:0000003", domain.IDTypeHPO), // no citations
	}

	created := m.MapVariantsAndPhenotypes(variants, phenotypes)
	assert.Equal(t, 2, created)
	assert.Len(t, m.PhenotypeLinksOf("1"), 1)
	assert.Len(t, m.PhenotypeLinksOf("2"), 1)
}
