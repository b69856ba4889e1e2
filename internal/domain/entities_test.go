package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneValidate(t *testing.T) {
	tests := []struct {
		name    string
		gene    NormalizedGene
		wantErr bool
	}{
		{
			name: "valid symbol gene",
			gene: NormalizedGene{PrimaryID: "BRCA1", IDType: IDTypeSymbol, Symbol: "BRCA1", Source: "clinvar", Confidence: 0.9},
		},
		{
			name:    "symbol gene without symbol",
			gene:    NormalizedGene{PrimaryID: "X", IDType: IDTypeSymbol, Confidence: 0.9},
			wantErr: true,
		},
		{
			name:    "lowercase symbol rejected",
			gene:    NormalizedGene{PrimaryID: "brca1", IDType: IDTypeSymbol, Symbol: "brca1", Confidence: 0.9},
			wantErr: true,
		},
		{
			name: "hgnc gene without symbol is fine",
			gene: NormalizedGene{PrimaryID: "HGNC:1100", IDType: IDTypeHGNC, Confidence: 0.8},
		},
		{
			name:    "confidence out of range",
			gene:    NormalizedGene{PrimaryID: "TP53", IDType: IDTypeSymbol, Symbol: "TP53", Confidence: 1.3},
			wantErr: true,
		},
		{
			name:    "missing primary id",
			gene:    NormalizedGene{IDType: IDTypeHGNC, Confidence: 0.5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.gene.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVariantValidate(t *testing.T) {
	tests := []struct {
		name    string
		variant NormalizedVariant
		wantErr bool
	}{
		{
			name: "valid variant",
			variant: NormalizedVariant{
				PrimaryID:       "12345",
				IDType:          IDTypeClinVar,
				GenomicLocation: &GenomicLocation{Chromosome: "17", Position: 43094692},
				HGVS:            HGVSNotations{Coding: "c.68_69del", Protein: "p.Glu23fs"},
				Confidence:      0.9,
			},
		},
		{
			name: "chr prefix accepted",
			variant: NormalizedVariant{
				PrimaryID:       "v1",
				IDType:          IDTypeOther,
				GenomicLocation: &GenomicLocation{Chromosome: "chrX", Position: 100},
				Confidence:      0.5,
			},
		},
		{
			name: "bad chromosome",
			variant: NormalizedVariant{
				PrimaryID:       "v2",
				IDType:          IDTypeOther,
				GenomicLocation: &GenomicLocation{Chromosome: "chr99Q", Position: 100},
				Confidence:      0.5,
			},
			wantErr: true,
		},
		{
			name: "malformed coding hgvs",
			variant: NormalizedVariant{
				PrimaryID:  "v3",
				IDType:     IDTypeOther,
				HGVS:       HGVSNotations{Coding: "68_69del"},
				Confidence: 0.5,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.variant.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPhenotypeValidate(t *testing.T) {
	valid := NormalizedPhenotype{PrimaryID: "HP:0001250", IDType: IDTypeHPO, Name: "Seizure", Confidence: 0.95}
	assert.NoError(t, valid.Validate())

	noName := NormalizedPhenotype{PrimaryID: "HP:0001250", IDType: IDTypeHPO, Confidence: 0.95}
	assert.Error(t, noName.Validate())

	badID := NormalizedPhenotype{PrimaryID: "HPO_0001250", IDType: IDTypeHPO, Name: "Seizure", Confidence: 0.95}
	assert.Error(t, badID.Validate())
}

func TestPublicationValidate(t *testing.T) {
	valid := NormalizedPublication{
		PrimaryID: "31234567",
		IDType:    IDTypePubMed,
		DOI:       "10.1038/gim.2015.30",
		PMCID:     "PMC4544753",
		Confidence: 0.9,
	}
	assert.NoError(t, valid.Validate())

	badDOI := valid
	badDOI.DOI = "doi-ten-thirty"
	assert.Error(t, badDOI.Validate())

	badPMC := valid
	badPMC.PMCID = "4544753"
	assert.Error(t, badPMC.Validate())
}

func TestCrossRefsAddAndUnion(t *testing.T) {
	a := CrossRefs{}
	a.Add("hgnc", "HGNC:1100")
	a.Add("hgnc", "HGNC:1100") // duplicate ignored
	a.Add("ensembl", "ENSG00000012048")
	require.Len(t, a["hgnc"], 1)

	b := CrossRefs{"hgnc": {"HGNC:1100", "HGNC:2222"}}
	merged := a.Union(b)
	assert.ElementsMatch(t, []string{"HGNC:1100", "HGNC:2222"}, merged["hgnc"])
	assert.ElementsMatch(t, []string{"ENSG00000012048"}, merged["ensembl"])

	// Union leaves both inputs untouched.
	assert.Len(t, a["hgnc"], 1)
	assert.Len(t, b["hgnc"], 2)
}

func TestDisplayNames(t *testing.T) {
	g := NormalizedGene{PrimaryID: "HGNC:1100", Symbol: "BRCA1"}
	assert.Equal(t, "BRCA1", g.DisplayName())

	v := NormalizedVariant{PrimaryID: "v1", HGVS: HGVSNotations{Coding: "c.1A>G"}}
	assert.Equal(t, "c.1A>G", v.DisplayName())

	v2 := NormalizedVariant{PrimaryID: "v2"}
	assert.Equal(t, "v2", v2.DisplayName())

	p := NormalizedPublication{PrimaryID: "123", Title: "A study"}
	assert.Equal(t, "A study", p.DisplayName())
}

func TestLinkValidate(t *testing.T) {
	dist := int64(0)
	gv := GeneVariantLink{
		GeneID:           "BRCA1",
		VariantID:        "12345",
		RelationshipType: RelationshipCoding,
		Confidence:       0.8,
		EvidenceSources:  []string{"clinvar"},
		GenomicDistance:  &dist,
	}
	assert.NoError(t, gv.Validate())

	neg := int64(-5)
	bad := gv
	bad.GenomicDistance = &neg
	assert.Error(t, bad.Validate())

	noGene := gv
	noGene.GeneID = ""
	assert.Error(t, noGene.Validate())

	vp := VariantPhenotypeLink{
		VariantID:        "12345",
		PhenotypeID:      "HP:0001250",
		RelationshipType: RelationshipCausative,
		Confidence:       1.0,
		EvidenceSources:  []string{"clinvar"},
	}
	assert.NoError(t, vp.Validate())

	noEvidence := vp
	noEvidence.EvidenceSources = nil
	assert.Error(t, noEvidence.Validate())
}
