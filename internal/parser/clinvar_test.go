package parser

import (
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biodata-harvester/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

const clinvarFixture = `<?xml version="1.0" encoding="UTF-8"?>
<ClinVarResult-Set>
  <VariationArchive VariationID="12345" VariationName="NM_007294.4(BRCA1):c.68_69del (p.Glu23fs)">
    <ClassifiedRecord>
      <SimpleAllele>
        <GeneList>
          <Gene Symbol="BRCA1" GeneID="672"/>
        </GeneList>
        <Location>
          <SequenceLocation Assembly="GRCh37" Chr="17" start="41276045" referenceAlleleVCF="TCT" alternateAlleleVCF="T"/>
          <SequenceLocation Assembly="GRCh38" Chr="17" start="43124027" referenceAlleleVCF="TCT" alternateAlleleVCF="T"/>
        </Location>
        <HGVSlist>
          <HGVS>
            <NucleotideExpression>
              <Expression>NM_007294.4:c.68_69del</Expression>
            </NucleotideExpression>
          </HGVS>
        </HGVSlist>
      </SimpleAllele>
      <ClinicalSignificance>
        <ReviewStatus>reviewed by expert panel</ReviewStatus>
        <Description>Pathogenic</Description>
      </ClinicalSignificance>
      <TraitSet>
        <Trait>
          <Name>
            <ElementValue>Hereditary breast ovarian cancer syndrome</ElementValue>
          </Name>
        </Trait>
      </TraitSet>
    </ClassifiedRecord>
  </VariationArchive>
  <VariationArchive VariationID="67890">
    <ClassifiedRecord>
      <SimpleAllele>
        <GeneList>
          <Gene Symbol="TP53" GeneID="7157"/>
        </GeneList>
      </SimpleAllele>
      <ClinicalSignificance>
        <Description>Uncertain significance</Description>
      </ClinicalSignificance>
    </ClassifiedRecord>
  </VariationArchive>
</ClinVarResult-Set>`

func TestClinVarParse(t *testing.T) {
	p := NewClinVarParser(testLogger())
	out, err := p.Parse(strings.NewReader(clinvarFixture))
	require.NoError(t, err)
	require.Len(t, out.ClinVar, 2)
	assert.Equal(t, 2, out.RecordCount())
	assert.Positive(t, out.BytesRead)

	first := out.ClinVar[0]
	assert.Equal(t, "12345", first.VariationID)
	assert.Equal(t, "BRCA1", first.GeneSymbol)
	assert.Equal(t, "672", first.GeneID)
	assert.Equal(t, "GRCh38", first.Assembly)
	assert.Equal(t, "17", first.Chromosome)
	assert.Equal(t, int64(43124027), first.Position)
	assert.Equal(t, "TCT", first.Reference)
	assert.Equal(t, "T", first.Alternate)
	assert.Equal(t, "Pathogenic", first.ClinicalSignificance)
	assert.Equal(t, "reviewed by expert panel", first.ReviewStatus)
	require.Len(t, first.Phenotypes, 1)
	assert.Equal(t, "Hereditary breast ovarian cancer syndrome", first.Phenotypes[0])
	require.Len(t, first.HGVSExpressions, 1)
	assert.Equal(t, "NM_007294.4:c.68_69del", first.HGVSExpressions[0])

	second := out.ClinVar[1]
	assert.Equal(t, "67890", second.VariationID)
	assert.Equal(t, "TP53", second.GeneSymbol)
	assert.Empty(t, second.Chromosome)
	assert.Equal(t, "Uncertain significance", second.ClinicalSignificance)
}

func TestClinVarParseSkipsRecordWithoutID(t *testing.T) {
	payload := `<Set><VariationArchive><ClassifiedRecord/></VariationArchive></Set>`
	p := NewClinVarParser(testLogger())
	out, err := p.Parse(strings.NewReader(payload))
	require.NoError(t, err)
	assert.Empty(t, out.ClinVar)
	assert.Equal(t, 1, out.SkippedRecords)
	assert.NotEmpty(t, out.Issues)
}

func TestClinVarParseBrokenXML(t *testing.T) {
	p := NewClinVarParser(testLogger())
	_, err := p.Parse(strings.NewReader(`<Set><VariationArchive VariationID="1">`))
	assert.Error(t, err)
}

func TestValidateClinVarRecord(t *testing.T) {
	ok := domain.ClinVarRecord{VariationID: "1", Chromosome: "chr17", Position: 100}
	assert.Empty(t, ValidateClinVarRecord(&ok))

	bad := domain.ClinVarRecord{VariationID: "2", Chromosome: "chr_bad"}
	issues := ValidateClinVarRecord(&bad)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "invalid chromosome")
}
