package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biodata-harvester/internal/domain"
)

const pubmedFixture = `<?xml version="1.0" encoding="UTF-8"?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID Version="1">25741868</PMID>
      <Article>
        <Journal>
          <JournalIssue>
            <PubDate>
              <Year>2015</Year>
              <Month>May</Month>
            </PubDate>
          </JournalIssue>
          <Title>Genetics in medicine</Title>
        </Journal>
        <ArticleTitle>Standards and guidelines for the interpretation of sequence variants</ArticleTitle>
        <Abstract>
          <AbstractText>The American College of Medical Genetics and Genomics convened a workgroup.</AbstractText>
        </Abstract>
        <AuthorList>
          <Author>
            <LastName>Richards</LastName>
            <ForeName>Sue</ForeName>
            <Initials>S</Initials>
          </Author>
          <Author>
            <LastName>Aziz</LastName>
            <Initials>N</Initials>
          </Author>
        </AuthorList>
      </Article>
    </MedlineCitation>
    <PubmedData>
      <ArticleIdList>
        <ArticleId IdType="pubmed">25741868</ArticleId>
        <ArticleId IdType="doi">10.1038/gim.2015.30</ArticleId>
        <ArticleId IdType="pmc">PMC4544753</ArticleId>
      </ArticleIdList>
    </PubmedData>
  </PubmedArticle>
  <PubmedArticle>
    <MedlineCitation>
      <PMID Version="1"></PMID>
      <Article>
        <ArticleTitle>Orphan article</ArticleTitle>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

func TestPubMedParse(t *testing.T) {
	p := NewPubMedParser(testLogger())
	out, err := p.Parse(strings.NewReader(pubmedFixture))
	require.NoError(t, err)
	require.Len(t, out.PubMed, 1)
	assert.Equal(t, 1, out.SkippedRecords)

	rec := out.PubMed[0]
	assert.Equal(t, "25741868", rec.PMID)
	assert.Equal(t, "Standards and guidelines for the interpretation of sequence variants", rec.Title)
	assert.Contains(t, rec.Abstract, "American College of Medical Genetics")
	assert.Equal(t, "Genetics in medicine", rec.Journal)
	assert.Equal(t, "2015", rec.PubYear)
	assert.Equal(t, "May", rec.PubMonth)
	assert.Equal(t, []string{"Richards Sue", "Aziz N"}, rec.Authors)
	assert.Equal(t, "10.1038/gim.2015.30", rec.DOI)
	assert.Equal(t, "PMC4544753", rec.PMCID)
}

func TestValidatePubMedRecord(t *testing.T) {
	tests := []struct {
		name   string
		record domain.PubMedRecord
		issues int
	}{
		{"valid", domain.PubMedRecord{PMID: "123", DOI: "10.1038/gim.2015.30", PMCID: "PMC1"}, 0},
		{"missing pmid", domain.PubMedRecord{}, 1},
		{"non-numeric pmid", domain.PubMedRecord{PMID: "abc"}, 1},
		{"bad doi", domain.PubMedRecord{PMID: "1", DOI: "not-a-doi"}, 1},
		{"bad pmc", domain.PubMedRecord{PMID: "1", PMCID: "4544753"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, ValidatePubMedRecord(&tt.record), tt.issues)
		})
	}
}
