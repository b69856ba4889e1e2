package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hpoFixture = `hpo_id: HP:0001250
name: Seizure
definition: A seizure is an intermittent abnormality of nervous system physiology.
synonyms: Epileptic seizure; Seizures
xrefs: UMLS:C0036572; SNOMEDCT_US:91175000

hpo_id: HP:0000118
name: Phenotypic abnormality

hpo_id: HP:0006315
name: obsolete Mixed dentition
is_obsolete: true
replaced_by: HP:0011061
custom_flag: legacy
`

func TestHPOParse(t *testing.T) {
	p := NewHPOParser(testLogger())
	out, err := p.Parse(strings.NewReader(hpoFixture))
	require.NoError(t, err)
	require.Len(t, out.HPO, 3)

	seizure := out.HPO[0]
	assert.Equal(t, "HP:0001250", seizure.HPOID)
	assert.Equal(t, "Seizure", seizure.Name)
	assert.Contains(t, seizure.Definition, "intermittent abnormality")
	assert.Equal(t, []string{"Epileptic seizure", "Seizures"}, seizure.Synonyms)
	assert.Equal(t, []string{"UMLS:C0036572", "SNOMEDCT_US:91175000"}, seizure.Xrefs)
	assert.False(t, seizure.IsObsolete)

	obsolete := out.HPO[2]
	assert.True(t, obsolete.IsObsolete)
	assert.Equal(t, "HP:0011061", obsolete.ReplacedBy)
	// Unknown keys are preserved, not dropped.
	assert.Equal(t, "legacy", obsolete.Extras["custom_flag"])
}

func TestHPOParseInvalidID(t *testing.T) {
	p := NewHPOParser(testLogger())
	out, err := p.Parse(strings.NewReader("hpo_id: HPO-1\nname: Broken\n"))
	require.NoError(t, err)
	require.Len(t, out.HPO, 1)
	require.NotEmpty(t, out.Issues)
	assert.Contains(t, out.Issues[0], "invalid identifier")
}

func TestHPOParseMissingID(t *testing.T) {
	p := NewHPOParser(testLogger())
	out, err := p.Parse(strings.NewReader("name: Nameless stanza\n"))
	require.NoError(t, err)
	assert.Empty(t, out.HPO)
	assert.Equal(t, 1, out.SkippedRecords)
}

func TestHPOParseOBOStyleHeaders(t *testing.T) {
	payload := "[Term]\nhpo_id: HP:0000001\nname: All\n\n[Term]\nhpo_id: HP:0000002\nname: Abnormality of body height\n"
	p := NewHPOParser(testLogger())
	out, err := p.Parse(strings.NewReader(payload))
	require.NoError(t, err)
	assert.Len(t, out.HPO, 2)
}
