package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvenanceImmutability(t *testing.T) {
	base := NewProvenance("clinvar", "harvester")
	derived := base.WithStep("Parsed 10 records").
		WithQualityScore(0.9).
		WithVersion("2026-08").
		MarkValidated()

	assert.Empty(t, base.ProcessingSteps)
	assert.Nil(t, base.QualityScore)
	assert.Empty(t, base.SourceVersion)
	assert.Equal(t, ValidationPending, base.ValidationStatus)

	require.Len(t, derived.ProcessingSteps, 1)
	require.NotNil(t, derived.QualityScore)
	assert.InDelta(t, 0.9, *derived.QualityScore, 1e-9)
	assert.Equal(t, "2026-08", derived.SourceVersion)
	assert.Equal(t, ValidationValidated, derived.ValidationStatus)
}

func TestProvenanceQualityScoreClamped(t *testing.T) {
	p := NewProvenance("hpo", "harvester")
	high := p.WithQualityScore(1.5)
	low := p.WithQualityScore(-0.2)
	assert.Equal(t, 1.0, *high.QualityScore)
	assert.Equal(t, 0.0, *low.QualityScore)
}

func TestProvenanceMetadataDoesNotAlias(t *testing.T) {
	p := NewProvenance("uniprot", "harvester").WithMetadata("release", "2026_03")
	q := p.WithMetadata("format", "json")

	assert.Len(t, p.Metadata, 1)
	assert.Len(t, q.Metadata, 2)
	assert.Equal(t, "2026_03", q.Metadata["release"])
}

func TestProvenanceMarkFailed(t *testing.T) {
	p := NewProvenance("pubmed", "harvester").MarkFailed()
	assert.Equal(t, ValidationFailed, p.ValidationStatus)
}
