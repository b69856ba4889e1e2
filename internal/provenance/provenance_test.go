package provenance

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biodata-harvester/internal/domain"
)

func newTestLedger() *Ledger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewLedger(log)
}

func TestSerializeFullRecord(t *testing.T) {
	ledger := newTestLedger()
	acquired := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)

	prov := domain.Provenance{
		Source:        "clinvar",
		SourceVersion: "2026-07",
		SourceURL:     "https://ftp.ncbi.nlm.nih.gov/pub/clinvar/",
		AcquiredAt:    acquired,
		AcquiredBy:    "coordinator",
	}
	prov = prov.WithStep("Parsed 120 records").WithQualityScore(0.95).MarkValidated()

	entity := ledger.Serialize(prov)
	assert.Equal(t, "DataDownload", entity["@type"])
	assert.Equal(t, "clinvar", entity["name"])
	assert.Equal(t, "2026-08-01T12:30:00Z", entity["datePublished"])
	assert.Equal(t, "https://ftp.ncbi.nlm.nih.gov/pub/clinvar/", entity["url"])
	assert.Equal(t, "2026-07", entity["version"])
	assert.Equal(t, []string{"Parsed 120 records"}, entity["processingSteps"])
	assert.Equal(t, 0.95, entity["qualityScore"])
	assert.Equal(t, "validated", entity["validationStatus"])
}

func TestSerializeMinimalRecord(t *testing.T) {
	ledger := newTestLedger()
	before := time.Now().UTC()

	entity := ledger.Serialize(domain.Provenance{Source: "hpo"})

	assert.Equal(t, "hpo", entity["name"])
	published, err := time.Parse(time.RFC3339, entity["datePublished"].(string))
	require.NoError(t, err)
	assert.False(t, published.Before(before.Truncate(time.Second)))

	assert.NotContains(t, entity, "url")
	assert.NotContains(t, entity, "version")
	assert.NotContains(t, entity, "processingSteps")
	assert.NotContains(t, entity, "qualityScore")
	assert.NotContains(t, entity, "validationStatus")
}

func TestEnrichMetadataAppendsToRootDataset(t *testing.T) {
	ledger := newTestLedger()
	metadata := map[string]interface{}{
		"@context": "https://w3id.org/ro/crate/1.1/context",
		"@graph": []interface{}{
			map[string]interface{}{
				"@id":   "ro-crate-metadata.json",
				"@type": "CreativeWork",
			},
			map[string]interface{}{
				"@id":   "./",
				"@type": "Dataset",
				"hasPart": []interface{}{
					map[string]interface{}{"@id": "data/genes_normalized.json"},
				},
			},
		},
	}

	records := []domain.Provenance{
		domain.NewProvenance("clinvar", "coordinator"),
		domain.NewProvenance("uniprot", "coordinator"),
	}
	enriched := ledger.EnrichMetadata(metadata, records)

	graph := enriched["@graph"].([]interface{})
	root := graph[1].(map[string]interface{})
	hasPart := root["hasPart"].([]interface{})
	require.Len(t, hasPart, 3)

	first := hasPart[1].(map[string]interface{})
	assert.Equal(t, "DataDownload", first["@type"])
	assert.Equal(t, "clinvar", first["name"])
	second := hasPart[2].(map[string]interface{})
	assert.Equal(t, "uniprot", second["name"])
}

func TestEnrichMetadataCreatesHasPart(t *testing.T) {
	ledger := newTestLedger()
	metadata := map[string]interface{}{
		"@graph": []interface{}{
			map[string]interface{}{"@id": "./", "@type": "Dataset"},
		},
	}

	enriched := ledger.EnrichMetadata(metadata, []domain.Provenance{
		domain.NewProvenance("pubmed", "coordinator"),
	})

	root := enriched["@graph"].([]interface{})[0].(map[string]interface{})
	hasPart := root["hasPart"].([]interface{})
	require.Len(t, hasPart, 1)
}

func TestEnrichMetadataWithoutGraph(t *testing.T) {
	ledger := newTestLedger()
	metadata := map[string]interface{}{"name": "orphan"}

	enriched := ledger.EnrichMetadata(metadata, []domain.Provenance{
		domain.NewProvenance("hpo", "coordinator"),
	})

	assert.Equal(t, map[string]interface{}{"name": "orphan"}, enriched)
}

func TestWriteFile(t *testing.T) {
	ledger := newTestLedger()
	path := filepath.Join(t.TempDir(), "meta", "provenance.json")

	records := []domain.Provenance{
		domain.NewProvenance("clinvar", "coordinator").WithVersion("2026-07"),
	}
	require.NoError(t, ledger.WriteFile(records, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var document struct {
		Sources []map[string]interface{} `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(data, &document))
	require.Len(t, document.Sources, 1)
	assert.Equal(t, "clinvar", document.Sources[0]["name"])
	assert.Equal(t, "2026-07", document.Sources[0]["version"])
}

func TestWriteFileEmptyRecords(t *testing.T) {
	ledger := newTestLedger()
	path := filepath.Join(t.TempDir(), "provenance.json")

	require.NoError(t, ledger.WriteFile(nil, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sources": []}`, string(data))
}
