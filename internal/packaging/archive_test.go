package packaging

import (
	"archive/zip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArchiver(t *testing.T) *Archiver {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewArchiver(log, t.TempDir())
}

func buildTestPackage(t *testing.T) string {
	t.Helper()
	packagePath := filepath.Join(t.TempDir(), "brca1-harvest")
	require.NoError(t, os.MkdirAll(filepath.Join(packagePath, "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(packagePath, metadataFileName), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(packagePath, "data", "genes_normalized.json"), []byte(`[]`), 0o644))
	return packagePath
}

func TestArchivePackage(t *testing.T) {
	archiver := newTestArchiver(t)
	packagePath := buildTestPackage(t)

	archivedPath, err := archiver.ArchivePackage(packagePath, "1.0.0", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(archiver.storageBase, "brca1-harvest", "1.0.0"), archivedPath)

	// The tree is copied in full.
	_, err = os.Stat(filepath.Join(archivedPath, "data", "genes_normalized.json"))
	assert.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(archivedPath, archiveMetadataFileName))
	require.NoError(t, err)
	var meta archiveMetadata
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, "brca1-harvest", meta.Name)
	assert.Equal(t, "1.0.0", meta.Version)
	assert.Equal(t, 2, meta.FileCount)
	assert.False(t, meta.ArchivedAt.IsZero())
}

func TestCreateZipArchive(t *testing.T) {
	archiver := newTestArchiver(t)
	packagePath := buildTestPackage(t)

	zipPath, err := archiver.CreateZipArchive(packagePath, "1.0.0", "brca1-harvest")
	require.NoError(t, err)
	assert.Equal(t,
		filepath.Join(archiver.storageBase, "brca1-harvest", "brca1-harvest-v1.0.0.zip"),
		zipPath)

	reader, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer reader.Close()

	names := make([]string, 0, len(reader.File))
	for _, file := range reader.File {
		names = append(names, file.Name)
	}
	assert.ElementsMatch(t, []string{
		"ro-crate-metadata.json",
		"data/genes_normalized.json",
	}, names)
}

func TestListVersionsAndLatest(t *testing.T) {
	archiver := newTestArchiver(t)
	packagePath := buildTestPackage(t)

	for _, version := range []string{"1.0.10", "1.0.2", "1.0.1"} {
		_, err := archiver.ArchivePackage(packagePath, version, "brca1-harvest")
		require.NoError(t, err)
	}

	versions, err := archiver.ListVersions("brca1-harvest")
	require.NoError(t, err)
	// Lexicographic, not semantic, ordering.
	assert.Equal(t, []string{"1.0.1", "1.0.10", "1.0.2"}, versions)

	latest, ok := archiver.GetLatestVersion("brca1-harvest")
	assert.True(t, ok)
	assert.Equal(t, "1.0.2", latest)
}

func TestListVersionsUnknownPackage(t *testing.T) {
	archiver := newTestArchiver(t)

	versions, err := archiver.ListVersions("missing")
	require.NoError(t, err)
	assert.Empty(t, versions)

	_, ok := archiver.GetLatestVersion("missing")
	assert.False(t, ok)
}
