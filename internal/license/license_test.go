package license

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/biodata-harvester/internal/domain"
)

func newTestValidator(packageLicense string) *Validator {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewValidator(log, packageLicense)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name           string
		packageLicense string
		sourceLicense  string
		want           domain.LicenseCompatibility
	}{
		{"exact match", "CC-BY-4.0", "CC-BY-4.0", domain.LicenseCompatible},
		{"permissive pair", "CC-BY-4.0", "MIT", domain.LicenseCompatible},
		{"apache under cc0", "CC0-1.0", "Apache-2.0", domain.LicenseCompatible},
		{"gpl with itself", "GPL-3.0", "GPL-3.0", domain.LicenseCompatible},
		{"gpl source under permissive", "CC-BY-4.0", "GPL-3.0", domain.LicenseIncompatible},
		{"permissive source under gpl", "GPL-3.0", "MIT", domain.LicenseIncompatible},
		{"empty source license", "CC-BY-4.0", "", domain.LicenseMissing},
		{"unknown source license", "CC-BY-4.0", "unknown", domain.LicenseMissing},
		{"empty package license", "", "MIT", domain.LicenseMissing},
		{"unrecognized package license", "WTFPL", "MIT", domain.LicenseIncompatible},
		{"case sensitive", "CC-BY-4.0", "mit", domain.LicenseIncompatible},
		{"whitespace sensitive", "CC-BY-4.0", " MIT", domain.LicenseIncompatible},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Check(tc.packageLicense, tc.sourceLicense))
		})
	}
}

// Compatibility is symmetric across the known licenses.
func TestCheckSymmetry(t *testing.T) {
	licenses := []string{"CC-BY-4.0", "CC0-1.0", "MIT", "Apache-2.0", "GPL-3.0"}
	for _, a := range licenses {
		for _, b := range licenses {
			assert.Equal(t, Check(a, b), Check(b, a), "Check(%s, %s)", a, b)
		}
	}
}

func TestNewValidatorDefaultsPackageLicense(t *testing.T) {
	v := newTestValidator("")
	assert.Equal(t, "CC-BY-4.0", v.PackageLicense())
}

func TestGenerateManifestCompliant(t *testing.T) {
	v := newTestValidator("CC-BY-4.0")
	sources := []SourceLicense{
		{Source: "clinvar", License: "CC0-1.0", LicenseURL: "https://www.ncbi.nlm.nih.gov/clinvar/"},
		{Source: "uniprot", License: "CC-BY-4.0", Attribution: "The UniProt Consortium"},
	}

	manifest, err := v.GenerateManifest(sources, "")
	require.NoError(t, err)

	assert.Equal(t, "CC-BY-4.0", manifest.PackageLicense)
	assert.Equal(t, sources, manifest.Sources)
	assert.Equal(t, "compliant", manifest.Compliance.Status)
	assert.Empty(t, manifest.Compliance.Issues)
	assert.Empty(t, manifest.Compliance.Warnings)
}

func TestGenerateManifestEmptySources(t *testing.T) {
	v := newTestValidator("CC-BY-4.0")

	manifest, err := v.GenerateManifest(nil, "")
	require.NoError(t, err)

	assert.Equal(t, "compliant", manifest.Compliance.Status)
	assert.Equal(t, []string{}, manifest.Compliance.Issues)
	assert.Equal(t, []string{}, manifest.Compliance.Warnings)
}

func TestGenerateManifestIssuesAndWarnings(t *testing.T) {
	v := newTestValidator("CC-BY-4.0")
	sources := []SourceLicense{
		{Source: "clinvar", License: "CC0-1.0"},
		{Source: "hpo", License: ""},
		{Source: "dbgap", License: "GPL-3.0"},
	}

	manifest, err := v.GenerateManifest(sources, "")
	require.NoError(t, err)

	assert.Equal(t, "non-compliant", manifest.Compliance.Status)
	assert.Equal(t, []string{"Missing license for source: hpo"}, manifest.Compliance.Warnings)
	assert.Equal(t, []string{"Incompatible license 'GPL-3.0' from source 'dbgap'"}, manifest.Compliance.Issues)
}

func TestGenerateManifestWritesYAML(t *testing.T) {
	v := newTestValidator("CC-BY-4.0")
	path := filepath.Join(t.TempDir(), "meta", "license_manifest.yaml")

	_, err := v.GenerateManifest([]SourceLicense{
		{Source: "pubmed", License: "unknown"},
	}, path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Manifest
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "CC-BY-4.0", decoded.PackageLicense)
	assert.Equal(t, "compliant", decoded.Compliance.Status)
	assert.Equal(t, []string{"Missing license for source: pubmed"}, decoded.Compliance.Warnings)
}

func TestValidateManifestFile(t *testing.T) {
	v := newTestValidator("CC-BY-4.0")
	dir := t.TempDir()
	write := func(name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("valid manifest", func(t *testing.T) {
		path := write("valid.yaml", `package_license: CC-BY-4.0
sources:
  - source: clinvar
    license: CC0-1.0
    license_url: https://www.ncbi.nlm.nih.gov/clinvar/
`)
		report := v.ValidateManifestFile(path)
		assert.True(t, report.Valid)
		assert.Empty(t, report.Issues)
		assert.Empty(t, report.Warnings)
	})

	t.Run("missing file", func(t *testing.T) {
		report := v.ValidateManifestFile(filepath.Join(dir, "absent.yaml"))
		assert.False(t, report.Valid)
		require.Len(t, report.Issues, 1)
	})

	t.Run("not a mapping", func(t *testing.T) {
		path := write("scalar.yaml", "- just\n- a\n- list\n")
		report := v.ValidateManifestFile(path)
		assert.False(t, report.Valid)
	})

	t.Run("missing package license", func(t *testing.T) {
		path := write("nopkg.yaml", "sources: []\n")
		report := v.ValidateManifestFile(path)
		assert.False(t, report.Valid)
		assert.Contains(t, report.Issues[0], "package_license")
	})

	t.Run("sources not a list", func(t *testing.T) {
		path := write("badsources.yaml", "package_license: CC-BY-4.0\nsources: nope\n")
		report := v.ValidateManifestFile(path)
		assert.False(t, report.Valid)
		assert.Contains(t, report.Issues[0], "sources")
	})

	t.Run("source not a mapping", func(t *testing.T) {
		path := write("badentry.yaml", "package_license: CC-BY-4.0\nsources:\n  - just-a-string\n")
		report := v.ValidateManifestFile(path)
		assert.False(t, report.Valid)
	})

	t.Run("incompatible source flips valid", func(t *testing.T) {
		path := write("gpl.yaml", `package_license: CC-BY-4.0
sources:
  - source: dbgap
    license: GPL-3.0
  - source: hpo
    license: ""
`)
		report := v.ValidateManifestFile(path)
		assert.False(t, report.Valid)
		assert.Equal(t, []string{"Incompatible license 'GPL-3.0' from source 'dbgap'"}, report.Issues)
		assert.Equal(t, []string{"Missing license for source: hpo"}, report.Warnings)
	})
}
