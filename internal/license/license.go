// Package license checks data-source licenses against a package license
// and emits the compliance manifest embedded in every published package.
package license

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/biodata-harvester/internal/domain"
)

// DefaultPackageLicense is assumed when no package license is configured.
const DefaultPackageLicense = "CC-BY-4.0"

// compatibilityMatrix lists, per license, the licenses its data may be
// combined with. Permissive licenses are mutually compatible; GPL-3.0 only
// tolerates itself. Matching is case- and whitespace-sensitive.
var compatibilityMatrix = map[string][]string{
	"CC-BY-4.0":  {"CC-BY-4.0", "CC0-1.0", "MIT", "Apache-2.0"},
	"CC0-1.0":    {"CC-BY-4.0", "CC0-1.0", "MIT", "Apache-2.0"},
	"MIT":        {"CC-BY-4.0", "CC0-1.0", "MIT", "Apache-2.0"},
	"Apache-2.0": {"CC-BY-4.0", "CC0-1.0", "MIT", "Apache-2.0"},
	"GPL-3.0":    {"GPL-3.0"},
}

// SourceLicense names the license a data source was published under.
type SourceLicense struct {
	Source      string `yaml:"source" json:"source"`
	License     string `yaml:"license" json:"license"`
	LicenseURL  string `yaml:"license_url,omitempty" json:"license_url,omitempty"`
	Attribution string `yaml:"attribution,omitempty" json:"attribution,omitempty"`
}

// Compliance summarizes the manifest's overall verdict.
type Compliance struct {
	Status   string   `yaml:"status" json:"status"`
	Issues   []string `yaml:"issues" json:"issues"`
	Warnings []string `yaml:"warnings" json:"warnings"`
}

// Manifest is the license-compatibility record shipped inside a package.
type Manifest struct {
	PackageLicense string          `yaml:"package_license" json:"package_license"`
	Sources        []SourceLicense `yaml:"sources" json:"sources"`
	Compliance     Compliance      `yaml:"compliance" json:"compliance"`
}

// Validator checks source licenses against one package license.
type Validator struct {
	log            *logrus.Logger
	packageLicense string
}

// NewValidator builds a validator; an empty packageLicense selects the
// default.
func NewValidator(log *logrus.Logger, packageLicense string) *Validator {
	if packageLicense == "" {
		packageLicense = DefaultPackageLicense
	}
	return &Validator{log: log, packageLicense: packageLicense}
}

// PackageLicense returns the configured package license.
func (v *Validator) PackageLicense() string {
	return v.packageLicense
}

// Check classifies one source license against a package license.
func Check(packageLicense, sourceLicense string) domain.LicenseCompatibility {
	if packageLicense == "" || packageLicense == "unknown" ||
		sourceLicense == "" || sourceLicense == "unknown" {
		return domain.LicenseMissing
	}
	if packageLicense == sourceLicense {
		return domain.LicenseCompatible
	}
	for _, compatible := range compatibilityMatrix[packageLicense] {
		if compatible == sourceLicense {
			return domain.LicenseCompatible
		}
	}
	return domain.LicenseIncompatible
}

// GenerateManifest checks every source and assembles the manifest. A
// missing license is a warning; an incompatible one is an issue and turns
// the status non-compliant. When outputPath is non-empty, the manifest is
// also written there as YAML.
func (v *Validator) GenerateManifest(sources []SourceLicense, outputPath string) (*Manifest, error) {
	manifest := &Manifest{
		PackageLicense: v.packageLicense,
		Sources:        sources,
		Compliance: Compliance{
			Status:   "compliant",
			Issues:   []string{},
			Warnings: []string{},
		},
	}

	for _, source := range sources {
		switch Check(v.packageLicense, source.License) {
		case domain.LicenseMissing:
			warning := fmt.Sprintf("Missing license for source: %s", source.Source)
			manifest.Compliance.Warnings = append(manifest.Compliance.Warnings, warning)
			v.log.WithField("source", source.Source).Warn("Source has no license information")
		case domain.LicenseIncompatible:
			issue := fmt.Sprintf("Incompatible license '%s' from source '%s'", source.License, source.Source)
			manifest.Compliance.Issues = append(manifest.Compliance.Issues, issue)
			manifest.Compliance.Status = "non-compliant"
			v.log.WithFields(logrus.Fields{
				"source":  source.Source,
				"license": source.License,
			}).Error("Source license is incompatible with the package license")
		}
	}

	if outputPath != "" {
		if err := writeManifest(manifest, outputPath); err != nil {
			return nil, err
		}
	}
	return manifest, nil
}

func writeManifest(manifest *Manifest, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ValidationReport is the outcome of validating a manifest file.
type ValidationReport struct {
	Valid    bool     `json:"valid"`
	Issues   []string `json:"issues"`
	Warnings []string `json:"warnings"`
}

// ValidateManifestFile reads a manifest from disk and validates its shape
// and its sources against the validator's package license.
func (v *Validator) ValidateManifestFile(path string) *ValidationReport {
	report := &ValidationReport{Valid: true, Issues: []string{}, Warnings: []string{}}
	invalid := func(format string, args ...interface{}) *ValidationReport {
		report.Valid = false
		report.Issues = append(report.Issues, fmt.Sprintf(format, args...))
		return report
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return invalid("manifest file not readable: %v", err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return invalid("manifest is not a YAML mapping: %v", err)
	}
	if raw == nil {
		return invalid("manifest is empty")
	}
	if _, ok := raw["package_license"].(string); !ok {
		return invalid("manifest is missing package_license")
	}
	rawSources, ok := raw["sources"].([]interface{})
	if !ok {
		return invalid("manifest sources must be a list")
	}

	for i, rawSource := range rawSources {
		entry, ok := rawSource.(map[string]interface{})
		if !ok {
			return invalid("manifest source %d is not a mapping", i)
		}
		name, _ := entry["source"].(string)
		lic, _ := entry["license"].(string)
		switch Check(v.packageLicense, lic) {
		case domain.LicenseMissing:
			report.Warnings = append(report.Warnings, fmt.Sprintf("Missing license for source: %s", name))
		case domain.LicenseIncompatible:
			report.Valid = false
			report.Issues = append(report.Issues, fmt.Sprintf("Incompatible license '%s' from source '%s'", lic, name))
		}
	}
	return report
}
