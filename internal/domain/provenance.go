package domain

import (
	"time"
)

// Provenance records the lineage of an acquired record or ingestion run:
// where it came from, when, by whom, and what processing it has been through.
// Provenance values are immutable; derivation methods return copies.
type Provenance struct {
	Source           string            `json:"source"`
	SourceVersion    string            `json:"source_version,omitempty"`
	SourceURL        string            `json:"source_url,omitempty"`
	AcquiredAt       time.Time         `json:"acquired_at"`
	AcquiredBy       string            `json:"acquired_by"`
	ProcessingSteps  []string          `json:"processing_steps"`
	QualityScore     *float64          `json:"quality_score,omitempty"`
	ValidationStatus ValidationStatus  `json:"validation_status"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// NewProvenance creates a provenance record for a freshly acquired record.
func NewProvenance(source, acquiredBy string) Provenance {
	return Provenance{
		Source:           source,
		AcquiredAt:       time.Now().UTC(),
		AcquiredBy:       acquiredBy,
		ProcessingSteps:  []string{},
		ValidationStatus: ValidationPending,
	}
}

// WithStep returns a copy with the processing step appended.
func (p Provenance) WithStep(step string) Provenance {
	out := p.clone()
	out.ProcessingSteps = append(out.ProcessingSteps, step)
	return out
}

// WithQualityScore returns a copy carrying the given quality score.
// Scores are clamped to [0, 1].
func (p Provenance) WithQualityScore(score float64) Provenance {
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	out := p.clone()
	out.QualityScore = &score
	return out
}

// WithVersion returns a copy carrying the upstream release version.
func (p Provenance) WithVersion(version string) Provenance {
	out := p.clone()
	out.SourceVersion = version
	return out
}

// WithURL returns a copy carrying the upstream URL.
func (p Provenance) WithURL(url string) Provenance {
	out := p.clone()
	out.SourceURL = url
	return out
}

// WithMetadata returns a copy with the key/value pair added to metadata.
func (p Provenance) WithMetadata(key, value string) Provenance {
	out := p.clone()
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	out.Metadata[key] = value
	return out
}

// MarkValidated returns a copy with validation status set to validated.
func (p Provenance) MarkValidated() Provenance {
	out := p.clone()
	out.ValidationStatus = ValidationValidated
	return out
}

// MarkFailed returns a copy with validation status set to failed.
func (p Provenance) MarkFailed() Provenance {
	out := p.clone()
	out.ValidationStatus = ValidationFailed
	return out
}

// clone deep-copies the provenance so derivations never alias the original's
// slices or maps.
func (p Provenance) clone() Provenance {
	out := p
	out.ProcessingSteps = make([]string, len(p.ProcessingSteps))
	copy(out.ProcessingSteps, p.ProcessingSteps)
	if p.QualityScore != nil {
		score := *p.QualityScore
		out.QualityScore = &score
	}
	if p.Metadata != nil {
		out.Metadata = make(map[string]string, len(p.Metadata))
		for k, v := range p.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
