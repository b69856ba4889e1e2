// Package domain contains the core business entities and types for the
// biomedical data-harvesting engine: ingestion jobs, normalized entities
// (genes, variants, phenotypes, publications), relationship links,
// provenance records, and license compliance results.
//
// All entity types in this package are value types. Operations that change
// an entity return a new value; the original is never mutated. This keeps
// audit trails trustworthy and makes concurrent reads safe without locks.
package domain

import (
	"errors"
	"regexp"
)

// JobStatus represents the lifecycle state of an ingestion job.
type JobStatus string

const (
	JobPending   JobStatus = "PENDING"
	JobRunning   JobStatus = "RUNNING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
	JobPartial   JobStatus = "PARTIAL"
	JobCancelled JobStatus = "CANCELLED"
)

// IsValid validates the job status value.
func (s JobStatus) IsValid() bool {
	switch s {
	case JobPending, JobRunning, JobCompleted, JobFailed, JobPartial, JobCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status is absorbing: once a job reaches a
// terminal status it never transitions again.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobPartial, JobCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s JobStatus) String() string {
	return string(s)
}

// IngestionTrigger identifies what initiated an ingestion job.
type IngestionTrigger string

const (
	TriggerManual    IngestionTrigger = "MANUAL"
	TriggerScheduled IngestionTrigger = "SCHEDULED"
	TriggerAPI       IngestionTrigger = "API"
	TriggerRetry     IngestionTrigger = "RETRY"
)

// IsValid validates the trigger value.
func (t IngestionTrigger) IsValid() bool {
	switch t {
	case TriggerManual, TriggerScheduled, TriggerAPI, TriggerRetry:
		return true
	default:
		return false
	}
}

// String returns the string representation of the trigger.
func (t IngestionTrigger) String() string {
	return string(t)
}

// ErrorType classifies an ingestion error for retry decisions.
type ErrorType string

const (
	ErrorTimeout            ErrorType = "timeout"
	ErrorRateLimit          ErrorType = "rate_limit"
	ErrorTemporaryFailure   ErrorType = "temporary_failure"
	ErrorNetwork            ErrorType = "network_error"
	ErrorServiceUnavailable ErrorType = "service_unavailable"
	ErrorParse              ErrorType = "parse_error"
	ErrorValidation         ErrorType = "validation_error"
	ErrorAuthentication     ErrorType = "authentication_error"
	ErrorUnknown            ErrorType = "unknown"
)

// IsRecoverable reports whether a subsequent retry of the failed source is
// worthwhile. Only transient infrastructure conditions qualify; data-shaped
// failures (parse, validation) will fail again on retry.
func (e ErrorType) IsRecoverable() bool {
	switch e {
	case ErrorTimeout, ErrorRateLimit, ErrorTemporaryFailure, ErrorNetwork, ErrorServiceUnavailable:
		return true
	default:
		return false
	}
}

// String returns the string representation of the error type.
func (e ErrorType) String() string {
	return string(e)
}

// SourceName identifies a built-in upstream source.
type SourceName string

const (
	SourceClinVar SourceName = "clinvar"
	SourcePubMed  SourceName = "pubmed"
	SourceHPO     SourceName = "hpo"
	SourceUniProt SourceName = "uniprot"
)

// BuiltinSources lists the sources the coordinator targets by default, in
// canonical priority order.
func BuiltinSources() []SourceName {
	return []SourceName{SourceClinVar, SourceUniProt, SourceHPO, SourcePubMed}
}

// String returns the string representation of the source name.
func (s SourceName) String() string {
	return string(s)
}

// IdentifierType classifies the primary identifier of a normalized entity.
type IdentifierType string

const (
	IDTypeSymbol     IdentifierType = "SYMBOL"
	IDTypeHGNC       IdentifierType = "HGNC_ID"
	IDTypeEnsembl    IdentifierType = "ENSEMBL_ID"
	IDTypeUniProt    IdentifierType = "UNIPROT_ACCESSION"
	IDTypeClinVar    IdentifierType = "CLINVAR_ID"
	IDTypeRSID       IdentifierType = "RSID"
	IDTypeCoordinate IdentifierType = "GENOMIC_COORDINATE"
	IDTypeHPO        IdentifierType = "HPO_ID"
	IDTypePubMed     IdentifierType = "PUBMED_ID"
	IDTypeDOI        IdentifierType = "DOI"
	IDTypePMC        IdentifierType = "PMC_ID"
	IDTypeOther      IdentifierType = "OTHER"
)

// String returns the string representation of the identifier type.
func (i IdentifierType) String() string {
	return string(i)
}

// GeneVariantRelationship classifies the positional relationship between a
// variant and a gene.
type GeneVariantRelationship string

const (
	RelationshipCoding     GeneVariantRelationship = "CODING"
	RelationshipSpliceSite GeneVariantRelationship = "SPLICE_SITE"
	RelationshipUpstream   GeneVariantRelationship = "UPSTREAM"
	RelationshipDownstream GeneVariantRelationship = "DOWNSTREAM"
	// RelationshipWithinGene is part of the domain vocabulary but is not
	// emitted by the coordinate classifier; it is reserved for future
	// refinement of intragenic sub-regions.
	RelationshipWithinGene GeneVariantRelationship = "WITHIN_GENE"
)

// IsValid validates the gene-variant relationship value.
func (r GeneVariantRelationship) IsValid() bool {
	switch r {
	case RelationshipCoding, RelationshipSpliceSite, RelationshipUpstream,
		RelationshipDownstream, RelationshipWithinGene:
		return true
	default:
		return false
	}
}

// String returns the string representation of the relationship.
func (r GeneVariantRelationship) String() string {
	return string(r)
}

// VariantPhenotypeRelationship classifies the clinical relationship between
// a variant and a phenotype.
type VariantPhenotypeRelationship string

const (
	RelationshipCausative  VariantPhenotypeRelationship = "CAUSATIVE"
	RelationshipAssociated VariantPhenotypeRelationship = "ASSOCIATED"
	RelationshipProtective VariantPhenotypeRelationship = "PROTECTIVE"
	RelationshipModifier   VariantPhenotypeRelationship = "MODIFIER"
	RelationshipRiskFactor VariantPhenotypeRelationship = "RISK_FACTOR"
	RelationshipUncertain  VariantPhenotypeRelationship = "UNCERTAIN"
)

// IsValid validates the variant-phenotype relationship value.
func (r VariantPhenotypeRelationship) IsValid() bool {
	switch r {
	case RelationshipCausative, RelationshipAssociated, RelationshipProtective,
		RelationshipModifier, RelationshipRiskFactor, RelationshipUncertain:
		return true
	default:
		return false
	}
}

// String returns the string representation of the relationship.
func (r VariantPhenotypeRelationship) String() string {
	return string(r)
}

// ValidationStatus tracks the validation state of a provenance record.
type ValidationStatus string

const (
	ValidationPending   ValidationStatus = "pending"
	ValidationValidated ValidationStatus = "validated"
	ValidationFailed    ValidationStatus = "failed"
)

// String returns the string representation of the validation status.
func (v ValidationStatus) String() string {
	return string(v)
}

// PipelineStage identifies one of the five ETL stages.
type PipelineStage string

const (
	StageParse     PipelineStage = "PARSE"
	StageNormalize PipelineStage = "NORMALIZE"
	StageMap       PipelineStage = "MAP"
	StageValidate  PipelineStage = "VALIDATE"
	StageExport    PipelineStage = "EXPORT"
)

// String returns the string representation of the stage.
func (s PipelineStage) String() string {
	return string(s)
}

// StageStatus is the outcome of a single pipeline stage.
type StageStatus string

const (
	StageCompleted StageStatus = "COMPLETED"
	StagePartial   StageStatus = "PARTIAL"
	StageFailed    StageStatus = "FAILED"
)

// String returns the string representation of the stage status.
func (s StageStatus) String() string {
	return string(s)
}

// PipelineMode selects the execution strategy for the ETL pipeline.
type PipelineMode string

const (
	ModeSequential  PipelineMode = "sequential"
	ModeParallel    PipelineMode = "parallel"
	ModeIncremental PipelineMode = "incremental"
)

// IsValid validates the pipeline mode value.
func (m PipelineMode) IsValid() bool {
	switch m {
	case ModeSequential, ModeParallel, ModeIncremental:
		return true
	default:
		return false
	}
}

// String returns the string representation of the mode.
func (m PipelineMode) String() string {
	return string(m)
}

// CoordinatorPhase tracks the high-level progress of a coordinated run.
type CoordinatorPhase string

const (
	PhaseInitializing CoordinatorPhase = "INITIALIZING"
	PhaseIngesting    CoordinatorPhase = "INGESTING"
	PhaseProcessing   CoordinatorPhase = "PROCESSING"
	PhaseCompleted    CoordinatorPhase = "COMPLETED"
	PhaseFailed       CoordinatorPhase = "FAILED"
)

// String returns the string representation of the phase.
func (p CoordinatorPhase) String() string {
	return string(p)
}

// LicenseCompatibility is the outcome of a pairwise license check.
type LicenseCompatibility string

const (
	LicenseCompatible   LicenseCompatibility = "COMPATIBLE"
	LicenseIncompatible LicenseCompatibility = "INCOMPATIBLE"
	LicenseMissing      LicenseCompatibility = "MISSING"
)

// String returns the string representation of the compatibility outcome.
func (l LicenseCompatibility) String() string {
	return string(l)
}

// Identifier validation patterns shared across normalizers and validators.
var (
	GeneSymbolPattern  = regexp.MustCompile(`^[A-Z][A-Z0-9_-]*$`)
	ChromosomePattern  = regexp.MustCompile(`^(chr)?[0-9XYM]+$`)
	HPOIDPattern       = regexp.MustCompile(`^HP:\d+$`)
	PMCIDPattern       = regexp.MustCompile(`^PMC\d+$`)
	PubMedIDPattern    = regexp.MustCompile(`^\d+$`)
	DOIPattern         = regexp.MustCompile(`(?i)^10\.\d{4,9}/\S+$`)
	HGVSCodingPattern  = regexp.MustCompile(`^c\.\S+$`)
	HGVSProteinPattern = regexp.MustCompile(`^p\.\S+$`)
	HGVSGenomicPattern = regexp.MustCompile(`^g\.\S+$`)
)

// Sentinel errors shared across the engine.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid job status transition")
	ErrJobTerminal       = errors.New("job is in a terminal state")
	ErrNoParser          = errors.New("no parser available for source")
	ErrInvalidRecord     = errors.New("invalid source record")
)
