// Package normalize converts typed source records into canonical entities
// with confidence scores and cross-reference maps. One normalizer service is
// created per pipeline invocation; its caches are never shared across
// concurrent runs.
package normalize

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/biodata-harvester/internal/domain"
)

// Confidence bases per source. Scores reflect curation depth: HPO terms are
// hand-curated ontology entries, ClinVar and PubMed records are reviewed
// submissions, UniProt annotations mix reviewed and predicted content.
const (
	ClinVarConfidence = 0.9
	UniProtConfidence = 0.8
	HPOConfidence     = 0.95
	PubMedConfidence  = 0.9
	GenericConfidence = 0.55

	// MergeBoost is added to the base confidence when independent sources
	// agree on an entity, capped at 1.0.
	MergeBoost = 0.1

	cacheSize = 4096
)

// Service normalizes source records into canonical entities.
type Service struct {
	log          *logrus.Logger
	geneCache    *lru.Cache[string, domain.NormalizedGene]
	variantCache *lru.Cache[string, domain.NormalizedVariant]
}

// NewService creates a normalizer service with fresh caches.
func NewService(logger *logrus.Logger) (*Service, error) {
	geneCache, err := lru.New[string, domain.NormalizedGene](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating gene cache: %w", err)
	}
	variantCache, err := lru.New[string, domain.NormalizedVariant](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating variant cache: %w", err)
	}
	return &Service{
		log:          logger,
		geneCache:    geneCache,
		variantCache: variantCache,
	}, nil
}

// CachedVariant returns the previously normalized variant for a primary id.
func (s *Service) CachedVariant(primaryID string) (domain.NormalizedVariant, bool) {
	return s.variantCache.Get(primaryID)
}

// CachedGene returns the previously normalized gene for a primary id.
func (s *Service) CachedGene(primaryID string) (domain.NormalizedGene, bool) {
	return s.geneCache.Get(primaryID)
}

// capConfidence clamps a score to [0, 1].
func capConfidence(score float64) float64 {
	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}
