package normalize

import (
	"strings"
	"time"

	"github.com/biodata-harvester/internal/domain"
)

// NormalizePubMedRecord derives a canonical publication from a PubMed
// article. Returns nil when no identifier can be detected.
func (s *Service) NormalizePubMedRecord(rec *domain.PubMedRecord) *domain.NormalizedPublication {
	primaryID, idType := DetectPublicationID(rec.PMID)
	if primaryID == "" {
		return nil
	}

	pub := domain.NormalizedPublication{
		PrimaryID:  primaryID,
		IDType:     idType,
		Title:      rec.Title,
		Authors:    append([]string(nil), rec.Authors...),
		Journal:    rec.Journal,
		DOI:        rec.DOI,
		PMCID:      rec.PMCID,
		CrossRefs:  domain.CrossRefs{},
		Source:     domain.SourcePubMed.String(),
		Confidence: PubMedConfidence,
	}
	if idType == domain.IDTypePubMed {
		pub.PubMedID = primaryID
	}
	pub.CrossRefs.Add("pubmed", rec.PMID)
	pub.CrossRefs.Add("doi", rec.DOI)
	pub.CrossRefs.Add("pmc", rec.PMCID)
	pub.PubDate = parsePubDate(rec.PubYear, rec.PubMonth)
	return &pub
}

// NormalizeUniProtReference derives a canonical publication from a UniProt
// citation. Returns nil when the citation carries no usable identifier.
func (s *Service) NormalizeUniProtReference(ref *domain.UniProtReference) *domain.NormalizedPublication {
	candidate := ref.PubMedID
	if candidate == "" {
		candidate = ref.DOI
	}
	primaryID, idType := DetectPublicationID(candidate)
	if primaryID == "" {
		if ref.Title == "" {
			return nil
		}
		primaryID, idType = ref.Title, domain.IDTypeOther
	}

	pub := domain.NormalizedPublication{
		PrimaryID:  primaryID,
		IDType:     idType,
		Title:      ref.Title,
		Authors:    append([]string(nil), ref.Authors...),
		Journal:    ref.Journal,
		DOI:        ref.DOI,
		CrossRefs:  domain.CrossRefs{},
		Source:     domain.SourceUniProt.String(),
		Confidence: UniProtConfidence,
	}
	if idType == domain.IDTypePubMed {
		pub.PubMedID = primaryID
	}
	pub.CrossRefs.Add("pubmed", ref.PubMedID)
	pub.CrossRefs.Add("doi", ref.DOI)
	pub.PubDate = parsePubDate(ref.PubYear, "")
	return &pub
}

// DetectPublicationID classifies a raw publication identifier. Detection
// order: numeric PubMed id, then DOI, then PMC accession; anything else is
// OTHER (and empty input stays empty).
func DetectPublicationID(raw string) (string, domain.IdentifierType) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.IDTypeOther
	}
	switch {
	case domain.PubMedIDPattern.MatchString(raw):
		return raw, domain.IDTypePubMed
	case domain.DOIPattern.MatchString(raw):
		return raw, domain.IDTypeDOI
	case domain.PMCIDPattern.MatchString(raw):
		return raw, domain.IDTypePMC
	default:
		return raw, domain.IDTypeOther
	}
}

// parsePubDate builds a publication timestamp from loose year/month fields.
func parsePubDate(year, month string) *time.Time {
	if year == "" {
		return nil
	}
	layouts := []string{"2006 Jan", "2006 January", "2006 1", "2006 01"}
	if month != "" {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, year+" "+month); err == nil {
				t = t.UTC()
				return &t
			}
		}
	}
	if t, err := time.Parse("2006", year); err == nil {
		t = t.UTC()
		return &t
	}
	return nil
}
