package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/biodata-harvester/internal/domain"
)

// UniProtParser parses UniProtKB JSON entries. It accepts the REST API
// envelope ({"results": [...]}), a bare array of entries, or a single entry.
type UniProtParser struct {
	log *logrus.Logger
}

// NewUniProtParser creates a UniProtKB JSON parser.
func NewUniProtParser(logger *logrus.Logger) *UniProtParser {
	return &UniProtParser{log: logger}
}

// Source identifies this parser's upstream.
func (p *UniProtParser) Source() domain.SourceName {
	return domain.SourceUniProt
}

type uniProtEntryJSON struct {
	PrimaryAccession   string `json:"primaryAccession"`
	UniProtKBID        string `json:"uniProtkbId"`
	ProteinDescription struct {
		RecommendedName struct {
			FullName struct {
				Value string `json:"value"`
			} `json:"fullName"`
		} `json:"recommendedName"`
	} `json:"proteinDescription"`
	Genes []struct {
		GeneName struct {
			Value string `json:"value"`
		} `json:"geneName"`
		Synonyms []struct {
			Value string `json:"value"`
		} `json:"synonyms"`
	} `json:"genes"`
	Organism struct {
		ScientificName string `json:"scientificName"`
		TaxonID        int64  `json:"taxonId"`
	} `json:"organism"`
	Sequence struct {
		Length int   `json:"length"`
		Mass   int64 `json:"mass"`
	} `json:"sequence"`
	Comments []struct {
		CommentType string `json:"commentType"`
		Texts       []struct {
			Value string `json:"value"`
		} `json:"texts"`
	} `json:"comments"`
	Features []json.RawMessage `json:"features"`
	References []struct {
		Citation struct {
			Title           string   `json:"title"`
			Authors         []string `json:"authors"`
			Journal         string   `json:"journal"`
			PublicationDate string   `json:"publicationDate"`
			CrossReferences []struct {
				Database string `json:"database"`
				ID       string `json:"id"`
			} `json:"citationCrossReferences"`
		} `json:"citation"`
	} `json:"references"`
	DBReferences []struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	} `json:"dbReferences"`
}

// uniProtKnownKeys lists the entry keys the engine models; anything else is
// preserved in the record's extras bag.
var uniProtKnownKeys = map[string]bool{
	"primaryAccession": true, "uniProtkbId": true, "proteinDescription": true,
	"genes": true, "organism": true, "sequence": true, "comments": true,
	"features": true, "references": true, "dbReferences": true,
}

// Parse decodes the payload into UniProt records.
func (p *UniProtParser) Parse(r io.Reader) (*Output, error) {
	cr := &countingReader{r: r}
	raw, err := io.ReadAll(cr)
	if err != nil {
		return nil, fmt.Errorf("reading UniProt payload: %w", err)
	}

	entries, err := splitUniProtEntries(raw)
	if err != nil {
		return nil, err
	}

	out := &Output{Source: domain.SourceUniProt, BytesRead: cr.n}
	for _, entry := range entries {
		rec, err := p.toRecord(entry)
		if err != nil {
			out.Issues = append(out.Issues, err.Error())
			out.SkippedRecords++
			continue
		}
		out.UniProt = append(out.UniProt, *rec)
	}

	p.log.WithFields(logrus.Fields{
		"source":  domain.SourceUniProt,
		"records": len(out.UniProt),
		"skipped": out.SkippedRecords,
		"bytes":   out.BytesRead,
	}).Debug("UniProt parse finished")
	return out, nil
}

// splitUniProtEntries unwraps the three accepted payload shapes into
// individual entry documents.
func splitUniProtEntries(raw []byte) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var entries []json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("decoding UniProt array: %w", err)
		}
		return entries, nil
	}

	var envelope struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decoding UniProt payload: %w", err)
	}
	if envelope.Results != nil {
		return envelope.Results, nil
	}
	return []json.RawMessage{json.RawMessage(raw)}, nil
}

func (p *UniProtParser) toRecord(entry json.RawMessage) (*domain.UniProtRecord, error) {
	var typed uniProtEntryJSON
	if err := json.Unmarshal(entry, &typed); err != nil {
		return nil, fmt.Errorf("malformed UniProt entry: %w", err)
	}
	if typed.PrimaryAccession == "" {
		return nil, fmt.Errorf("UniProt entry without primaryAccession")
	}

	rec := domain.UniProtRecord{
		PrimaryAccession: typed.PrimaryAccession,
		UniProtKBID:      typed.UniProtKBID,
		ProteinName:      typed.ProteinDescription.RecommendedName.FullName.Value,
		OrganismName:     typed.Organism.ScientificName,
		TaxonID:          typed.Organism.TaxonID,
		SequenceLength:   typed.Sequence.Length,
		SequenceMass:     typed.Sequence.Mass,
	}

	if len(typed.Genes) > 0 {
		rec.GeneSymbol = typed.Genes[0].GeneName.Value
		for _, syn := range typed.Genes[0].Synonyms {
			if syn.Value != "" {
				rec.GeneSynonyms = append(rec.GeneSynonyms, syn.Value)
			}
		}
	}

	for _, c := range typed.Comments {
		if !strings.EqualFold(c.CommentType, "FUNCTION") {
			continue
		}
		for _, text := range c.Texts {
			if text.Value != "" {
				rec.FunctionComments = append(rec.FunctionComments, text.Value)
			}
		}
	}

	for _, ref := range typed.References {
		pub := domain.UniProtReference{
			Title:   ref.Citation.Title,
			Authors: ref.Citation.Authors,
			Journal: ref.Citation.Journal,
			PubYear: yearOf(ref.Citation.PublicationDate),
		}
		for _, xref := range ref.Citation.CrossReferences {
			switch strings.ToLower(xref.Database) {
			case "doi":
				pub.DOI = xref.ID
			case "pubmed":
				pub.PubMedID = xref.ID
			}
		}
		rec.References = append(rec.References, pub)
	}

	for _, xref := range typed.DBReferences {
		rec.DBReferences = append(rec.DBReferences, domain.UniProtDBReference{
			Type: xref.Type,
			ID:   xref.ID,
		})
	}

	// Surface keys the schema does not model instead of dropping them.
	var generic map[string]json.RawMessage
	if err := json.Unmarshal(entry, &generic); err == nil {
		for key, value := range generic {
			if uniProtKnownKeys[key] {
				continue
			}
			p.log.WithFields(logrus.Fields{
				"accession": rec.PrimaryAccession,
				"key":       key,
			}).Debug("unmodeled UniProt field")
			if rec.Extras == nil {
				rec.Extras = map[string]string{}
			}
			rec.Extras[key] = string(value)
		}
	}

	return &rec, nil
}

// yearOf extracts the leading year from a UniProt publication date, which
// may be "2015", "2015-05", or "2015-05-07".
func yearOf(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return date
}

// ValidateUniProtRecord reports data-quality issues on a parsed record.
func ValidateUniProtRecord(rec *domain.UniProtRecord) []string {
	var issues []string
	if rec.PrimaryAccession == "" {
		issues = append(issues, "uniprot record missing primary accession")
	}
	if rec.SequenceLength < 0 {
		issues = append(issues, fmt.Sprintf("uniprot record %s: negative sequence length", rec.PrimaryAccession))
	}
	return issues
}
