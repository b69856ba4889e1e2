package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/biodata-harvester/internal/domain"
)

// PubMedParser parses PubMed efetch XML into publication records.
type PubMedParser struct {
	log *logrus.Logger
}

// NewPubMedParser creates a PubMed XML parser.
func NewPubMedParser(logger *logrus.Logger) *PubMedParser {
	return &PubMedParser{log: logger}
}

// Source identifies this parser's upstream.
func (p *PubMedParser) Source() domain.SourceName {
	return domain.SourcePubMed
}

type pubmedArticleXML struct {
	MedlineCitation struct {
		PMID    string `xml:"PMID"`
		Article struct {
			Title    string `xml:"ArticleTitle"`
			Abstract struct {
				Texts []string `xml:"AbstractText"`
			} `xml:"Abstract"`
			Authors []struct {
				LastName string `xml:"LastName"`
				ForeName string `xml:"ForeName"`
				Initials string `xml:"Initials"`
				Collective string `xml:"CollectiveName"`
			} `xml:"AuthorList>Author"`
			Journal struct {
				Title   string `xml:"Title"`
				PubDate struct {
					Year  string `xml:"Year"`
					Month string `xml:"Month"`
				} `xml:"JournalIssue>PubDate"`
			} `xml:"Journal"`
		} `xml:"Article"`
	} `xml:"MedlineCitation"`
	PubmedData struct {
		ArticleIDs []struct {
			IDType string `xml:"IdType,attr"`
			Value  string `xml:",chardata"`
		} `xml:"ArticleIdList>ArticleId"`
	} `xml:"PubmedData"`
}

// Parse decodes every PubmedArticle element in the payload.
func (p *PubMedParser) Parse(r io.Reader) (*Output, error) {
	cr := &countingReader{r: r}
	dec := xml.NewDecoder(cr)
	out := &Output{Source: domain.SourcePubMed}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading PubMed XML: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "PubmedArticle" {
			continue
		}

		var art pubmedArticleXML
		if err := dec.DecodeElement(&art, &start); err != nil {
			out.Issues = append(out.Issues, fmt.Sprintf("malformed PubmedArticle: %v", err))
			out.SkippedRecords++
			continue
		}

		rec := p.toRecord(&art)
		if rec == nil {
			out.Issues = append(out.Issues, "PubmedArticle without PMID")
			out.SkippedRecords++
			continue
		}
		out.PubMed = append(out.PubMed, *rec)
	}

	out.BytesRead = cr.n
	p.log.WithFields(logrus.Fields{
		"source":  domain.SourcePubMed,
		"records": len(out.PubMed),
		"skipped": out.SkippedRecords,
		"bytes":   out.BytesRead,
	}).Debug("PubMed parse finished")
	return out, nil
}

func (p *PubMedParser) toRecord(art *pubmedArticleXML) *domain.PubMedRecord {
	pmid := strings.TrimSpace(art.MedlineCitation.PMID)
	if pmid == "" {
		return nil
	}

	rec := domain.PubMedRecord{
		PMID:     pmid,
		Title:    strings.TrimSpace(art.MedlineCitation.Article.Title),
		Abstract: strings.TrimSpace(strings.Join(art.MedlineCitation.Article.Abstract.Texts, " ")),
		Journal:  strings.TrimSpace(art.MedlineCitation.Article.Journal.Title),
		PubYear:  strings.TrimSpace(art.MedlineCitation.Article.Journal.PubDate.Year),
		PubMonth: strings.TrimSpace(art.MedlineCitation.Article.Journal.PubDate.Month),
	}

	for _, a := range art.MedlineCitation.Article.Authors {
		switch {
		case a.Collective != "":
			rec.Authors = append(rec.Authors, a.Collective)
		case a.LastName != "" && a.ForeName != "":
			rec.Authors = append(rec.Authors, a.LastName+" "+a.ForeName)
		case a.LastName != "" && a.Initials != "":
			rec.Authors = append(rec.Authors, a.LastName+" "+a.Initials)
		case a.LastName != "":
			rec.Authors = append(rec.Authors, a.LastName)
		}
	}

	for _, id := range art.PubmedData.ArticleIDs {
		value := strings.TrimSpace(id.Value)
		switch strings.ToLower(id.IDType) {
		case "doi":
			rec.DOI = value
		case "pmc":
			rec.PMCID = value
		case "pubmed":
			// Already carried as PMID.
		default:
			p.log.WithFields(logrus.Fields{
				"pmid":    pmid,
				"id_type": id.IDType,
			}).Debug("unmodeled PubMed article id type")
			if rec.Extras == nil {
				rec.Extras = map[string]string{}
			}
			rec.Extras["article_id_"+id.IDType] = value
		}
	}

	return &rec
}

// ValidatePubMedRecord reports data-quality issues on a parsed record.
func ValidatePubMedRecord(rec *domain.PubMedRecord) []string {
	var issues []string
	if rec.PMID == "" {
		issues = append(issues, "pubmed record missing pmid")
	} else if !domain.PubMedIDPattern.MatchString(rec.PMID) {
		issues = append(issues, fmt.Sprintf("pubmed record: non-numeric pmid %q", rec.PMID))
	}
	if rec.DOI != "" && !domain.DOIPattern.MatchString(rec.DOI) {
		issues = append(issues, fmt.Sprintf("pubmed record %s: malformed doi %q", rec.PMID, rec.DOI))
	}
	if rec.PMCID != "" && !domain.PMCIDPattern.MatchString(rec.PMCID) {
		issues = append(issues, fmt.Sprintf("pubmed record %s: malformed pmc id %q", rec.PMID, rec.PMCID))
	}
	return issues
}
