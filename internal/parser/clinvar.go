package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/biodata-harvester/internal/domain"
)

// ClinVarParser parses ClinVar VariationArchive XML into variant records.
// It scans the token stream for VariationArchive elements, so it accepts
// both full release sets and E-utilities fetch envelopes.
type ClinVarParser struct {
	log *logrus.Logger
}

// NewClinVarParser creates a ClinVar XML parser.
func NewClinVarParser(logger *logrus.Logger) *ClinVarParser {
	return &ClinVarParser{log: logger}
}

// Source identifies this parser's upstream.
func (p *ClinVarParser) Source() domain.SourceName {
	return domain.SourceClinVar
}

// variationArchiveXML mirrors the subset of the VariationArchive schema the
// engine consumes. Unmodeled children are collected for debug logging.
type variationArchiveXML struct {
	VariationID   string `xml:"VariationID,attr"`
	VariationName string `xml:"VariationName,attr"`
	Record        struct {
		SimpleAllele struct {
			Genes []struct {
				Symbol string `xml:"Symbol,attr"`
				GeneID string `xml:"GeneID,attr"`
			} `xml:"GeneList>Gene"`
			Locations []struct {
				Assembly  string `xml:"Assembly,attr"`
				Chr       string `xml:"Chr,attr"`
				Start     string `xml:"start,attr"`
				Reference string `xml:"referenceAlleleVCF,attr"`
				Alternate string `xml:"alternateAlleleVCF,attr"`
			} `xml:"Location>SequenceLocation"`
			HGVSExpressions []string `xml:"HGVSlist>HGVS>NucleotideExpression>Expression"`
		} `xml:"SimpleAllele"`
		ClinicalSignificance struct {
			Description  string `xml:"Description"`
			ReviewStatus string `xml:"ReviewStatus"`
		} `xml:"ClinicalSignificance"`
		Traits []struct {
			Names []string `xml:"Name>ElementValue"`
		} `xml:"TraitSet>Trait"`
	} `xml:"ClassifiedRecord"`
	Unhandled []unhandledXML `xml:",any"`
}

// unhandledXML captures elements the engine does not model so they can be
// surfaced at debug level rather than dropped silently.
type unhandledXML struct {
	XMLName xml.Name
}

// Parse decodes every VariationArchive element in the payload.
func (p *ClinVarParser) Parse(r io.Reader) (*Output, error) {
	cr := &countingReader{r: r}
	dec := xml.NewDecoder(cr)
	out := &Output{Source: domain.SourceClinVar}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading ClinVar XML: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "VariationArchive" {
			continue
		}

		var va variationArchiveXML
		if err := dec.DecodeElement(&va, &start); err != nil {
			out.Issues = append(out.Issues, fmt.Sprintf("malformed VariationArchive: %v", err))
			out.SkippedRecords++
			continue
		}

		rec, issues := p.toRecord(&va)
		out.Issues = append(out.Issues, issues...)
		if rec == nil {
			out.SkippedRecords++
			continue
		}
		out.ClinVar = append(out.ClinVar, *rec)
	}

	out.BytesRead = cr.n
	p.log.WithFields(logrus.Fields{
		"source":  domain.SourceClinVar,
		"records": len(out.ClinVar),
		"skipped": out.SkippedRecords,
		"bytes":   out.BytesRead,
	}).Debug("ClinVar parse finished")
	return out, nil
}

// toRecord converts one decoded archive into a record, preferring GRCh38
// coordinates when several assemblies are present.
func (p *ClinVarParser) toRecord(va *variationArchiveXML) (*domain.ClinVarRecord, []string) {
	var issues []string
	if va.VariationID == "" {
		return nil, []string{"VariationArchive without VariationID"}
	}

	rec := domain.ClinVarRecord{
		VariationID:          va.VariationID,
		Title:                va.VariationName,
		ClinicalSignificance: strings.TrimSpace(va.Record.ClinicalSignificance.Description),
		ReviewStatus:         strings.TrimSpace(va.Record.ClinicalSignificance.ReviewStatus),
		HGVSExpressions:      va.Record.SimpleAllele.HGVSExpressions,
	}

	if len(va.Record.SimpleAllele.Genes) > 0 {
		rec.GeneSymbol = va.Record.SimpleAllele.Genes[0].Symbol
		rec.GeneID = va.Record.SimpleAllele.Genes[0].GeneID
	}

	for _, loc := range va.Record.SimpleAllele.Locations {
		if loc.Assembly != "GRCh38" {
			continue
		}
		rec.Assembly = loc.Assembly
		rec.Chromosome = loc.Chr
		rec.Reference = loc.Reference
		rec.Alternate = loc.Alternate
		if loc.Start != "" {
			pos, err := strconv.ParseInt(loc.Start, 10, 64)
			if err != nil {
				issues = append(issues, fmt.Sprintf("variation %s: unparseable position %q", va.VariationID, loc.Start))
			} else {
				rec.Position = pos
			}
		}
		break
	}

	for _, trait := range va.Record.Traits {
		for _, name := range trait.Names {
			name = strings.TrimSpace(name)
			if name != "" {
				rec.Phenotypes = append(rec.Phenotypes, name)
			}
		}
	}

	for _, u := range va.Unhandled {
		p.log.WithFields(logrus.Fields{
			"variation_id": va.VariationID,
			"element":      u.XMLName.Local,
		}).Debug("unmodeled ClinVar element")
	}

	return &rec, issues
}

// ValidateClinVarRecord reports data-quality issues on a parsed record.
func ValidateClinVarRecord(rec *domain.ClinVarRecord) []string {
	var issues []string
	if rec.VariationID == "" {
		issues = append(issues, "clinvar record missing variation id")
	}
	if rec.Chromosome != "" && !domain.ChromosomePattern.MatchString(rec.Chromosome) {
		issues = append(issues, fmt.Sprintf("clinvar record %s: invalid chromosome %q", rec.VariationID, rec.Chromosome))
	}
	if rec.Position < 0 {
		issues = append(issues, fmt.Sprintf("clinvar record %s: negative position", rec.VariationID))
	}
	return issues
}
