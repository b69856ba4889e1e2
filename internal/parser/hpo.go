package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/biodata-harvester/internal/domain"
)

// HPOParser parses Human Phenotype Ontology term listings. The input is a
// stream of key/value stanzas separated by blank lines:
//
//	hpo_id: HP:0001250
//	name: Seizure
//	definition: A seizure is an intermittent abnormality of nervous system...
//	synonyms: Epileptic seizure; Seizures
//	xrefs: UMLS:C0036572; SNOMEDCT_US:91175000
//
// Obsolete terms (is_obsolete: true) are parsed but flagged; downstream
// normalization skips them.
type HPOParser struct {
	log *logrus.Logger
}

// NewHPOParser creates an HPO term parser.
func NewHPOParser(logger *logrus.Logger) *HPOParser {
	return &HPOParser{log: logger}
}

// Source identifies this parser's upstream.
func (p *HPOParser) Source() domain.SourceName {
	return domain.SourceHPO
}

// Parse reads stanzas until EOF.
func (p *HPOParser) Parse(r io.Reader) (*Output, error) {
	cr := &countingReader{r: r}
	scanner := bufio.NewScanner(cr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	out := &Output{Source: domain.SourceHPO}

	current := map[string][]string{}
	flush := func() {
		if len(current) == 0 {
			return
		}
		term, issues := p.toTerm(current)
		out.Issues = append(out.Issues, issues...)
		if term == nil {
			out.SkippedRecords++
		} else {
			out.HPO = append(out.HPO, *term)
		}
		current = map[string][]string{}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			flush()
			continue
		}
		// Stanza headers such as [Term] carry no data.
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			flush()
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			out.Issues = append(out.Issues, fmt.Sprintf("hpo line without key: %q", line))
			continue
		}
		// Only the first colon separates key from value, so hpo_id values
		// like HP:0001250 arrive intact.
		key = strings.ToLower(strings.TrimSpace(key))
		current[key] = append(current[key], strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading HPO records: %w", err)
	}
	flush()

	out.BytesRead = cr.n
	p.log.WithFields(logrus.Fields{
		"source":  domain.SourceHPO,
		"records": len(out.HPO),
		"skipped": out.SkippedRecords,
		"bytes":   out.BytesRead,
	}).Debug("HPO parse finished")
	return out, nil
}

func (p *HPOParser) toTerm(fields map[string][]string) (*domain.HPOTerm, []string) {
	first := func(key string) string {
		if v := fields[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	list := func(keys ...string) []string {
		var out []string
		for _, key := range keys {
			for _, raw := range fields[key] {
				for _, item := range strings.Split(raw, ";") {
					item = strings.TrimSpace(item)
					if item != "" {
						out = append(out, item)
					}
				}
			}
		}
		return out
	}

	id := first("hpo_id")
	if id == "" {
		return nil, []string{"hpo term without hpo_id"}
	}

	term := domain.HPOTerm{
		HPOID:      id,
		Name:       first("name"),
		Definition: first("definition"),
		Synonyms:   list("synonym", "synonyms"),
		Xrefs:      list("xref", "xrefs"),
		IsObsolete: strings.EqualFold(first("is_obsolete"), "true"),
		ReplacedBy: first("replaced_by"),
	}

	known := map[string]bool{
		"hpo_id": true, "name": true, "definition": true,
		"synonym": true, "synonyms": true, "xref": true, "xrefs": true,
		"is_obsolete": true, "replaced_by": true,
	}
	for key, values := range fields {
		if known[key] {
			continue
		}
		p.log.WithFields(logrus.Fields{
			"hpo_id": id,
			"key":    key,
		}).Debug("unmodeled HPO field")
		if term.Extras == nil {
			term.Extras = map[string]string{}
		}
		term.Extras[key] = strings.Join(values, "; ")
	}

	var issues []string
	if !domain.HPOIDPattern.MatchString(term.HPOID) {
		issues = append(issues, fmt.Sprintf("hpo term: invalid identifier %q", term.HPOID))
	}
	if term.Name == "" && !term.IsObsolete {
		issues = append(issues, fmt.Sprintf("hpo term %s: missing name", term.HPOID))
	}
	return &term, issues
}

// ValidateHPOTerm reports data-quality issues on a parsed term.
func ValidateHPOTerm(term *domain.HPOTerm) []string {
	var issues []string
	if !domain.HPOIDPattern.MatchString(term.HPOID) {
		issues = append(issues, fmt.Sprintf("hpo term: invalid identifier %q", term.HPOID))
	}
	if term.Name == "" && !term.IsObsolete {
		issues = append(issues, fmt.Sprintf("hpo term %s: missing name", term.HPOID))
	}
	return issues
}
