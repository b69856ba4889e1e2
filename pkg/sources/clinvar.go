package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/biodata-harvester/internal/domain"
)

// ClinVarClient fetches variant records from ClinVar via NCBI E-utilities.
type ClinVarClient struct {
	baseURL    string
	apiKey     string
	retries    int
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClinVarClient(config domain.SourceConfig) *ClinVarClient {
	return &ClinVarClient{
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		apiKey:     config.APIKey,
		retries:    config.RetryCount,
		httpClient: newHTTPClient(config.Timeout),
		limiter:    newLimiter(config.RateLimit),
	}
}

func (c *ClinVarClient) Source() domain.SourceName {
	return domain.SourceClinVar
}

type eSearchResult struct {
	XMLName xml.Name `xml:"eSearchResult"`
	Count   int      `xml:"Count"`
	IDList  struct {
		IDs []string `xml:"Id"`
	} `xml:"IdList"`
}

// Fetch searches ClinVar for the gene in params["gene_symbol"] and fetches
// the matching VariationArchive records as one XML payload.
func (c *ClinVarClient) Fetch(ctx context.Context, params map[string]string) (*Payload, error) {
	gene := params["gene_symbol"]
	if gene == "" {
		return nil, fmt.Errorf("clinvar fetch requires gene_symbol")
	}

	ids, err := c.search(ctx, gene)
	if err != nil {
		return nil, fmt.Errorf("failed to search ClinVar: %w", err)
	}
	if len(ids) == 0 {
		return &Payload{Source: c.Source(), Data: nil, RetrievedAt: time.Now().UTC()}, nil
	}

	fetchURL := c.endpoint("efetch.fcgi", url.Values{
		"db":      {"clinvar"},
		"rettype": {"vcv"},
		"id":      {strings.Join(ids, ",")},
	})
	resp, err := doGet(ctx, c.httpClient, c.limiter, c.retries, fetchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ClinVar records: %w", err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	return &Payload{
		Source:      c.Source(),
		Data:        body,
		URL:         fetchURL,
		RetrievedAt: time.Now().UTC(),
	}, nil
}

func (c *ClinVarClient) search(ctx context.Context, gene string) ([]string, error) {
	searchURL := c.endpoint("esearch.fcgi", url.Values{
		"db":      {"clinvar"},
		"term":    {fmt.Sprintf("%s[gene]", gene)},
		"retmode": {"xml"},
		"retmax":  {"100"},
	})
	resp, err := doGet(ctx, c.httpClient, c.limiter, c.retries, searchURL)
	if err != nil {
		return nil, err
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	var result eSearchResult
	if err := xml.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	return result.IDList.IDs, nil
}

func (c *ClinVarClient) endpoint(name string, params url.Values) string {
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	return fmt.Sprintf("%s/%s?%s", c.baseURL, name, params.Encode())
}
