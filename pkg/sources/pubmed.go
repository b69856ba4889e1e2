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

// PubMedClient fetches literature records from PubMed via NCBI E-utilities.
type PubMedClient struct {
	baseURL    string
	apiKey     string
	retries    int
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewPubMedClient(config domain.SourceConfig) *PubMedClient {
	return &PubMedClient{
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		apiKey:     config.APIKey,
		retries:    config.RetryCount,
		httpClient: newHTTPClient(config.Timeout),
		limiter:    newLimiter(config.RateLimit),
	}
}

func (c *PubMedClient) Source() domain.SourceName {
	return domain.SourcePubMed
}

// Fetch searches PubMed for literature about the gene in
// params["gene_symbol"] (or a free-text params["term"]) and fetches the
// matching PubmedArticle records as one XML payload.
func (c *PubMedClient) Fetch(ctx context.Context, params map[string]string) (*Payload, error) {
	term := params["term"]
	if term == "" {
		if gene := params["gene_symbol"]; gene != "" {
			term = fmt.Sprintf("%s[Title/Abstract]", gene)
		}
	}
	if term == "" {
		return nil, fmt.Errorf("pubmed fetch requires gene_symbol or term")
	}

	ids, err := c.search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search PubMed: %w", err)
	}
	if len(ids) == 0 {
		return &Payload{Source: c.Source(), Data: nil, RetrievedAt: time.Now().UTC()}, nil
	}

	fetchURL := c.endpoint("efetch.fcgi", url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
	})
	resp, err := doGet(ctx, c.httpClient, c.limiter, c.retries, fetchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch PubMed records: %w", err)
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

func (c *PubMedClient) search(ctx context.Context, term string) ([]string, error) {
	searchURL := c.endpoint("esearch.fcgi", url.Values{
		"db":      {"pubmed"},
		"term":    {term},
		"retmode": {"xml"},
		"retmax":  {"50"},
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

func (c *PubMedClient) endpoint(name string, params url.Values) string {
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	return fmt.Sprintf("%s/%s?%s", c.baseURL, name, params.Encode())
}
