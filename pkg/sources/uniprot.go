package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/biodata-harvester/internal/domain"
)

// UniProtClient fetches protein entries from the UniProtKB REST API.
type UniProtClient struct {
	baseURL    string
	retries    int
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewUniProtClient(config domain.SourceConfig) *UniProtClient {
	return &UniProtClient{
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		retries:    config.RetryCount,
		httpClient: newHTTPClient(config.Timeout),
		limiter:    newLimiter(config.RateLimit),
	}
}

func (c *UniProtClient) Source() domain.SourceName {
	return domain.SourceUniProt
}

// Fetch queries UniProtKB for reviewed human entries of the gene in
// params["gene_symbol"] and returns the JSON search result. The UniProt
// release header is carried on the payload when present.
func (c *UniProtClient) Fetch(ctx context.Context, params map[string]string) (*Payload, error) {
	gene := params["gene_symbol"]
	if gene == "" {
		return nil, fmt.Errorf("uniprot fetch requires gene_symbol")
	}

	query := url.Values{
		"query":  {fmt.Sprintf("gene:%s AND organism_id:9606 AND reviewed:true", gene)},
		"format": {"json"},
	}
	fetchURL := fmt.Sprintf("%s/uniprotkb/search?%s", c.baseURL, query.Encode())

	resp, err := doGet(ctx, c.httpClient, c.limiter, c.retries, fetchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch UniProt entries: %w", err)
	}
	version := resp.Header.Get("X-UniProt-Release")
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	return &Payload{
		Source:      c.Source(),
		Data:        body,
		URL:         fetchURL,
		Version:     version,
		RetrievedAt: time.Now().UTC(),
	}, nil
}
