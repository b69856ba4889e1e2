package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/biodata-harvester/internal/domain"
)

// HPOClient downloads Human Phenotype Ontology term exports.
type HPOClient struct {
	baseURL    string
	retries    int
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewHPOClient(config domain.SourceConfig) *HPOClient {
	return &HPOClient{
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		retries:    config.RetryCount,
		httpClient: newHTTPClient(config.Timeout),
		limiter:    newLimiter(config.RateLimit),
	}
}

func (c *HPOClient) Source() domain.SourceName {
	return domain.SourceHPO
}

// Fetch downloads one ontology export. params["file"] selects the export;
// the line-record term dump is the default. The ontology release, when the
// server names one via ETag, is carried on the payload.
func (c *HPOClient) Fetch(ctx context.Context, params map[string]string) (*Payload, error) {
	file := params["file"]
	if file == "" {
		file = "hpo_terms.txt"
	}

	fetchURL := fmt.Sprintf("%s/%s", c.baseURL, file)
	resp, err := doGet(ctx, c.httpClient, c.limiter, c.retries, fetchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HPO export: %w", err)
	}
	version := strings.Trim(resp.Header.Get("ETag"), `"`)
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
