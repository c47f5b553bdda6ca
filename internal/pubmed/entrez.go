package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/litkg/kgctl/internal/common"
)

const (
	entrezBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// toolName identifies the client to NCBI, per E-utilities policy.
	toolName = "kgctl"

	defaultMaxRetries  = 3
	defaultInitialWait = 5 * time.Second
)

// Client is a minimal NCBI E-utilities client covering the two calls the
// crawler needs: esearch and efetch.
type Client struct {
	httpClient *http.Client
	baseURL    string
	email      string
	apiKey     string
	logger     *slog.Logger

	maxRetries  uint64
	initialWait time.Duration

	// throttle state
	mu          sync.Mutex
	last        time.Time
	minInterval time.Duration
}

// ClientOptions configures the Entrez client.
type ClientOptions struct {
	Email   string // required by NCBI usage policy
	APIKey  string // optional, raises the rate limit from 3 to 10 req/s
	BaseURL string // overridden in tests
	Logger  *slog.Logger
}

// NewClient creates an Entrez client. An email address is mandatory:
// NCBI uses it to contact owners of misbehaving clients before blocking
// them.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Email == "" {
		return nil, fmt.Errorf("an email address is required by the NCBI usage policy")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = entrezBaseURL
	}

	minInterval := time.Second / 3
	if opts.APIKey != "" {
		minInterval = time.Second / 10
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL:     baseURL,
		email:       opts.Email,
		apiKey:      opts.APIKey,
		logger:      logger,
		maxRetries:  defaultMaxRetries,
		initialWait: defaultInitialWait,
		minInterval: minInterval,
	}, nil
}

// SearchTerm composes the query sent to esearch, appending the
// publication date window when both ends are set. Dates use the
// YYYY/MM/DD form PubMed expects.
func SearchTerm(term, startDate, endDate string) string {
	if startDate == "" || endDate == "" {
		return term
	}

	return fmt.Sprintf("%s AND %s:%s[PDAT]", term, startDate, endDate)
}

// SearchResult holds the outcome of an esearch call.
type SearchResult struct {
	Count int      // total matches in PubMed
	IDs   []string // PMIDs returned, capped by retmax
}

// esearchResponse mirrors the retmode=json envelope.
type esearchResponse struct {
	Result struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// Search runs an esearch query sorted by relevance and returns up to
// retmax PMIDs.
func (c *Client) Search(ctx context.Context, term string, retmax int) (*SearchResult, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", term)
	params.Set("retmax", strconv.Itoa(retmax))
	params.Set("sort", "relevance")
	params.Set("retmode", "json")

	body, err := c.get(ctx, "/esearch.fcgi", params)
	if err != nil {
		return nil, fmt.Errorf("esearch failed: %w", err)
	}

	var envelope esearchResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode esearch response: %w", err)
	}

	count, err := strconv.Atoi(envelope.Result.Count)
	if err != nil {
		return nil, fmt.Errorf("unexpected esearch count %q: %w", envelope.Result.Count, err)
	}

	return &SearchResult{Count: count, IDs: envelope.Result.IDList}, nil
}

// FetchMedline retrieves full records for the given PMIDs in MEDLINE
// text format.
func (c *Client) FetchMedline(ctx context.Context, ids []string) ([]byte, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(ids, ","))
	params.Set("rettype", "medline")
	params.Set("retmode", "text")

	body, err := c.get(ctx, "/efetch.fcgi", params)
	if err != nil {
		return nil, fmt.Errorf("efetch failed: %w", err)
	}

	return body, nil
}

// get performs one rate-limited GET with retries. Server-side errors and
// throttling responses are retried with exponential backoff; other
// client errors abort immediately.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	params.Set("tool", toolName)
	params.Set("email", c.email)

	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	endpoint := c.baseURL + path + "?" + params.Encode()

	c.logger.Debug("E-utilities request", "url", common.SanitizeURL(endpoint))

	var body []byte

	op := func() error {
		c.throttle()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		defer func() {
			_ = resp.Body.Close()
		}()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			apiErr := fmt.Errorf("API error (status %d): %s", resp.StatusCode, firstLine(data))

			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(apiErr)
			}

			return apiErr
		}

		body = data

		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialWait
	bo.MaxElapsedTime = 0

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("retrying E-utilities request",
			"path", path, "wait", wait.Round(time.Millisecond), "error", err)
	}

	retry := backoff.WithMaxRetries(backoff.WithContext(bo, ctx), c.maxRetries)

	if err := backoff.RetryNotify(op, retry, notify); err != nil {
		return nil, err
	}

	return body, nil
}

// throttle spaces requests out to the NCBI rate limit: 3 per second
// without an API key, 10 with one.
func (c *Client) throttle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if wait := c.minInterval - time.Since(c.last); wait > 0 {
		time.Sleep(wait)
	}

	c.last = time.Now()
}

// firstLine keeps error messages readable when the API returns an HTML
// error page.
func firstLine(data []byte) string {
	s := strings.TrimSpace(string(data))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}

	if len(s) > 200 {
		s = s[:200]
	}

	return s
}
