// Package providers contains the upstream API clients the feed pipeline
// consumes. Clients raise on transport failure; the orchestrator is
// responsible for catching and degrading to empty results.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// FinnhubBaseURL is the base URL for the Finnhub API.
	FinnhubBaseURL = "https://finnhub.io/api/v1"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	// Finnhub's free tier allows 60 calls/minute.
	DefaultRateLimit = 1
)

// APIError represents a non-200 response from an upstream API.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: %s (status: %d, endpoint: %s)", e.Provider, e.Message, e.StatusCode, e.Endpoint)
}

// RateLimitError represents a client-side rate limit wait failure.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limit exceeded, retry after %v", e.Provider, e.RetryAfter)
}

// FinnhubClient is a Finnhub API client.
type FinnhubClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// FinnhubOption configures the FinnhubClient.
type FinnhubOption func(*FinnhubClient)

// WithFinnhubBaseURL sets a custom base URL.
func WithFinnhubBaseURL(baseURL string) FinnhubOption {
	return func(c *FinnhubClient) {
		c.baseURL = baseURL
	}
}

// WithFinnhubHTTPClient sets a custom HTTP client.
func WithFinnhubHTTPClient(httpClient *http.Client) FinnhubOption {
	return func(c *FinnhubClient) {
		c.httpClient = httpClient
	}
}

// WithFinnhubLogger sets a logger.
func WithFinnhubLogger(logger arbor.ILogger) FinnhubOption {
	return func(c *FinnhubClient) {
		c.logger = logger
	}
}

// WithFinnhubRateLimit sets a custom rate limit.
func WithFinnhubRateLimit(requestsPerSecond int) FinnhubOption {
	return func(c *FinnhubClient) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewFinnhubClient creates a new Finnhub API client.
func NewFinnhubClient(apiKey string, opts ...FinnhubOption) *FinnhubClient {
	c := &FinnhubClient{
		baseURL: FinnhubBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a GET request to the API.
func (c *FinnhubClient) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &RateLimitError{Provider: "Finnhub", RetryAfter: time.Second}
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("token", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("url", c.baseURL+path).
			Msg("Finnhub API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			Provider:   "Finnhub",
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// CompanyNewsItem is a raw company news record from /company-news.
type CompanyNewsItem struct {
	Category string `json:"category"`
	Datetime int64  `json:"datetime"` // unix epoch
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Image    string `json:"image"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// CompanyNews retrieves company news for a symbol between two calendar
// dates (YYYY-MM-DD, inclusive).
func (c *FinnhubClient) CompanyNews(ctx context.Context, symbol, from, to string) ([]CompanyNewsItem, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("from", from)
	params.Set("to", to)

	var items []CompanyNewsItem
	if err := c.get(ctx, "/company-news", params, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Filing is a raw SEC filing record from /stock/filings.
type Filing struct {
	AccessNumber string `json:"accessNumber"`
	Symbol       string `json:"symbol"`
	CIK          string `json:"cik"`
	Form         string `json:"form"`
	FiledDate    string `json:"filedDate"` // "2006-01-02 15:04:05"
	AcceptedDate string `json:"acceptedDate"`
	ReportURL    string `json:"reportUrl"`
	FilingURL    string `json:"filingUrl"`
}

// Filings retrieves SEC filings for a symbol between two calendar dates.
func (c *FinnhubClient) Filings(ctx context.Context, symbol, from, to string) ([]Filing, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("from", from)
	params.Set("to", to)

	var filings []Filing
	if err := c.get(ctx, "/stock/filings", params, &filings); err != nil {
		return nil, err
	}
	return filings, nil
}

// InsiderTransaction is a raw insider transaction record. The upstream
// payload nests these under a "data" key; InsiderTransactions flattens
// that envelope before returning.
type InsiderTransaction struct {
	Name             string  `json:"name"`
	Share            int64   `json:"share"`  // shares held after transaction
	Change           int64   `json:"change"` // signed share count
	FilingDate       string  `json:"filingDate"`
	TransactionDate  string  `json:"transactionDate"` // YYYY-MM-DD
	TransactionCode  string  `json:"transactionCode"`
	TransactionPrice float64 `json:"transactionPrice"`
}

type insiderTransactionsResponse struct {
	Data   []InsiderTransaction `json:"data"`
	Symbol string               `json:"symbol"`
}

// InsiderTransactions retrieves insider transactions for a symbol between
// two calendar dates.
func (c *FinnhubClient) InsiderTransactions(ctx context.Context, symbol, from, to string) ([]InsiderTransaction, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("from", from)
	params.Set("to", to)

	var resp insiderTransactionsResponse
	if err := c.get(ctx, "/stock/insider-transactions", params, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// CandleResponse is the column-oriented candle payload from /stock/candle.
type CandleResponse struct {
	Open      []float64 `json:"o"`
	High      []float64 `json:"h"`
	Low       []float64 `json:"l"`
	Close     []float64 `json:"c"`
	Volume    []int64   `json:"v"`
	Timestamp []int64   `json:"t"`
	Status    string    `json:"s"` // "ok" or "no_data"
}

// Candles retrieves daily OHLCV candles for a symbol between two instants.
func (c *FinnhubClient) Candles(ctx context.Context, symbol string, from, to time.Time) (*CandleResponse, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("resolution", "D")
	params.Set("from", fmt.Sprintf("%d", from.Unix()))
	params.Set("to", fmt.Sprintf("%d", to.Unix()))

	var resp CandleResponse
	if err := c.get(ctx, "/stock/candle", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "ok" {
		return nil, &APIError{
			Provider:   "Finnhub",
			StatusCode: http.StatusOK,
			Message:    fmt.Sprintf("candle status %q", resp.Status),
			Endpoint:   "/stock/candle",
		}
	}
	return &resp, nil
}

// Profile is a raw company profile record from /stock/profile2.
type Profile struct {
	Name     string `json:"name"`
	Ticker   string `json:"ticker"`
	Exchange string `json:"exchange"`
	Logo     string `json:"logo"`
	WebURL   string `json:"weburl"`
}

// CompanyProfile retrieves display metadata for a symbol.
func (c *FinnhubClient) CompanyProfile(ctx context.Context, symbol string) (*Profile, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var profile Profile
	if err := c.get(ctx, "/stock/profile2", params, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
