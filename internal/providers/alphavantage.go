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
	// AlphaVantageBaseURL is the base URL for the Alpha Vantage API.
	AlphaVantageBaseURL = "https://www.alphavantage.co"

	// alphaVantageRateLimit is requests per second. The free tier allows
	// 25 requests/day, so the limiter mostly guards against burst retries.
	alphaVantageRateLimit = 1
)

// AlphaVantageClient is an Alpha Vantage API client used for macro news
// with per-ticker sentiment.
type AlphaVantageClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// AlphaVantageOption configures the AlphaVantageClient.
type AlphaVantageOption func(*AlphaVantageClient)

// WithAlphaVantageBaseURL sets a custom base URL.
func WithAlphaVantageBaseURL(baseURL string) AlphaVantageOption {
	return func(c *AlphaVantageClient) {
		c.baseURL = baseURL
	}
}

// WithAlphaVantageHTTPClient sets a custom HTTP client.
func WithAlphaVantageHTTPClient(httpClient *http.Client) AlphaVantageOption {
	return func(c *AlphaVantageClient) {
		c.httpClient = httpClient
	}
}

// WithAlphaVantageLogger sets a logger.
func WithAlphaVantageLogger(logger arbor.ILogger) AlphaVantageOption {
	return func(c *AlphaVantageClient) {
		c.logger = logger
	}
}

// NewAlphaVantageClient creates a new Alpha Vantage API client.
func NewAlphaVantageClient(apiKey string, opts ...AlphaVantageOption) *AlphaVantageClient {
	c := &AlphaVantageClient{
		baseURL: AlphaVantageBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(alphaVantageRateLimit), alphaVantageRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// TickerSentiment is the per-ticker relevance entry on a news feed item.
// RelevanceScore and SentimentScore arrive as strings on the wire.
type TickerSentiment struct {
	Ticker         string `json:"ticker"`
	RelevanceScore string `json:"relevance_score"`
	SentimentScore string `json:"ticker_sentiment_score"`
	SentimentLabel string `json:"ticker_sentiment_label"`
}

// NewsFeedItem is a raw macro news record from the NEWS_SENTIMENT function.
// TimePublished uses the compact YYYYMMDDTHHMMSS form.
type NewsFeedItem struct {
	Title           string            `json:"title"`
	URL             string            `json:"url"`
	TimePublished   string            `json:"time_published"`
	Summary         string            `json:"summary"`
	Source          string            `json:"source"`
	TickerSentiment []TickerSentiment `json:"ticker_sentiment"`
}

type newsSentimentResponse struct {
	Items string         `json:"items"`
	Feed  []NewsFeedItem `json:"feed"`
}

// NewsSentiment retrieves macro news mentioning the given ticker published
// after timeFrom (compact YYYYMMDDTHHMM form).
func (c *AlphaVantageClient) NewsSentiment(ctx context.Context, ticker, timeFrom string, limit int) ([]NewsFeedItem, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &RateLimitError{Provider: "AlphaVantage", RetryAfter: time.Second}
	}

	params := url.Values{}
	params.Set("function", "NEWS_SENTIMENT")
	params.Set("tickers", ticker)
	params.Set("time_from", timeFrom)
	params.Set("sort", "LATEST")
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("ticker", ticker).
			Str("time_from", timeFrom).
			Msg("AlphaVantage NEWS_SENTIMENT request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			Provider:   "AlphaVantage",
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   "/query?function=NEWS_SENTIMENT",
		}
	}

	var result newsSentimentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Feed, nil
}
