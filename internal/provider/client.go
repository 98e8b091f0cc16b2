package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/sharp-lines-service/internal/metrics"
	"github.com/cypherlabdev/sharp-lines-service/internal/models"
)

// DefaultBaseURL is the public odds API
const DefaultBaseURL = "https://api.the-odds-api.com/v4"

var (
	// ErrUnknownCategory is returned for categories without a configured sport key
	ErrUnknownCategory = errors.New("unknown category")
	// ErrNoCredential is returned when fetching without an API key
	ErrNoCredential = errors.New("provider credential not configured")
	// ErrUpstreamStatus wraps non-2xx responses
	ErrUpstreamStatus = errors.New("unexpected upstream status")
)

// DefaultSports maps tracked categories to provider sport keys
var DefaultSports = map[string]string{
	"nba": "basketball_nba",
	"nhl": "icehockey_nhl",
	"cbb": "basketball_ncaab",
}

// ClientConfig holds provider client configuration
type ClientConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration     // e.g., 10 * time.Second
	Regions    string            // e.g., "us"
	Bookmakers []string          // requested books, also the normalizer priority
	Sports     map[string]string // category -> sport key
}

// Client fetches raw odds events from the market-data provider
type Client struct {
	http       *resty.Client
	apiKey     string
	regions    string
	bookmakers []string
	sports     map[string]string
	logger     zerolog.Logger
}

// NewClient creates a new provider client
func NewClient(config ClientConfig, logger zerolog.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Regions == "" {
		config.Regions = "us"
	}
	if len(config.Sports) == 0 {
		config.Sports = DefaultSports
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(config.BaseURL, "/"))
	client.SetTimeout(config.Timeout)
	client.SetHeader("Accept", "application/json")

	return &Client{
		http:       client,
		apiKey:     config.APIKey,
		regions:    config.Regions,
		bookmakers: config.Bookmakers,
		sports:     config.Sports,
		logger:     logger.With().Str("component", "odds_provider").Logger(),
	}
}

// HasCredential reports whether an API key is configured
func (c *Client) HasCredential() bool {
	return c.apiKey != ""
}

// Categories returns the tracked categories in a stable order
func (c *Client) Categories() []string {
	categories := make([]string, 0, len(c.sports))
	for category := range c.sports {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// FetchOdds fetches the current events for a category. A single attempt is made;
// the request is bounded by the client timeout and ctx.
func (c *Client) FetchOdds(ctx context.Context, category string) ([]models.OddsEvent, error) {
	sportKey, ok := c.sports[category]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	if !c.HasCredential() {
		return nil, ErrNoCredential
	}

	params := map[string]string{
		"apiKey":     c.apiKey,
		"regions":    c.regions,
		"markets":    strings.Join([]string{models.MarketSpreads, models.MarketTotals, models.MarketH2H}, ","),
		"oddsFormat": "american",
	}
	if len(c.bookmakers) > 0 {
		params["bookmakers"] = strings.Join(c.bookmakers, ",")
	}

	var events []models.OddsEvent
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("sport", sportKey).
		SetQueryParams(params).
		SetResult(&events).
		Get("/sports/{sport}/odds/")
	metrics.UpstreamLatency.WithLabelValues(category).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(category, "error").Inc()
		return nil, fmt.Errorf("failed to fetch odds for %s: %w", category, err)
	}
	if resp.StatusCode() != http.StatusOK {
		metrics.UpstreamRequests.WithLabelValues(category, "error").Inc()
		return nil, fmt.Errorf("%w: %s returned %d", ErrUpstreamStatus, category, resp.StatusCode())
	}
	metrics.UpstreamRequests.WithLabelValues(category, "ok").Inc()

	c.logger.Info().
		Str("category", category).
		Int("count", len(events)).
		Str("requests_remaining", resp.Header().Get("x-requests-remaining")).
		Dur("latency", time.Since(start)).
		Msg("fetched odds")

	if events == nil {
		events = []models.OddsEvent{}
	}
	return events, nil
}
