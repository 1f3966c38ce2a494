package pipedrive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/donaldgifford/deal-notifier/internal/metrics"
	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

const (
	defaultBaseURL  = "https://api.pipedrive.com/api/v1"
	defaultPageSize = 100
	defaultMaxPages = 20

	apiTokenHeader = "x-api-token" //nolint:gosec // header name, not a credential
	maxErrorBody   = 512
)

// Client implements DealSource against the Pipedrive v1 REST API.
type Client struct {
	apiToken    string
	baseURL     string
	pageSize    int
	maxPages    int
	client      *http.Client
	rateLimiter *RateLimiter
	log         *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the default API root, e.g. a company domain
// "https://acme.pipedrive.com/api/v1".
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithPageSize sets the number of deals requested per page.
func WithPageSize(n int) Option {
	return func(c *Client) {
		c.pageSize = n
	}
}

// WithMaxPages caps how many pages one FetchDeals call may read.
func WithMaxPages(n int) Option {
	return func(c *Client) {
		c.maxPages = n
	}
}

// WithRateLimiter injects a rate limiter. When set, every page request goes
// through Wait() first.
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *Client) {
		c.rateLimiter = r
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a Pipedrive client authenticating with a personal API
// token. The token travels in a header, never in the URL, so it cannot end up
// in error messages.
func NewClient(apiToken string, opts ...Option) *Client {
	c := &Client{
		apiToken: apiToken,
		baseURL:  defaultBaseURL,
		pageSize: defaultPageSize,
		maxPages: defaultMaxPages,
		client:   &http.Client{Timeout: 30 * time.Second},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchDeals returns every deal matched by filterID, following pagination.
func (c *Client) FetchDeals(ctx context.Context, filterID string) ([]domain.Deal, error) {
	if filterID == "" {
		return nil, errors.New("filter id is required")
	}

	var (
		deals []domain.Deal
		start int
	)

	for page := 0; ; page++ {
		if page >= c.maxPages {
			return nil, fmt.Errorf(
				"%w: filter %s has more than %d pages of %d deals",
				ErrPageLimit, filterID, c.maxPages, c.pageSize,
			)
		}

		resp, err := c.fetchPage(ctx, filterID, start)
		if err != nil {
			return nil, fmt.Errorf("fetching deals page %d: %w", page+1, err)
		}

		for i := range resp.Data {
			d, err := toDeal(&resp.Data[i])
			if err != nil {
				return nil, fmt.Errorf("decoding deal %d of page %d: %w", i, page+1, err)
			}
			deals = append(deals, d)
		}

		p := resp.pagination()
		if p == nil || !p.MoreItemsInCollection {
			break
		}
		if p.NextStart <= start {
			return nil, fmt.Errorf("pagination did not advance (start %d, next_start %d)", start, p.NextStart)
		}
		start = p.NextStart
	}

	c.log.Debug("fetched deals", "filter_id", filterID, "count", len(deals))

	return deals, nil
}

func (r *dealsResponse) pagination() *pagination {
	if r.AdditionalData == nil {
		return nil
	}
	return r.AdditionalData.Pagination
}

func toDeal(d *apiDeal) (domain.Deal, error) {
	if d.ID == nil {
		return domain.Deal{}, errors.New("deal has no id")
	}
	return domain.Deal{
		ID:       *d.ID,
		Title:    d.Title,
		Value:    d.Value,
		Currency: d.Currency,
		Status:   d.Status,
	}, nil
}

func (c *Client) fetchPage(ctx context.Context, filterID string, start int) (*dealsResponse, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrDailyLimitReached) {
				metrics.PipedriveDailyLimitHits.Inc()
			}
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		metrics.PipedriveDailyUsage.Set(float64(c.rateLimiter.DailyCount()))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.dealsURL(filterID, start), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set(apiTokenHeader, c.apiToken)
	httpReq.Header.Set("Accept", "application/json")

	metrics.PipedriveAPICallsTotal.Inc()

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing deals request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, body)
	}

	var out dealsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("parsing deals response: %w", err)
	}

	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "success=false without error message"
		}
		return nil, fmt.Errorf("pipedrive API error: %s", msg)
	}

	return &out, nil
}

func (c *Client) dealsURL(filterID string, start int) string {
	params := url.Values{}
	params.Set("filter_id", filterID)
	params.Set("start", strconv.Itoa(start))
	params.Set("limit", strconv.Itoa(c.pageSize))
	return c.baseURL + "/deals?" + params.Encode()
}

func statusError(status int, body []byte) error {
	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return fmt.Errorf("pipedrive API error (status %d): %s", status, errResp.Error)
	}

	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return fmt.Errorf("pipedrive API error (status %d): %s", status, text)
}
