package edgar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"FactPull/internal/domain/repository"
	xhttp "FactPull/pkg/http"

	"golang.org/x/time/rate"
)

// Client talks to the SEC EDGAR data APIs. The SEC webmaster FAQ caps clients
// at 10 requests per second and requires an identifying User-Agent; both are
// enforced here so no caller can exceed them.
type Client struct {
	baseURL    string
	tickersURL string
	userAgent  string
	http       *xhttp.Client
	limiter    *rate.Limiter
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL overrides the data API base (default https://data.sec.gov).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithTickersURL overrides the ticker directory URL.
func WithTickersURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.tickersURL = u
		}
	}
}

// WithRateLimit sets the client-side request budget.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.http = xhttp.NewClient(xhttp.WithTimeout(timeout))
	}
}

// NewClient creates an EDGAR client. userAgent must identify the operator
// (e.g. "FactPull admin@example.com"); the SEC rejects anonymous clients.
func NewClient(userAgent string, opts ...ClientOption) (*Client, error) {
	if userAgent == "" {
		return nil, fmt.Errorf("edgar: user agent is required")
	}

	c := &Client{
		baseURL:    "https://data.sec.gov",
		tickersURL: "https://www.sec.gov/files/company_tickers.json",
		userAgent:  userAgent,
		http:       xhttp.NewClient(xhttp.WithTimeout(30 * time.Second)),
		limiter:    rate.NewLimiter(rate.Limit(10), 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CompanyFactsURL builds the companyfacts endpoint for a CIK. EDGAR expects
// the CIK zero-padded to ten digits.
func (c *Client) CompanyFactsURL(cik int) string {
	return fmt.Sprintf("%s/api/xbrl/companyfacts/CIK%010d.json", c.baseURL, cik)
}

// FetchCompanyFacts downloads the raw companyfacts JSON for a CIK. A 404 maps
// to repository.ErrNotFound so callers can distinguish unknown companies from
// upstream failures.
func (c *Client) FetchCompanyFacts(ctx context.Context, cik int) ([]byte, error) {
	return c.getBytes(ctx, c.CompanyFactsURL(cik))
}

// FetchTickerDirectory downloads the raw ticker directory JSON.
func (c *Client) FetchTickerDirectory(ctx context.Context) ([]byte, error) {
	return c.getBytes(ctx, c.tickersURL)
}

func (c *Client) getBytes(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("edgar rate limiter: %w", err)
	}

	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    url,
		Headers: map[string]string{
			"User-Agent": c.userAgent,
			"Accept":     "application/json",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("edgar get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("edgar %s: %w", url, repository.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("edgar %s: unexpected status %d: %s", url, resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("edgar read body: %w", err)
	}
	return body, nil
}
