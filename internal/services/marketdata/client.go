// Package marketdata polls reference prices from a third-party
// market-data API and serves them with last-known-value fallback. A
// provider outage degrades quotes to stale, it never blocks settlement.
package marketdata

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// Client wraps the provider's simple-price endpoint.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetRetryAfter(func(client *resty.Client, resp *resty.Response) (time.Duration, error) {
			// Honor provider rate limiting.
			if resp.StatusCode() == 429 {
				if retryAfter := resp.Header().Get("Retry-After"); retryAfter != "" {
					if d, err := time.ParseDuration(retryAfter + "s"); err == nil {
						return d, nil
					}
				}
				return 10 * time.Second, nil
			}
			return 0, nil
		})

	return &Client{http: client}
}

// SimplePrice fetches current USD prices and 24h change for the given
// coin ids in a single request.
func (c *Client) SimplePrice(ctx context.Context, ids []string) (map[string]PricePoint, error) {
	out := map[string]PricePoint{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":                 strings.Join(ids, ","),
			"vs_currencies":       "usd",
			"include_24hr_change": "true",
		}).
		SetResult(&out).
		Get("/simple/price")
	if err != nil {
		return nil, errors.Wrap(err, "simple price request failed")
	}
	if resp.IsError() {
		return nil, errors.Errorf("simple price request failed: status %d", resp.StatusCode())
	}
	return out, nil
}
