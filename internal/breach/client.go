// Package breach talks to the third-party breach-count service and caches its
// answers. The service's availability is never allowed to fail a caller: any
// trouble degrades to a count of zero.
package breach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"privacyguard/internal/config"
	"privacyguard/internal/util"
)

var ErrUnrecognizedResponse = errors.New("unrecognized breach response shape")

// Client queries the upstream breach directory. Every request carries a hard
// deadline via the HTTP client's timeout; there is no retry.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(cfg *config.BreachConfig) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.APIURL,
		apiKey:  cfg.APIKey,
	}
}

// CountForDomain fetches the number of known credential breaches for domain.
func (c *Client) CountForDomain(ctx context.Context, domain string) (int, error) {
	return c.fetchCount(ctx, url.Values{"domain": []string{domain}})
}

// CountForEmail fetches the number of known breaches containing the address.
// The raw address goes only to the upstream; it is never logged here.
func (c *Client) CountForEmail(ctx context.Context, email string) (int, error) {
	return c.fetchCount(ctx, url.Values{"email": []string{email}})
}

func (c *Client) fetchCount(ctx context.Context, query url.Values) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build breach request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("breach request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("breach service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("failed to read breach response: %w", err)
	}

	count, err := parseCount(body)
	if err != nil {
		util.Debug("Unparseable breach response", zap.Error(err))
		return 0, err
	}
	return count, nil
}

// parseCount tolerates the three response shapes the upstream has shipped
// over time: a bare array (length = count), an object with a numeric
// "count", or an object with an array "results" (length = count).
func parseCount(body []byte) (int, error) {
	var asArray []json.RawMessage
	if err := json.Unmarshal(body, &asArray); err == nil {
		return len(asArray), nil
	}

	var asObject struct {
		Count   *float64          `json:"count"`
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &asObject); err == nil {
		if asObject.Count != nil {
			if *asObject.Count < 0 {
				return 0, ErrUnrecognizedResponse
			}
			return int(*asObject.Count), nil
		}
		if asObject.Results != nil {
			return len(asObject.Results), nil
		}
	}

	return 0, ErrUnrecognizedResponse
}
