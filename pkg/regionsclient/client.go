/**
 * @description
 * This package provides a client for the external administrative-geography
 * reference API. The registry-service proxies county, constituency and ward
 * lookups through it so the front end has one origin to talk to.
 *
 * @dependencies
 * - context, encoding/json, fmt, net/http, time: Standard Go libraries.
 */
package regionsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is a client for the administrative-geography API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new regions API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// County is one county with its nested constituency/ward hierarchy.
type County struct {
	Code           string         `json:"code"`
	Name           string         `json:"name"`
	Capital        string         `json:"capital,omitempty"`
	Constituencies []Constituency `json:"constituencies,omitempty"`
}

// Constituency is one constituency within a county.
type Constituency struct {
	Name  string   `json:"name"`
	Wards []string `json:"wards,omitempty"`
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("regions API returned status %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ListCounties returns every county known to the reference API.
func (c *Client) ListCounties(ctx context.Context) ([]County, error) {
	var counties []County
	if err := c.get(ctx, "/counties", &counties); err != nil {
		return nil, err
	}
	return counties, nil
}

// GetCounty returns one county with its constituency and ward hierarchy.
func (c *Client) GetCounty(ctx context.Context, code string) (*County, error) {
	var county County
	if err := c.get(ctx, "/counties/"+url.PathEscape(code), &county); err != nil {
		return nil, err
	}
	return &county, nil
}
