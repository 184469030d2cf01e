// Package publicip discovers the public-facing IP address of this host.
package publicip

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultURL answers a plain GET with the caller's address as text
const DefaultURL = "http://ifconfig.me/ip"

// maxBodySize caps the response; an address never needs more
const maxBodySize = 1024

// Client queries a "what is my IP" service
type Client struct {
	httpClient *http.Client
	url        string
	userAgent  string
}

// NewClient creates a new client using the default service URL
func NewClient(userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		url:       DefaultURL,
		userAgent: userAgent,
	}
}

// NewClientWithHTTPClient creates a new client with a custom HTTP client
func NewClientWithHTTPClient(httpClient *http.Client, userAgent string) *Client {
	return &Client{
		httpClient: httpClient,
		url:        DefaultURL,
		userAgent:  userAgent,
	}
}

// SetBaseURL sets the service URL (useful for testing)
func (c *Client) SetBaseURL(url string) {
	c.url = url
}

// Lookup performs a single GET and returns the trimmed response body.
func (c *Client) Lookup(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &NetworkError{Operation: "public IP lookup", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", &NetworkError{Operation: "reading response body", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	ip := strings.TrimSpace(string(body))
	if ip == "" {
		return "", &ValidationError{Field: "body", Message: "empty response"}
	}
	if net.ParseIP(ip) == nil {
		return "", &ValidationError{Field: "body", Message: fmt.Sprintf("%q is not an IP address", ip)}
	}

	return ip, nil
}
