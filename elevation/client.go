package elevation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/devskill-org/nightvision/utils"
)

// DefaultBaseURL is the Google Maps Elevation API JSON endpoint
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/elevation/json"

// Client represents a client for the elevation API
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	apiKey     string
}

// NewClient creates a new client for the elevation API
func NewClient(userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:   DefaultBaseURL,
		userAgent: userAgent,
	}
}

// NewClientWithHTTPClient creates a new client with a custom HTTP client
func NewClientWithHTTPClient(httpClient *http.Client, userAgent string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    DefaultBaseURL,
		userAgent:  userAgent,
	}
}

// SetBaseURL sets the base URL for the API (useful for testing)
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// SetAPIKey sets the key sent as the "key" query parameter. Empty disables it.
func (c *Client) SetAPIKey(apiKey string) {
	c.apiKey = apiKey
}

// Lookup returns the ground elevation in meters of the given coordinates.
// Only the first result is used.
func (c *Client) Lookup(ctx context.Context, lat, lng float64) (float64, error) {
	resp, err := c.Get(ctx, lat, lng)
	if err != nil {
		return 0, err
	}

	if len(resp.Results) == 0 {
		if resp.Status != "" && resp.Status != StatusOK {
			return 0, fmt.Errorf("%w (status %s: %s)", ErrNoResults, resp.Status, resp.ErrorMessage)
		}
		return 0, ErrNoResults
	}

	return resp.Results[0].Elevation, nil
}

// Get performs the API request and returns the decoded response
func (c *Client) Get(ctx context.Context, lat, lng float64) (*Response, error) {
	if err := ValidateCoordinates(lat, lng); err != nil {
		return nil, err
	}

	reqURL, err := c.buildURL(lat, lng)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Operation: "elevation lookup", Err: utils.RedactURLError(err, "key")}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Operation: "reading response body", Err: err}
	}

	var result Response
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

// buildURL constructs the API URL with query parameters
func (c *Client) buildURL(lat, lng float64) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}

	query := u.Query()
	query.Set("locations", formatFloat(lat)+","+formatFloat(lng))
	query.Set("sensor", "true")
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}

	u.RawQuery = query.Encode()
	return u.String(), nil
}

// formatFloat formats a float64 to a string with appropriate precision
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ValidateCoordinates validates that the coordinates are within acceptable ranges
func ValidateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return &ValidationError{Field: "latitude", Message: fmt.Sprintf("must be between -90 and 90, got %f", lat)}
	}
	if lng < -180 || lng > 180 {
		return &ValidationError{Field: "longitude", Message: fmt.Sprintf("must be between -180 and 180, got %f", lng)}
	}
	return nil
}
