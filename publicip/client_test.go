package publicip

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"trailing newline", "203.0.113.7\n", "203.0.113.7"},
		{"surrounding spaces", "  198.51.100.1 \r\n", "198.51.100.1"},
		{"ipv6", "2001:db8::1\n", "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("Expected GET, got %s", r.Method)
				}
				if r.Header.Get("User-Agent") != "nightvision-test" {
					t.Errorf("Expected User-Agent 'nightvision-test', got '%s'", r.Header.Get("User-Agent"))
				}
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient("nightvision-test")
			client.SetBaseURL(server.URL)

			ip, err := client.Lookup(context.Background())
			if err != nil {
				t.Fatalf("Lookup returned error: %v", err)
			}
			if ip != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, ip)
			}
		})
	}
}

func TestLookupErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		target any
	}{
		{"server error", http.StatusServiceUnavailable, "try later", new(*APIError)},
		{"empty body", http.StatusOK, " \n", new(*ValidationError)},
		{"html page", http.StatusOK, "<html></html>", new(*ValidationError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient("nightvision-test")
			client.SetBaseURL(server.URL)

			ip, err := client.Lookup(context.Background())
			if err == nil {
				t.Fatalf("Expected error, got ip %q", ip)
			}
			if !errors.As(err, tt.target) {
				t.Errorf("Expected error of type %T, got %T (%v)", tt.target, err, err)
			}
		})
	}
}

func TestLookupNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient("nightvision-test")
	client.SetBaseURL(url)

	_, err := client.Lookup(context.Background())
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Expected NetworkError, got %T (%v)", err, err)
	}
}
