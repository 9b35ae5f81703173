package kraken

import (
	"net/http"
)

// DefaultBaseURL is the public REST API root.
const DefaultBaseURL = "https://api.kraken.com/0/public"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=kraken_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIClient is a client for the Kraken public market data API.
type APIClient struct {
	baseURL    string
	httpClient HTTPClient
	header     http.Header
}

// APIClientOption is a configuration option for the Kraken API client.
type APIClientOption func(*APIClient)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) APIClientOption {
	return func(c *APIClient) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) APIClientOption {
	return func(c *APIClient) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) APIClientOption {
	return func(c *APIClient) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewAPIClient creates a new Kraken API client.
func NewAPIClient(options ...APIClientOption) (*APIClient, error) {
	var client = &APIClient{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	for _, option := range options {
		option(client)
	}
	return client, nil
}
