package authapi

import (
	"net/http"
	"strings"
	"time"
)

// Client is a client for the GameHive authentication service.
// The zero value is not usable; construct one with NewClient.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new authentication service client with a default
// 10 second request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}
