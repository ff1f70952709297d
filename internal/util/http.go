package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultClient is used by GetBytes when no client is given.
var DefaultClient = &http.Client{Timeout: 12 * time.Second}

// GetBytes fetches url and returns the body of a 200 response.
func GetBytes(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
