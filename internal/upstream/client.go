package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/vrsandeep/noor-go/internal/models"
)

// NewClient builds the HTTP client every provider shares. A non-nil
// transport replaces the default one; in production it is the
// interception worker, so upstream calls get the same caching strategies
// as browser traffic.
func NewClient(baseURL string, transport http.RoundTripper) *resty.Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Accept", "application/json")
	if transport != nil {
		client.SetTransport(transport)
	}
	return client
}

// GetJSON issues a GET for path and decodes the body into result.
// Failures come back as *models.UpstreamError: 400 and 404 map to
// ErrNotFound, everything else (transport errors, 5xx, offline
// placeholders, undecodable bodies) to ErrTransport.
func GetJSON(ctx context.Context, client *resty.Client, provider, op, path string, result any) error {
	resp, err := client.R().SetContext(ctx).Get(path)
	if err != nil {
		return &models.UpstreamError{Provider: provider, Op: op, Kind: models.ErrTransport, Cause: err}
	}
	if resp.Header().Get(models.FallbackHeader) == "placeholder" {
		return &models.UpstreamError{Provider: provider, Op: op, StatusCode: resp.StatusCode(), Kind: models.ErrTransport,
			Cause: fmt.Errorf("offline placeholder")}
	}
	switch code := resp.StatusCode(); {
	case code == http.StatusNotFound || code == http.StatusBadRequest:
		return &models.UpstreamError{Provider: provider, Op: op, StatusCode: code, Kind: models.ErrNotFound}
	case code >= 300:
		return &models.UpstreamError{Provider: provider, Op: op, StatusCode: code, Kind: models.ErrTransport}
	}
	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return &models.UpstreamError{Provider: provider, Op: op, StatusCode: resp.StatusCode(), Kind: models.ErrTransport,
			Cause: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// Malformed reports a response that decoded but cannot be normalized.
func Malformed(provider, op, format string, args ...any) error {
	return &models.UpstreamError{Provider: provider, Op: op, Kind: models.ErrTransport, Cause: fmt.Errorf(format, args...)}
}
