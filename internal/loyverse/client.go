// =============================================================================
// Loyverse Export - API Client Module
// =============================================================================
//
// This module is the input boundary of the pipeline: an HTTP client for the
// Loyverse API plus the pagination walker that merges cursor-paginated
// responses into one ordered record sequence.
//
// RESPONSE SHAPES:
//   The API is not uniform across endpoints. A response body is one of:
//
//   1. A bare JSON list                          -> terminal page
//   2. {"<endpoint>": [...], "cursor": "..."}    -> collection under the
//      endpoint's own name, e.g. {"receipts": [...]}
//   3. {"items": [...], "cursor": "..."}         -> generic collection
//   4. A single JSON object                      -> terminal, one record
//
//   A non-empty cursor means more pages remain; the cursor supersedes any
//   query parameters after the first request.
//
// ERROR RECOVERY:
//   A 4xx/5xx status or a transport error ends the walk for that endpoint.
//   Whatever was accumulated up to that point is returned: a partial result
//   is always preferred over failing the whole export run.
//
// =============================================================================

package loyverse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ginjaninja78/loyverse-export/internal/record"
)

// =============================================================================
// LOGGER INTERFACE
// =============================================================================

// Logger is the logging interface the client needs. The exporter's logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
}

// noopLogger discards all messages. Used when no logger is supplied.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Warn(string, ...interface{})  {}

// =============================================================================
// CLIENT STRUCTURE
// =============================================================================

// Client talks to the Loyverse API.
type Client struct {
	// baseURL is the API base URL without a trailing slash,
	// e.g. "https://api.loyverse.com/v1.0".
	baseURL string

	// token is the bearer token sent in the Authorization header.
	token string

	// httpClient performs the requests. Timeout included.
	httpClient *http.Client

	// logger receives per-page debug lines and failure warnings.
	logger Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client logger.
func WithLogger(l Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a new API client.
//
// PARAMETERS:
//   - baseURL: The API base URL, e.g. "https://api.loyverse.com/v1.0".
//   - token: The bearer token for the Authorization header.
//   - opts: Optional configuration (HTTP client, logger, timeout).
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// SINGLE PAGE FETCH
// =============================================================================

// page is one decoded API response.
type page struct {
	// items are the records extracted from the response body.
	items []record.Record

	// cursor is the continuation token, "" when this is the last page.
	cursor string
}

// fetchPage issues one GET request and decodes the response into records.
//
// PARAMETERS:
//   - endpoint: The endpoint name, used both in the URL path and to locate
//     the collection key in shape 2 responses.
//   - params: Query parameters. First request only; pagination passes just
//     the cursor.
//
// RETURNS:
//   - The decoded page.
//   - An error on transport failure, non-2xx status, or undecodable body.
func (c *Client) fetchPage(ctx context.Context, endpoint string, params url.Values) (page, error) {
	reqURL := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return page{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return page{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		return page{}, fmt.Errorf("HTTP %s for %s", resp.Status, endpoint)
	}

	var body any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return page{}, fmt.Errorf("failed to decode response: %w", err)
	}

	return decodePage(endpoint, body), nil
}

// decodePage maps a decoded JSON body onto records and a cursor according
// to the four response shapes.
func decodePage(endpoint string, body any) page {
	switch v := body.(type) {
	case []any:
		// Shape 1: bare list, no cursor.
		return page{items: toRecords(v)}

	case map[string]any:
		obj := record.Record(v)
		cursor := obj.StringOr("cursor", "")

		if list, ok := v[endpoint].([]any); ok {
			// Shape 2: collection under the endpoint's own name.
			return page{items: toRecords(list), cursor: cursor}
		}
		if _, ok := v["cursor"]; ok {
			// Shape 3: generic items collection.
			items, _ := v["items"].([]any)
			return page{items: toRecords(items), cursor: cursor}
		}
		// Shape 4: a single object is itself the record.
		return page{items: []record.Record{obj}}

	default:
		// Scalar or null body: nothing to extract.
		return page{}
	}
}

// toRecords converts a JSON array into records, skipping non-object
// elements.
func toRecords(list []any) []record.Record {
	out := make([]record.Record, 0, len(list))
	for _, el := range list {
		if m, ok := el.(map[string]any); ok {
			out = append(out, record.Record(m))
		}
	}
	return out
}

// =============================================================================
// PAGINATION WALKER
// =============================================================================

// FetchAll retrieves every page of an endpoint and merges the results into
// one ordered sequence, preserving API-returned order.
//
// PARAMETERS:
//   - endpoint: The endpoint name, e.g. "receipts".
//   - params: Optional query parameters for the first request only.
//
// RETURNS:
//   - All accumulated records. On a mid-walk failure the walk stops and the
//     records fetched so far are returned; the failure is logged, never
//     returned. An endpoint that fails on its first page yields an empty
//     slice.
func (c *Client) FetchAll(ctx context.Context, endpoint string, params url.Values) []record.Record {
	var all []record.Record

	for pageNum := 1; ; pageNum++ {
		p, err := c.fetchPage(ctx, endpoint, params)
		if err != nil {
			c.logger.Warn("Error fetching %s: %v", endpoint, err)
			break
		}

		all = append(all, p.items...)
		c.logger.Debug("Fetched page %d of %s (%d records)", pageNum, endpoint, len(p.items))

		if p.cursor == "" {
			break
		}

		// The cursor replaces all query parameters on subsequent requests.
		params = url.Values{"cursor": []string{p.cursor}}
	}

	return all
}
