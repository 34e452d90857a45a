// Package skillmatch is a small HTTP client for the skillmatch API.
package skillmatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrServiceUnavailable is returned when the server reports 503: the
// catalog is empty or the backing store is unreachable.
var ErrServiceUnavailable = errors.New("skillmatch: service unavailable")

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("skillmatch: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Recommendation is one recommended assessment.
type Recommendation struct {
	AssessmentName string `json:"assessment_name"`
	AssessmentURL  string `json:"assessment_url"`
}

// RecommendResult is the response of Recommend.
type RecommendResult struct {
	Query           string           `json:"query"`
	Recommendations []Recommendation `json:"recommendations"`
	Count           int              `json:"count"`
}

// HealthReport is the response of Health.
type HealthReport struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks"`
	CatalogSize int               `json:"catalog_size"`
}

// Stats is the response of Stats.
type Stats struct {
	TotalAssessments int            `json:"total_assessments"`
	ByCategory       map[string]int `json:"by_category"`
	Status           string         `json:"status"`
}

// Client calls the skillmatch HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Recommend returns assessments relevant to a hiring query.
func (c *Client) Recommend(ctx context.Context, query string) (*RecommendResult, error) {
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("skillmatch: encode request: %w", err)
	}

	var out RecommendResult
	if err := c.do(ctx, http.MethodPost, "/recommend", bytes.NewReader(body), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health returns the server's health report. A degraded or unhealthy
// report is not an error; inspect Status.
func (c *Client) Health(ctx context.Context) (*HealthReport, error) {
	var out HealthReport
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		// 503 still carries a valid report body
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusServiceUnavailable {
			return nil, err
		}
	}
	if out.Status == "" {
		return nil, fmt.Errorf("skillmatch: empty health report")
	}
	return &out, nil
}

// Stats returns catalog totals.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var out Stats
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body *bytes.Reader, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = body
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("skillmatch: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("skillmatch: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.decodeError(resp, out)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("skillmatch: decode response: %w", err)
	}
	return nil
}

// decodeError maps a non-2xx response to APIError. For 503 the body is
// first tried as the expected payload (health reports stay readable),
// then as an error body.
func (c *Client) decodeError(resp *http.Response, out any) error {
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)

	if resp.StatusCode == http.StatusServiceUnavailable && out != nil {
		_ = json.Unmarshal(buf.Bytes(), out)
	}

	var errBody struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(buf.Bytes(), &errBody)

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Code:       errBody.Code,
		Message:    errBody.Message,
	}
	if resp.StatusCode == http.StatusServiceUnavailable {
		return fmt.Errorf("%w: %w", ErrServiceUnavailable, apiErr)
	}
	return apiErr
}
