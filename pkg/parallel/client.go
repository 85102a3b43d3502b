// Package parallel is a client for the Parallel AI Search and Task Run APIs.
//
// Provider responses come back in several shapes (task output as a plain
// string or a typed wrapper object); this package reduces every response to
// one plain shape before it reaches callers, and classifies every failure
// into a closed kind set so callers branch on types, not message text.
package parallel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/itemmatch/internal/resilience"
)

const (
	defaultBaseURL     = "https://api.parallel.ai"
	defaultTaskTimeout = 100 // seconds the result endpoint may block
)

// Processor selects the provider-side compute tier.
type Processor string

const (
	ProcessorBase  Processor = "base"
	ProcessorPro   Processor = "pro"
	ProcessorUltra Processor = "ultra"
)

// Client exposes the two provider capabilities.
type Client interface {
	// Search runs an unstructured web search. Blocks for seconds.
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
	// RunTask creates a structured task run and blocks until the remote
	// job completes or its timeout elapses (minutes).
	RunTask(ctx context.Context, req TaskRequest) (*TaskResponse, error)
}

// SearchRequest is the input for the Search API.
type SearchRequest struct {
	Objective         string    `json:"objective"`
	SearchQueries     []string  `json:"search_queries,omitempty"`
	Processor         Processor `json:"processor"`
	MaxResults        int       `json:"max_results,omitempty"`
	MaxCharsPerResult int       `json:"max_chars_per_result,omitempty"`
}

// SearchResponse is the normalized Search API output.
type SearchResponse struct {
	SearchID string      `json:"search_id"`
	Results  []WebResult `json:"results"`
}

// WebResult is one search hit.
type WebResult struct {
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Excerpts []string `json:"excerpts"`
}

// TaskRequest is the input for a structured task run.
type TaskRequest struct {
	Input        string
	OutputSchema string
	Processor    Processor
}

// TaskResponse is the normalized task result. Output is always plain text,
// whatever wrapper shape the API returned.
type TaskResponse struct {
	RunID  string
	Output string
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) { c.baseURL = url }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithTaskTimeout sets how long the result endpoint may block, in seconds.
func WithTaskTimeout(seconds int) Option {
	return func(c *httpClient) { c.taskTimeout = seconds }
}

// WithRetry enables retries on transient failures.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) { c.retry = &cfg }
}

// WithRateLimit throttles outgoing calls.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *httpClient) { c.limiter = rate.NewLimiter(limit, burst) }
}

type httpClient struct {
	apiKey      string
	baseURL     string
	taskTimeout int
	retry       *resilience.RetryConfig
	limiter     *rate.Limiter
	http        *http.Client
}

// NewClient creates a Parallel AI client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:      apiKey,
		baseURL:     defaultBaseURL,
		taskTimeout: defaultTaskTimeout,
		http: &http.Client{
			// No client-side timeout: the task result endpoint blocks
			// server-side up to taskTimeout. Cancellation comes from ctx.
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if req.Processor == "" {
		req.Processor = ProcessorBase
	}

	return withRetry(ctx, c, "search", func(ctx context.Context) (*SearchResponse, error) {
		var resp SearchResponse
		if err := c.postJSON(ctx, "/v1beta/search", req, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
}

func (c *httpClient) RunTask(ctx context.Context, req TaskRequest) (*TaskResponse, error) {
	if req.Processor == "" {
		req.Processor = ProcessorBase
	}

	return withRetry(ctx, c, "task", func(ctx context.Context) (*TaskResponse, error) {
		body := map[string]any{
			"input":     req.Input,
			"processor": req.Processor,
			"task_spec": map[string]any{
				"output_schema": req.OutputSchema,
			},
		}

		var created struct {
			RunID string `json:"run_id"`
		}
		if err := c.postJSON(ctx, "/v1/tasks/runs", body, &created); err != nil {
			return nil, err
		}
		if created.RunID == "" {
			return nil, newAPIError(ErrorKindMalformed, 0, eris.New("task run created without run_id"))
		}

		// The result endpoint blocks until the run finishes or the
		// timeout elapses.
		var result struct {
			Output json.RawMessage `json:"output"`
		}
		path := fmt.Sprintf("/v1/tasks/runs/%s/result?api_timeout=%d", created.RunID, c.taskTimeout)
		if err := c.getJSON(ctx, path, &result); err != nil {
			return nil, err
		}

		return &TaskResponse{
			RunID:  created.RunID,
			Output: reduceTaskOutput(result.Output),
		}, nil
	})
}

func withRetry[T any](ctx context.Context, c *httpClient, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	if c.retry == nil {
		return fn(ctx)
	}
	cfg := *c.retry
	if cfg.ShouldRetry == nil {
		cfg.ShouldRetry = func(err error) bool {
			return KindOf(err) == ErrorKindTransient
		}
	}
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.RetryLogger("parallel", operation)
	}
	return resilience.Do(ctx, cfg, fn)
}

func (c *httpClient) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return newAPIError(ErrorKindRequest, 0, eris.Wrap(err, "marshal request"))
	}
	return c.roundTrip(ctx, http.MethodPost, path, payload, out)
}

func (c *httpClient) getJSON(ctx context.Context, path string, out any) error {
	return c.roundTrip(ctx, http.MethodGet, path, nil, out)
}

func (c *httpClient) roundTrip(ctx context.Context, method, path string, payload []byte, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return newAPIError(ErrorKindRequest, 0, eris.Wrap(err, "rate limiter"))
		}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return newAPIError(ErrorKindRequest, 0, eris.Wrap(err, "create request"))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		kind := ErrorKindRequest
		if resilience.IsTransient(err) {
			kind = ErrorKindTransient
		}
		return newAPIError(kind, 0, eris.Wrap(err, "send request"))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return newAPIError(ErrorKindTransient, resp.StatusCode, eris.Wrap(err, "read response"))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := classifyStatus(resp.StatusCode)
		return newAPIError(kind, resp.StatusCode,
			eris.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(respBody), 200)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return newAPIError(ErrorKindMalformed, resp.StatusCode, eris.Wrap(err, "unmarshal response"))
	}
	return nil
}

// reduceTaskOutput collapses the task output wrapper to plain text. The API
// returns either a bare string, or an object whose "content" (or "text")
// field holds the text; structured content is re-serialized as JSON text.
func reduceTaskOutput(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err == nil {
		for _, key := range []string{"content", "text"} {
			inner, present := wrapper[key]
			if !present {
				continue
			}
			var text string
			if err := json.Unmarshal(inner, &text); err == nil {
				return text
			}
			return string(inner)
		}
	}

	return string(raw)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
