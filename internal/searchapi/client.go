package searchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scisearch/internal/domain"
)

// Client posts search requests to the remote search API.
type Client struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// Config configures the search API client.
type Config struct {
	Endpoint string
	// Timeout bounds a whole request. Zero means no timeout.
	Timeout time.Duration
	// HTTPClient overrides the default client, mostly for tests.
	HTTPClient *http.Client
}

// StatusError is returned when the API answers with a non-success status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string { return e.Message }

// NewClient creates a client for the given endpoint.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{endpoint: cfg.Endpoint, client: hc, logger: logger}
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

// Search posts req as JSON and decodes the reply.
func (c *Client) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	log := c.logger.With(zap.String("request_id", requestID), zap.String("endpoint", c.endpoint))
	log.Debug("posting search request", zap.String("query", req.Query), zap.Any("sources", req.Sources))

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		log.Warn("search request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()
	log = log.With(zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		serr := statusError(resp)
		log.Warn("search API returned an error", zap.String("message", serr.Message))
		return nil, serr
	}

	var out domain.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Warn("undecodable search response", zap.Error(err))
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	log.Info("search completed", zap.Int("total_count", out.Retrieval.Total()))
	return &out, nil
}

// statusError extracts the "error" field of a failed reply. An unreadable
// body yields "Unknown error"; a body without a usable error string falls
// back to the HTTP status.
func statusError(resp *http.Response) *StatusError {
	serr := &StatusError{StatusCode: resp.StatusCode}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		serr.Message = "Unknown error"
		return serr
	}
	var body struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		if msg, ok := body.Error.(string); ok && strings.TrimSpace(msg) != "" {
			serr.Message = msg
			return serr
		}
	}
	serr.Message = fmt.Sprintf("HTTP %d", resp.StatusCode)
	return serr
}
