// Package client talks to the detection log endpoint over HTTP and builds
// the public dashboard view on top of it.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/heartmarshall/modlog-backend/internal/domain"
)

const (
	logsPath       = "/api/detection-logs"
	identityHeader = "uuid"
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10
)

// Client fetches detection logs from the server-side endpoint. It never
// retries; callers retry by calling again.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// New creates a Client for the server at baseURL with a default timeout.
func New(baseURL string, logger *slog.Logger) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: defaultTimeout}, logger)
}

// NewWithHTTPClient creates a Client that sends requests through hc.
func NewWithHTTPClient(baseURL string, hc *http.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
		log:        logger.With("adapter", "modlog_client"),
	}
}

// LogsQuery narrows a FetchLogs call. Zero values leave the server defaults.
type LogsQuery struct {
	Page     int
	PageSize int
	Range    *domain.ConfidenceRange
}

// LogsResult is a decoded success response.
type LogsResult struct {
	UserID     string
	Count      int
	TotalCount int
	Logs       []domain.DetectionLog
}

// APIError is a non-2xx response from the endpoint. A 400 matches
// domain.ErrMissingIdentity and a 5xx matches domain.ErrRetrievalFailed.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
	Hint       string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("modlog: status %d: %s", e.StatusCode, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusBadRequest:
		return domain.ErrMissingIdentity
	case e.StatusCode >= 500:
		return domain.ErrRetrievalFailed
	}
	return nil
}

type logsBody struct {
	Success    bool      `json:"success"`
	UserID     string    `json:"userId"`
	Count      int       `json:"count"`
	TotalCount int       `json:"totalCount"`
	Logs       []logBody `json:"logs"`
}

type logBody struct {
	ID            int64          `json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	TextContent   string         `json:"text_content"`
	Confidence    float64        `json:"confidence"`
	ThresholdUsed float64        `json:"threshold_used"`
	ModelVersion  *string        `json:"model_version"`
	IsHarmful     bool           `json:"is_harmful"`
	UserID        *string        `json:"user_id"`
	Metadata      map[string]any `json:"metadata"`
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// FetchLogs returns the logs owned by identity. An empty identity fails with
// domain.ErrMissingIdentity before any request is sent. Transport failures
// are reported as domain.RetrievalError.
func (c *Client) FetchLogs(ctx context.Context, identity string, q LogsQuery) (*LogsResult, error) {
	if identity == "" {
		return nil, domain.ErrMissingIdentity
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+logsPath+encodeQuery(q), nil)
	if err != nil {
		return nil, fmt.Errorf("modlog: create request: %w", err)
	}
	req.Header.Set(identityHeader, identity)
	req.Header.Set("Accept", "application/json")

	c.log.DebugContext(ctx, "fetch logs", slog.Int("page", q.Page), slog.Int("page_size", q.PageSize))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "fetch logs failed", slog.String("error", err.Error()))
		return nil, domain.NewRetrievalError("fetch logs", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var body logsBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, domain.NewRetrievalError("decode logs", err)
	}

	c.log.DebugContext(ctx, "fetch logs done",
		slog.Int("count", body.Count),
		slog.Int("total", body.TotalCount),
	)

	return &LogsResult{
		UserID:     body.UserID,
		Count:      body.Count,
		TotalCount: body.TotalCount,
		Logs:       toDomainLogs(body.Logs),
	}, nil
}

func encodeQuery(q LogsQuery) string {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.Range != nil {
		v.Set("minConfidence", strconv.FormatFloat(q.Range.Min, 'f', -1, 64))
		v.Set("maxConfidence", strconv.FormatFloat(q.Range.Max, 'f', -1, 64))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apiErr
	}
	var body errorBody
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
		apiErr.Hint = body.Hint
	}
	return apiErr
}

func toDomainLogs(in []logBody) []domain.DetectionLog {
	out := make([]domain.DetectionLog, len(in))
	for i, l := range in {
		out[i] = domain.DetectionLog{
			ID:            l.ID,
			CreatedAt:     l.CreatedAt,
			TextContent:   l.TextContent,
			Confidence:    l.Confidence,
			ThresholdUsed: l.ThresholdUsed,
			ModelVersion:  l.ModelVersion,
			IsHarmful:     l.IsHarmful,
			UserID:        l.UserID,
			Metadata:      l.Metadata,
		}
	}
	return out
}
