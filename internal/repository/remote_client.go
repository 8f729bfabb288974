package repository

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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/teamhub-go-api/internal/observability"
)

// ErrNetworkFailure matches every failed remote call: transport errors and
// non-success statuses alike.
var ErrNetworkFailure = errors.New("remote call failed")

var (
	syncRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamhub",
		Subsystem: "sync",
		Name:      "requests_total",
		Help:      "Remote persistence calls by table, operation and outcome.",
	}, []string{"table", "op", "outcome"})

	syncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "teamhub",
		Subsystem: "sync",
		Name:      "duration_seconds",
		Help:      "Latency of remote persistence calls.",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
	}, []string{"table", "op"})
)

// RemoteError describes a failed round trip to the persistence service.
// Status is zero when the request never produced a response.
type RemoteError struct {
	Table   string
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	target := e.Op
	if e.Table != "" {
		target = e.Table + " " + e.Op
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %v", target, e.Err)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", target, e.Status, e.Message)
}

// Unwrap exposes the transport error, if any.
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNetworkFailure) match any RemoteError.
func (e *RemoteError) Is(target error) bool {
	return target == ErrNetworkFailure
}

// ClientConfig configures the remote persistence client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Client performs single-attempt JSON calls against the persistence service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
	logger     zerolog.Logger
}

// NewClient builds a remote client. A zero timeout leaves calls unbounded.
func NewClient(cfg ClientConfig) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("remote base url must not be empty")
	}

	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tracer:     otel.Tracer("github.com/noah-isme/teamhub-go-api/internal/repository"),
		logger:     cfg.Logger.With().Str("component", "sync_client").Logger(),
	}, nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// call sends one request and decodes the response into out when out is non-nil.
func (c *Client) call(ctx context.Context, table, op, method, path string, body any, out any) error {
	ctx, span := c.tracer.Start(ctx, "sync."+op, trace.WithAttributes(
		attribute.String("sync.table", table),
		attribute.String("http.method", method),
	))
	defer span.End()

	start := time.Now()
	err := c.roundTrip(ctx, table, op, method, path, body, out)
	syncDuration.WithLabelValues(table, op).Observe(time.Since(start).Seconds())

	if err != nil {
		syncRequests.WithLabelValues(table, op, "failure").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn().Err(err).Str("table", table).Str("op", op).Msg("remote call failed")
		return err
	}

	syncRequests.WithLabelValues(table, op, "success").Inc()
	return nil
}

func (c *Client) roundTrip(ctx context.Context, table, op, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s payload: %w", table, op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &RemoteError{Table: table, Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if correlationID := observability.CorrelationIDFromContext(ctx); correlationID != "" {
		req.Header.Set("X-Correlation-ID", correlationID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteError{Table: table, Op: op, Err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RemoteError{Table: table, Op: op, Status: resp.StatusCode, Message: "unreadable response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RemoteError{Table: table, Op: op, Status: resp.StatusCode, Message: errorMessage(payload, resp.Status)}
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return &RemoteError{Table: table, Op: op, Status: resp.StatusCode, Message: "malformed response body", Err: err}
	}

	return nil
}

func errorMessage(payload []byte, fallback string) string {
	var body errorBody
	if err := json.Unmarshal(payload, &body); err == nil {
		if msg := strings.TrimSpace(body.Error); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(body.Message); msg != "" {
			return msg
		}
	}
	if text := strings.TrimSpace(string(payload)); text != "" {
		return text
	}
	return fallback
}
