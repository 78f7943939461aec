// Package ingest is the network boundary: it sends the normalized payload to
// the single ingestion endpoint and classifies the outcome. Whatever the
// backend answers with - structured JSON, a plain string, or unparseable
// text - enough of it is preserved for the controller to show the user
// something diagnostic.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"offsite/internal/platform/config"
	"offsite/pkg/platform/circuit"
)

var tracer = otel.Tracer("offsite/internal/profiling/ingest")

// DefaultErrorMessage is the last-resort message when nothing usable can be
// extracted from a failed response.
const DefaultErrorMessage = "submission failed"

// SubmitError is the structured failure outcome of a submission attempt.
type SubmitError struct {
	// Status is the HTTP status code, 0 for transport-level failures.
	Status int
	// Message is the best human-readable failure description available.
	Message string
	// Payload is the parsed error body when the response was valid JSON,
	// otherwise the raw body text so the response is never lost.
	Payload any
	// Raw is the verbatim response body, empty for transport failures.
	Raw string
}

func (e *SubmitError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ingest: %s (status %d)", e.Message, e.Status)
	}
	return "ingest: " + e.Message
}

// probeTimeout bounds attempts made while the breaker is open: the endpoint
// was recently unreachable, so probe cheaply instead of burning the full
// submit timeout.
const probeTimeout = 5 * time.Second

// Client submits normalized payloads to the ingestion endpoint. A circuit
// breaker counts transport-level failures; any response from the backend,
// even an error one, counts as a success because reachability is what the
// breaker guards.
type Client struct {
	httpClient *http.Client
	url        string
	timeout    time.Duration
	breaker    *circuit.Breaker
}

// New builds a submission client for the configured endpoint.
func New(cfg config.IngestConfig) *Client {
	return &Client{
		httpClient: &http.Client{},
		url:        cfg.URL,
		timeout:    cfg.SubmitTimeout,
		breaker:    circuit.New("ingest", circuit.WithFailureThreshold(3)),
	}
}

// Submit POSTs the payload and returns the parsed response body on success.
// Every attempt carries a deadline so a hung backend cannot pin the wizard's
// in-flight guard; an exceeded deadline comes back as a transport-level
// *SubmitError like any other network failure.
func (c *Client) Submit(ctx context.Context, payload map[string]any) (map[string]any, error) {
	timeout := c.timeout
	if c.breaker.IsOpen() {
		timeout = min(timeout, probeTimeout)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "ingest.Submit", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &SubmitError{Message: "encode payload: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &SubmitError{Message: "build request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		span.SetStatus(codes.Error, err.Error())
		return nil, &SubmitError{Message: err.Error()}
	}
	defer resp.Body.Close()
	c.breaker.RecordSuccess()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &SubmitError{Status: resp.StatusCode, Message: "read response: " + err.Error()}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return parseSuccess(raw), nil
	}

	span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	return nil, classify(resp.StatusCode, raw)
}

// parseSuccess decodes a success body, tolerating empty and non-JSON bodies.
func parseSuccess(raw []byte) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return map[string]any{"raw": string(raw)}
	}
	return parsed
}

// classify builds a SubmitError from a failed response. The message is
// extracted in priority order: structured "error" field, structured "detail"
// field, raw string body, fixed default. Bodies that are not the expected
// shape degrade to raw-text capture rather than being swallowed.
func classify(status int, raw []byte) *SubmitError {
	out := &SubmitError{Status: status, Message: DefaultErrorMessage, Raw: string(raw)}

	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err == nil {
		out.Payload = parsed
		if msg, ok := parsed["error"].(string); ok && msg != "" {
			out.Message = msg
		} else if msg, ok := parsed["detail"].(string); ok && msg != "" {
			out.Message = msg
		}
		return out
	}

	// A JSON string body ("oops") still parses; anything else is raw text.
	var str string
	if err := json.Unmarshal(raw, &str); err == nil && str != "" {
		out.Payload = str
		out.Message = str
		return out
	}

	out.Payload = string(raw)
	if s := string(raw); s != "" {
		out.Message = s
	}
	return out
}
