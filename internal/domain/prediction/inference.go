package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrMissingPrediction means the inference body had no usable
	// prediction field.
	ErrMissingPrediction = errors.New("inference response has no prediction")
	// ErrUpstreamStatus is matched by every *StatusError.
	ErrUpstreamStatus = errors.New("inference service returned non-2xx status")
)

// StatusError records a non-2xx answer from the inference service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inference service status %d: %s", e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUpstreamStatus
}

// InferenceClient sends a serialized PatientRecord to the inference service
// and returns the raw prediction value.
type InferenceClient interface {
	Predict(ctx context.Context, requestID string, record []byte) (json.RawMessage, error)
}

// HTTPInferenceClient talks JSON over HTTP to a single configured endpoint.
type HTTPInferenceClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPInferenceClient creates a client for endpoint. The timeout bounds
// the whole round trip including reading the body.
func NewHTTPInferenceClient(endpoint string, timeout time.Duration) *HTTPInferenceClient {
	return &HTTPInferenceClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the configured inference URL.
func (c *HTTPInferenceClient) Endpoint() string {
	return c.endpoint
}

func (c *HTTPInferenceClient) Predict(ctx context.Context, requestID string, record []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(record))
	if err != nil {
		return nil, fmt.Errorf("build inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call inference service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read inference response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 512)}
	}

	return extractPrediction(body)
}

// extractPrediction pulls the prediction field out of an inference body.
// Every other field is dropped. JSON null counts as absent.
func extractPrediction(body []byte) (json.RawMessage, error) {
	var out struct {
		Prediction json.RawMessage `json:"prediction"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode inference response: %w", err)
	}
	if len(out.Prediction) == 0 || string(out.Prediction) == "null" {
		return nil, ErrMissingPrediction
	}
	return out.Prediction, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
