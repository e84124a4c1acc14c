package form

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/cardio/cardio/internal/domain/prediction"
)

// Predictor submits a record and returns a prediction of 0 or 1.
type Predictor interface {
	Predict(ctx context.Context, record prediction.PatientRecord) (int, error)
}

// StatusError is returned when the proxy answers outside 2xx.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Code)
}

// UnexpectedPredictionError is returned when the proxy's prediction is
// anything other than the numbers 0 or 1.
type UnexpectedPredictionError struct {
	Raw string
}

func (e *UnexpectedPredictionError) Error() string {
	if e.Raw == "" {
		return "unexpected prediction value: missing"
	}
	return "unexpected prediction value: " + e.Raw
}

// Client posts records to the prediction proxy.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a proxy client. A nil httpClient means
// http.DefaultClient.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{endpoint: endpoint, httpClient: httpClient}
}

func (c *Client) Predict(ctx context.Context, record prediction.PatientRecord) (int, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return 0, fmt.Errorf("encode patient record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return 0, &StatusError{Code: resp.StatusCode}
	}

	var out prediction.PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode prediction response: %w", err)
	}
	return decodePrediction(out.Prediction)
}

// decodePrediction accepts only the JSON numbers 0 and 1.
func decodePrediction(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, &UnexpectedPredictionError{Raw: string(raw)}
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, &UnexpectedPredictionError{Raw: string(raw)}
	}
	switch v {
	case prediction.LowRisk:
		return prediction.LowRisk, nil
	case prediction.HighRisk:
		return prediction.HighRisk, nil
	}
	return 0, &UnexpectedPredictionError{Raw: string(raw)}
}
