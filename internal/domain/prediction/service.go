package prediction

import (
	"context"
	"encoding/json"
	"fmt"
)

// Service relays patient records to the inference service.
type Service struct {
	inference InferenceClient
}

// NewService creates a new prediction service.
func NewService(inference InferenceClient) *Service {
	return &Service{inference: inference}
}

// Predict forwards record unmodified. The record is not validated; the
// inference service owns that.
func (s *Service) Predict(ctx context.Context, requestID string, record []byte) (json.RawMessage, error) {
	if len(record) == 0 {
		return nil, fmt.Errorf("empty patient record")
	}
	return s.inference.Predict(ctx, requestID, record)
}
