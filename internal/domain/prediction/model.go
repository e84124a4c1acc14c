package prediction

import "encoding/json"

// PatientRecord is the set of health metrics submitted for a risk
// prediction. The JSON names are the inference service's column names.
type PatientRecord struct {
	Age         int     `json:"age"`
	Gender      int     `json:"gender"`
	Height      float64 `json:"height"`
	Weight      float64 `json:"weight"`
	APHi        int     `json:"ap_hi"`
	APLo        int     `json:"ap_lo"`
	Cholesterol int     `json:"cholesterol"`
	Gluc        int     `json:"gluc"`
	Smoke       int     `json:"smoke"`
	Alco        int     `json:"alco"`
	Active      int     `json:"active"`
}

// Gender codes.
const (
	GenderFemale = 1
	GenderMale   = 2
)

// Cholesterol and glucose levels share one scale.
const (
	LevelNormal          = 1
	LevelAboveNormal     = 2
	LevelWellAboveNormal = 3
)

// Prediction values.
const (
	LowRisk  = 0
	HighRisk = 1
)

// FailureMessage is the only error body the proxy ever returns.
const FailureMessage = "Failed to process prediction"

// PredictResponse is the proxy's success body. The value is relayed exactly
// as the inference service produced it.
type PredictResponse struct {
	Prediction json.RawMessage `json:"prediction"`
}

// ErrorResponse is the proxy's failure body.
type ErrorResponse struct {
	Error string `json:"error"`
}
