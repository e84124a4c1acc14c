// Package riskmodel is a local stand-in for the inference service. It
// accepts the same request, validates it the same way and derives the same
// features, but scores them with a fixed logistic function instead of a
// trained model. It exists so the proxy can be exercised end to end.
package riskmodel

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RequiredFields are the record columns every request must carry.
var RequiredFields = []string{"age", "gender", "height", "weight", "ap_hi", "ap_lo", "cholesterol", "gluc", "smoke", "alco", "active"}

// Ages above this are taken to be in days.
const ageDaysThreshold = 200

// Blood pressure categories.
const (
	BPNormal   = "Normal"
	BPElevated = "Elevated"
	BPHigh     = "High"
)

// Features is the engineered input row.
type Features struct {
	AgeYears             float64
	Gender               float64
	Height               float64
	Weight               float64
	APHi                 float64
	APLo                 float64
	Cholesterol          float64
	Gluc                 float64
	Smoke                float64
	Alco                 float64
	Active               float64
	BMI                  float64
	PulsePressure        float64
	MeanArterialPressure float64
	BPStatus             string
}

// ValidationError is reported to callers as a 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Parse decodes a JSON object into numeric columns. Numbers and numeric
// strings are accepted.
func Parse(body []byte) (map[string]float64, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("Invalid JSON body: %v", err)}
	}

	var missing []string
	for _, f := range RequiredFields {
		if _, ok := raw[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Msg: fmt.Sprintf("Missing required fields: [%s]", strings.Join(missing, ", "))}
	}

	values := make(map[string]float64, len(RequiredFields))
	for _, f := range RequiredFields {
		v, ok := toNumber(raw[f])
		if !ok {
			return nil, &ValidationError{Msg: fmt.Sprintf("Invalid value for %s: %s", f, string(raw[f]))}
		}
		values[f] = v
	}
	return values, nil
}

func toNumber(raw json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil && string(raw) != "null" {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
			return n, true
		}
	}
	return 0, false
}

// Derive builds the feature row. Ages above 200 are converted from days to
// years.
func Derive(v map[string]float64) Features {
	f := Features{
		AgeYears:    v["age"],
		Gender:      v["gender"],
		Height:      v["height"],
		Weight:      v["weight"],
		APHi:        v["ap_hi"],
		APLo:        v["ap_lo"],
		Cholesterol: v["cholesterol"],
		Gluc:        v["gluc"],
		Smoke:       v["smoke"],
		Alco:        v["alco"],
		Active:      v["active"],
	}
	if f.AgeYears > ageDaysThreshold {
		f.AgeYears = f.AgeYears / 365.25
	}
	if f.Height > 0 {
		m := f.Height / 100
		f.BMI = f.Weight / (m * m)
	}
	f.PulsePressure = f.APHi - f.APLo
	f.MeanArterialPressure = (2*f.APLo + f.APHi) / 3
	f.BPStatus = bpStatus(f.APHi, f.APLo)
	return f
}

func bpStatus(hi, lo float64) string {
	switch {
	case hi >= 140 || lo >= 90:
		return BPHigh
	case hi < 120 && lo < 80:
		return BPNormal
	}
	return BPElevated
}

// Score returns the class (0 or 1) and the probability of class 1.
func Score(f Features) (int, float64) {
	z := -1.5 +
		0.045*(f.AgeYears-50) +
		0.035*(f.APHi-120) +
		0.02*(f.APLo-80) +
		0.06*(f.BMI-25) +
		0.1*f.Smoke -
		0.25*f.Active
	if f.Cholesterol == 2 {
		z += 0.5
	}
	if f.Cholesterol == 3 {
		z += 1.0
	}
	if f.Gluc == 2 {
		z += 0.2
	}
	if f.Gluc == 3 {
		z += 0.4
	}
	if f.BPStatus == BPHigh {
		z += 0.8
	}

	p := 1 / (1 + math.Exp(-z))
	if p >= 0.5 {
		return 1, p
	}
	return 0, p
}
