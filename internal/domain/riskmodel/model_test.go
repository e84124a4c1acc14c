package riskmodel

import (
	"errors"
	"math"
	"strings"
	"testing"
)

const hypertensiveRecord = `{"age":52,"gender":2,"height":176,"weight":72.5,"ap_hi":150,"ap_lo":95,"cholesterol":2,"gluc":1,"smoke":1,"alco":0,"active":1}`
const healthyRecord = `{"age":35,"gender":1,"height":165,"weight":60,"ap_hi":110,"ap_lo":70,"cholesterol":1,"gluc":1,"smoke":0,"alco":0,"active":1}`

func TestParse_MissingFields(t *testing.T) {
	_, err := Parse([]byte(`{"age":40,"gender":1}`))
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.HasPrefix(ve.Msg, "Missing required fields: [height, weight") {
		t.Errorf("unexpected message %q", ve.Msg)
	}
}

func TestParse_InvalidValue(t *testing.T) {
	body := strings.Replace(healthyRecord, `"gluc":1`, `"gluc":"high"`, 1)
	_, err := Parse([]byte(body))
	if err == nil || !strings.Contains(err.Error(), "Invalid value for gluc") {
		t.Fatalf("expected invalid gluc error, got %v", err)
	}
}

func TestParse_NumericStrings(t *testing.T) {
	body := strings.Replace(healthyRecord, `"age":35`, `"age":"35"`, 1)
	v, err := Parse([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v["age"] != 35 {
		t.Errorf("expected age 35, got %v", v["age"])
	}
}

func TestParse_NullRejected(t *testing.T) {
	body := strings.Replace(healthyRecord, `"smoke":0`, `"smoke":null`, 1)
	if _, err := Parse([]byte(body)); err == nil {
		t.Fatal("expected error for null value")
	}
}

func TestParse_NotJSON(t *testing.T) {
	if _, err := Parse([]byte(`age=40`)); err == nil {
		t.Fatal("expected error for non-JSON body")
	}
}

func TestDerive(t *testing.T) {
	v, err := Parse([]byte(hypertensiveRecord))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	f := Derive(v)

	if math.Abs(f.BMI-23.405) > 0.01 {
		t.Errorf("expected BMI ~23.405, got %v", f.BMI)
	}
	if f.PulsePressure != 55 {
		t.Errorf("expected pulse pressure 55, got %v", f.PulsePressure)
	}
	if math.Abs(f.MeanArterialPressure-113.333) > 0.01 {
		t.Errorf("expected MAP ~113.33, got %v", f.MeanArterialPressure)
	}
	if f.BPStatus != BPHigh {
		t.Errorf("expected High, got %s", f.BPStatus)
	}
}

func TestDerive_AgeInDays(t *testing.T) {
	f := Derive(map[string]float64{"age": 18393, "height": 170, "weight": 70})
	if math.Abs(f.AgeYears-50.357) > 0.01 {
		t.Errorf("expected ~50.36 years, got %v", f.AgeYears)
	}

	f = Derive(map[string]float64{"age": 45})
	if f.AgeYears != 45 {
		t.Errorf("expected 45 years kept, got %v", f.AgeYears)
	}
}

func TestBPStatus(t *testing.T) {
	tests := []struct {
		hi, lo float64
		want   string
	}{
		{110, 70, BPNormal},
		{125, 75, BPElevated},
		{119, 85, BPElevated},
		{140, 70, BPHigh},
		{130, 90, BPHigh},
	}
	for _, tt := range tests {
		if got := bpStatus(tt.hi, tt.lo); got != tt.want {
			t.Errorf("bpStatus(%v, %v) = %s, want %s", tt.hi, tt.lo, got, tt.want)
		}
	}
}

func TestScore(t *testing.T) {
	hv, _ := Parse([]byte(hypertensiveRecord))
	class, p := Score(Derive(hv))
	if class != 1 || p < 0.5 {
		t.Errorf("expected high risk for hypertensive record, got %d (%.3f)", class, p)
	}

	lv, _ := Parse([]byte(healthyRecord))
	class, p = Score(Derive(lv))
	if class != 0 || p >= 0.5 {
		t.Errorf("expected low risk for healthy record, got %d (%.3f)", class, p)
	}
}
