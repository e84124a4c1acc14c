package prediction

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const sampleRecord = `{"age":52,"gender":2,"height":176,"weight":72.5,"ap_hi":150,"ap_lo":95,"cholesterol":2,"gluc":1,"smoke":1,"alco":0,"active":1}`

func newTestHandler(upstream string, logBuf *bytes.Buffer) (*Handler, *echo.Echo) {
	logger := zerolog.New(io.Discard)
	if logBuf != nil {
		logger = zerolog.New(logBuf)
	}
	svc := NewService(NewHTTPInferenceClient(upstream, 2*time.Second))
	return NewHandler(svc, logger), echo.New()
}

func doPredict(t *testing.T, h *Handler, e *echo.Echo, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.Predict(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return rec
}

func assertFixedFailure(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(body) != 1 || body["error"] != FailureMessage {
		t.Errorf("expected fixed failure body, got %s", rec.Body.String())
	}
}

func upstream(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestHandler_Predict_HighRisk(t *testing.T) {
	srv := upstream(http.StatusOK, `{"prediction":1,"probability":0.91}`)
	defer srv.Close()

	h, e := newTestHandler(srv.URL, nil)
	rec := doPredict(t, h, e, sampleRecord)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["prediction"] != float64(1) {
		t.Errorf("expected prediction 1, got %v", body["prediction"])
	}
	if _, ok := body["probability"]; ok {
		t.Error("expected extra upstream fields to be discarded")
	}
}

func TestHandler_Predict_LowRisk(t *testing.T) {
	srv := upstream(http.StatusOK, `{"prediction":0}`)
	defer srv.Close()

	h, e := newTestHandler(srv.URL, nil)
	rec := doPredict(t, h, e, sampleRecord)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"prediction":0}` {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHandler_Predict_UpstreamStatusCollapsed(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusServiceUnavailable} {
		srv := upstream(status, `{"error":"Missing required fields: ['age']"}`)
		h, e := newTestHandler(srv.URL, nil)
		rec := doPredict(t, h, e, sampleRecord)
		srv.Close()

		assertFixedFailure(t, rec)
		if strings.Contains(rec.Body.String(), "Missing required") {
			t.Errorf("status %d: upstream detail leaked to client", status)
		}
	}
}

func TestHandler_Predict_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	h, e := newTestHandler(url, nil)
	assertFixedFailure(t, doPredict(t, h, e, sampleRecord))
}

func TestHandler_Predict_MalformedUpstreamBody(t *testing.T) {
	srv := upstream(http.StatusOK, `<html>oops</html>`)
	defer srv.Close()

	h, e := newTestHandler(srv.URL, nil)
	assertFixedFailure(t, doPredict(t, h, e, sampleRecord))
}

func TestHandler_Predict_MissingPrediction(t *testing.T) {
	for _, body := range []string{`{"probability":0.4}`, `{"prediction":null}`} {
		srv := upstream(http.StatusOK, body)
		h, e := newTestHandler(srv.URL, nil)
		rec := doPredict(t, h, e, sampleRecord)
		srv.Close()

		assertFixedFailure(t, rec)
	}
}

func TestHandler_Predict_LogsRealCause(t *testing.T) {
	srv := upstream(http.StatusServiceUnavailable, `model warming up`)
	defer srv.Close()

	var logs bytes.Buffer
	h, e := newTestHandler(srv.URL, &logs)
	assertFixedFailure(t, doPredict(t, h, e, sampleRecord))

	out := logs.String()
	if !strings.Contains(out, `"upstream_status":503`) {
		t.Errorf("expected upstream status in logs, got %s", out)
	}
	if !strings.Contains(out, "model warming up") {
		t.Errorf("expected upstream body in logs, got %s", out)
	}
	if !strings.Contains(out, `"record":{"age":52`) {
		t.Errorf("expected inbound record in logs, got %s", out)
	}
}

func TestHandler_Predict_RoundTripPreservesRecord(t *testing.T) {
	var forwarded []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		forwarded, _ = io.ReadAll(r.Body)
		var in map[string]interface{}
		json.Unmarshal(forwarded, &in)
		// echo the record back along with a prediction
		in["prediction"] = 1
		json.NewEncoder(w).Encode(in)
	}))
	defer srv.Close()

	h, e := newTestHandler(srv.URL, nil)
	rec := doPredict(t, h, e, sampleRecord)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if string(forwarded) != sampleRecord {
		t.Errorf("record mutated in transit:\n got %s\nwant %s", forwarded, sampleRecord)
	}
	var out PredictResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(out.Prediction) != "1" {
		t.Errorf("expected prediction 1, got %s", out.Prediction)
	}
}

func TestHandler_RegisterRoutes(t *testing.T) {
	srv := upstream(http.StatusOK, `{"prediction":0}`)
	defer srv.Close()

	h, e := newTestHandler(srv.URL, nil)
	h.RegisterRoutes(e.Group("/api"))

	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(sampleRecord))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

type countingRecorder struct {
	counts map[string]int
}

func (r *countingRecorder) PredictionOutcome(outcome string) {
	r.counts[outcome]++
}

func TestHandler_Predict_RecordsOutcomes(t *testing.T) {
	ok := upstream(http.StatusOK, `{"prediction":0}`)
	defer ok.Close()
	bad := upstream(http.StatusServiceUnavailable, `{"error":"down"}`)
	defer bad.Close()
	empty := upstream(http.StatusOK, `{}`)
	defer empty.Close()

	rec := &countingRecorder{counts: map[string]int{}}
	for _, srv := range []*httptest.Server{ok, ok, bad, empty} {
		h, e := newTestHandler(srv.URL, nil)
		h.WithRecorder(rec)
		doPredict(t, h, e, sampleRecord)
	}
	h, e := newTestHandler("http://127.0.0.1:1", nil)
	h.WithRecorder(rec)
	doPredict(t, h, e, sampleRecord)

	want := map[string]int{
		OutcomeSuccess:           2,
		OutcomeUpstreamStatus:    1,
		OutcomeMissingPrediction: 1,
		OutcomeError:             1,
	}
	for k, v := range want {
		if rec.counts[k] != v {
			t.Errorf("outcome %s: expected %d, got %d", k, v, rec.counts[k])
		}
	}
}

func TestHandler_WithRecorder_NilKeepsDefault(t *testing.T) {
	srv := upstream(http.StatusOK, `{"prediction":1}`)
	defer srv.Close()

	h, e := newTestHandler(srv.URL, nil)
	h.WithRecorder(nil)
	if rec := doPredict(t, h, e, sampleRecord); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
