package prediction

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cardio/cardio/internal/platform/middleware"
)

// Proxy outcomes reported to a Recorder.
const (
	OutcomeSuccess           = "success"
	OutcomeUpstreamStatus    = "upstream_status"
	OutcomeMissingPrediction = "missing_prediction"
	OutcomeError             = "error"
)

// Recorder counts finished proxy requests by outcome.
type Recorder interface {
	PredictionOutcome(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) PredictionOutcome(string) {}

// Handler exposes the prediction proxy over HTTP.
type Handler struct {
	svc      *Service
	logger   zerolog.Logger
	recorder Recorder
}

// NewHandler creates a new prediction handler.
func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{
		svc:      svc,
		logger:   logger.With().Str("component", "prediction").Logger(),
		recorder: nopRecorder{},
	}
}

// WithRecorder sets the Recorder that receives request outcomes.
func (h *Handler) WithRecorder(r Recorder) *Handler {
	if r != nil {
		h.recorder = r
	}
	return h
}

// RegisterRoutes registers the proxy route on the /api group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/predict", h.Predict)
}

// Predict relays the request body to the inference service. Callers see
// either 200 {"prediction": v} or the fixed 500 body; the underlying cause
// only reaches the log.
func (h *Handler) Predict(c echo.Context) error {
	ctx := c.Request().Context()
	rid := middleware.GetRequestID(c)

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return h.fail(c, rid, err)
	}

	evt := h.logger.Info().Str("request_id", rid)
	if json.Valid(body) {
		evt = evt.RawJSON("record", body)
	} else {
		evt = evt.Bytes("record_raw", body)
	}
	evt.Msg("received patient record")

	value, err := h.svc.Predict(ctx, rid, body)
	if err != nil {
		return h.fail(c, rid, err)
	}

	h.recorder.PredictionOutcome(OutcomeSuccess)
	return c.JSON(http.StatusOK, PredictResponse{Prediction: value})
}

func (h *Handler) fail(c echo.Context, rid string, cause error) error {
	evt := h.logger.Error().Err(cause).Str("request_id", rid)
	outcome := OutcomeError
	var se *StatusError
	switch {
	case errors.As(cause, &se):
		outcome = OutcomeUpstreamStatus
		evt = evt.Int("upstream_status", se.Code).Str("upstream_body", se.Body)
	case errors.Is(cause, ErrMissingPrediction):
		outcome = OutcomeMissingPrediction
		evt = evt.Str("reason", "missing_prediction")
	}
	evt.Msg("prediction request failed")
	h.recorder.PredictionOutcome(outcome)

	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: FailureMessage})
}
