package riskmodel

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Response mirrors the inference service's success body.
type Response struct {
	Prediction  int     `json:"prediction"`
	Probability float64 `json:"probability"`
}

// Handler serves the stand-in inference endpoint.
type Handler struct {
	logger zerolog.Logger
}

func NewHandler(logger zerolog.Logger) *Handler {
	return &Handler{logger: logger.With().Str("component", "riskmodel").Logger()}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/predict", h.Predict)
}

func (h *Handler) Predict(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	values, err := Parse(body)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			h.logger.Warn().Str("reason", ve.Msg).Msg("rejected record")
			return c.JSON(http.StatusBadRequest, map[string]string{"error": ve.Msg})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	f := Derive(values)
	class, p := Score(f)

	h.logger.Debug().
		Float64("age_years", f.AgeYears).
		Float64("bmi", f.BMI).
		Str("bp_status", f.BPStatus).
		Float64("probability", p).
		Int("prediction", class).
		Msg("scored record")

	return c.JSON(http.StatusOK, Response{Prediction: class, Probability: p})
}
