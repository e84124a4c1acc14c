package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cardio/cardio/internal/config"
	"github.com/cardio/cardio/internal/domain/display"
	"github.com/cardio/cardio/internal/domain/form"
	"github.com/cardio/cardio/internal/domain/prediction"
	"github.com/cardio/cardio/internal/domain/riskmodel"
	"github.com/cardio/cardio/internal/platform/logging"
	"github.com/cardio/cardio/internal/platform/middleware"
	"github.com/cardio/cardio/internal/platform/openapi"
	"github.com/cardio/cardio/internal/platform/telemetry"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:          "cardio-server",
		Short:        "Cardiovascular risk prediction proxy",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(stubInferenceCmd())
	rootCmd.AddCommand(predictCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the prediction proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, closeLog := logging.New(logging.Options{Dev: cfg.IsDev(), Level: cfg.LogLevel, File: cfg.LogFile})
			defer closeLog()

			e := newProxyServer(cfg, logger)
			logger.Info().Str("inference_url", cfg.InferenceURL).Msg("proxy configured")
			return run(e, ":"+cfg.Port, logger)
		},
	}
}

func stubInferenceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stub-inference",
		Short: "Start a local stand-in for the inference service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, closeLog := logging.New(logging.Options{Dev: cfg.IsDev(), Level: cfg.LogLevel, File: cfg.LogFile})
			defer closeLog()

			return run(newStubServer(logger), ":"+cfg.StubPort, logger)
		},
	}
}

func predictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Fill in the patient form and submit it to a running proxy",
		Example: "  cardio-server predict --age 52 --gender 2 --height 176 --weight 72.5 \\\n" +
			"    --ap_hi 150 --ap_lo 95 --cholesterol 2 --gluc 1 --smoke 1 --alco 0 --active 1",
		RunE: func(cmd *cobra.Command, args []string) error {
			proxy, _ := cmd.Flags().GetString("proxy")
			timeout, _ := cmd.Flags().GetDuration("timeout")

			values := make(map[string]string)
			for _, f := range form.Fields() {
				if cmd.Flags().Changed(f.Name()) {
					values[f.Name()], _ = cmd.Flags().GetString(f.Name())
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			client := form.NewClient(proxy, &http.Client{Timeout: timeout})
			return runPredict(ctx, cmd.OutOrStdout(), client, values, display.DefaultPicker)
		},
	}
	cmd.Flags().String("proxy", "http://localhost:3000/api/predict", "Prediction proxy endpoint")
	cmd.Flags().Duration("timeout", 60*time.Second, "Overall request timeout")
	for _, f := range form.Fields() {
		cmd.Flags().String(f.Name(), "", fieldUsage[f])
	}
	return cmd
}

var fieldUsage = map[form.Field]string{
	form.Age:         "Age in years",
	form.Gender:      "Gender (1=female, 2=male)",
	form.Height:      "Height in cm",
	form.Weight:      "Weight in kg",
	form.APHi:        "Systolic blood pressure (mmHg)",
	form.APLo:        "Diastolic blood pressure (mmHg)",
	form.Cholesterol: "Cholesterol (1=normal, 2=above normal, 3=well above normal)",
	form.Gluc:        "Glucose (1=normal, 2=above normal, 3=well above normal)",
	form.Smoke:       "Smoker (0/1)",
	form.Alco:        "Alcohol intake (0/1)",
	form.Active:      "Physically active (0/1)",
}

// recordSchema describes the patient record for the API document.
func recordSchema() []openapi.Property {
	props := make([]openapi.Property, 0, len(form.Fields()))
	for _, f := range form.Fields() {
		p := openapi.Property{Name: f.Name(), Type: "integer", Description: fieldUsage[f]}
		switch {
		case f.Decimal():
			p.Type = "number"
		case f.Binary():
			p.Enum = []int{0, 1}
		case f == form.Gender:
			p.Enum = []int{prediction.GenderFemale, prediction.GenderMale}
		case f == form.Cholesterol || f == form.Gluc:
			p.Enum = []int{prediction.LevelNormal, prediction.LevelAboveNormal, prediction.LevelWellAboveNormal}
		}
		props = append(props, p)
	}
	return props
}

// inputKind is the control each field is entered through on the page.
func inputKind(f form.Field) form.InputKind {
	switch f {
	case form.Gender, form.Cholesterol, form.Gluc:
		return form.InputSelect
	case form.Smoke, form.Alco, form.Active:
		return form.InputRadio
	}
	return form.InputNumber
}

// runPredict drives a form the way the page does: one update per control,
// refuse to submit while anything is unset, submit, render.
func runPredict(ctx context.Context, out io.Writer, predictor form.Predictor, values map[string]string, picker display.Picker) error {
	f := form.New(predictor)

	for name, raw := range values {
		field, err := form.FieldByName(name)
		if err != nil {
			return err
		}
		if field.Binary() {
			err = f.UpdateRadioField(field, raw)
		} else {
			err = f.UpdateField(field, raw, inputKind(field))
		}
		if err != nil {
			return err
		}
	}

	if missing := f.Missing(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, m := range missing {
			names[i] = m.Name()
		}
		return fmt.Errorf("missing required fields: %s", strings.Join(names, ", "))
	}

	fmt.Fprint(out, display.Text(display.Render(form.State{Phase: form.Loading}, picker)))
	st := f.Submit(ctx)
	fmt.Fprint(out, display.Text(display.Render(st, picker)))

	if st.Phase == form.Failed {
		return errors.New("prediction failed")
	}
	return nil
}

func newProxyServer(cfg *config.Config, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	metrics := telemetry.NewProvider(nil)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	if cfg.MetricsEnabled {
		e.Use(metrics.Middleware())
	}
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})

	inference := prediction.NewHTTPInferenceClient(cfg.InferenceURL, cfg.InferenceTimeout)
	e.GET("/health/ready", func(c echo.Context) error {
		host := ""
		if u, err := url.Parse(inference.Endpoint()); err == nil {
			host = u.Host
		}
		return c.JSON(http.StatusOK, map[string]string{
			"status":         "ok",
			"inference_host": host,
		})
	})

	if cfg.MetricsEnabled {
		e.GET("/metrics", metrics.Handler())
	}

	api := e.Group("/api")
	openapi.NewGenerator(version, "http://localhost:"+cfg.Port, recordSchema()).RegisterRoutes(api)
	h := prediction.NewHandler(prediction.NewService(inference), logger)
	if cfg.MetricsEnabled {
		h.WithRecorder(metrics)
	}
	h.RegisterRoutes(api)

	return e
}

func newStubServer(logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": version})
	})
	riskmodel.NewHandler(logger).RegisterRoutes(e)
	return e
}

// run serves e on addr until SIGINT or SIGTERM, then drains for up to 10s.
func run(e *echo.Echo, addr string, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
