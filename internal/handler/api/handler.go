// Package api serves the analyzer over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Alias1177/CandlePredictor/internal/analysis/prediction"
	"github.com/Alias1177/CandlePredictor/internal/analyze"
	"github.com/Alias1177/CandlePredictor/internal/calculate"
	"github.com/Alias1177/CandlePredictor/internal/features"
	"github.com/Alias1177/CandlePredictor/models"
)

// Service is the part of the analyzer the handlers need
type Service interface {
	Snapshot() *analyze.Snapshot
	Refresh(ctx context.Context) (*analyze.Snapshot, error)
	Train(ctx context.Context) (*models.TrainingResult, error)
}

var errNotReady = errors.New("no refresh has finished yet")

// Handler exposes snapshots, predictions and training
type Handler struct {
	svc Service
}

// NewHandler creates a Handler over svc
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the API on e
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/series", h.Series)
	g.GET("/prediction", h.Prediction)
	g.GET("/training", h.Training)
	g.POST("/train", h.Train)
	g.POST("/refresh", h.Refresh)
}

// NewServer builds the echo instance with middleware, the API and, when
// metricsPath is set, the Prometheus endpoint
func NewServer(h *Handler, metricsPath string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(Recover())
	e.Use(RequestLogging())

	h.RegisterRoutes(e)
	if metricsPath != "" {
		e.GET(metricsPath, echo.WrapHandler(promhttp.Handler()))
	}
	return e
}

// HealthResponse reports liveness and the state of the last pass
type HealthResponse struct {
	Status    string         `json:"status"`
	Pipeline  analyze.Status `json:"pipeline,omitempty"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
}

// Health reports liveness and the last pass status
func (h *Handler) Health(c echo.Context) error {
	resp := HealthResponse{Status: "ok"}
	if snap := h.svc.Snapshot(); snap != nil {
		resp.Pipeline = snap.Status
		updated := snap.Updated
		resp.UpdatedAt = &updated
	}
	return SuccessResponse(c, resp)
}

// SeriesResponse holds the annotated series column by column
type SeriesResponse struct {
	Symbol   string            `json:"symbol"`
	Interval string            `json:"interval"`
	Status   analyze.Status    `json:"status"`
	Times    []time.Time       `json:"times"`
	Columns  map[string]Series `json:"columns"`
	Signal   string            `json:"signal,omitempty"`
}

// Series returns candles, indicators and feature columns, optionally only the
// last ?tail=N bars
func (h *Handler) Series(c echo.Context) error {
	snap := h.svc.Snapshot()
	if snap == nil {
		return ErrorResponse(c, http.StatusServiceUnavailable, errNotReady)
	}

	resp := SeriesResponse{
		Symbol:   snap.Symbol,
		Interval: snap.Interval,
		Status:   snap.Status,
		Signal:   snap.Signal,
		Columns:  map[string]Series{},
	}
	if snap.Frame == nil {
		return SuccessResponse(c, resp)
	}

	n := snap.Frame.Len()
	from := 0
	if raw := c.QueryParam("tail"); raw != "" {
		tail, err := strconv.Atoi(raw)
		if err != nil || tail < 1 {
			return ErrorResponse(c, http.StatusBadRequest, errors.New("tail must be a positive integer"))
		}
		if tail < n {
			from = n - tail
		}
	}

	resp.Times = make([]time.Time, 0, n-from)
	for _, candle := range snap.Frame.Candles[from:] {
		resp.Times = append(resp.Times, candle.Time)
	}
	for _, col := range columns(snap.Frame) {
		resp.Columns[col.Name] = Series(col.Values[from:])
	}

	return SuccessResponse(c, resp)
}

func columns(frame *calculate.Frame) []calculate.Column {
	cols := frame.Columns()
	seen := make(map[string]bool, len(cols))
	for _, col := range cols {
		seen[col.Name] = true
	}
	for _, col := range features.NewSchema(frame.Params).Columns(frame) {
		if !seen[col.Name] {
			cols = append(cols, col)
		}
	}
	return cols
}

// PredictionResponse is the latest prediction or the reason there is none
type PredictionResponse struct {
	Status     analyze.Status           `json:"status"`
	Prediction *models.PredictionResult `json:"prediction"`
	Reason     string                   `json:"reason,omitempty"`
	Signal     string                   `json:"signal,omitempty"`
	Market     *analyze.MarketContext   `json:"market,omitempty"`
}

// Prediction returns the last pass's prediction
func (h *Handler) Prediction(c echo.Context) error {
	snap := h.svc.Snapshot()
	if snap == nil {
		return ErrorResponse(c, http.StatusServiceUnavailable, errNotReady)
	}
	return SuccessResponse(c, PredictionResponse{
		Status:     snap.Status,
		Prediction: snap.Prediction,
		Reason:     snap.PredictError,
		Signal:     snap.Signal,
		Market:     snap.Market,
	})
}

// TrainingResponse is the current model's training result or the reason there is none
type TrainingResponse struct {
	Training *models.TrainingResult `json:"training"`
	Reason   string                 `json:"reason,omitempty"`
}

// Training returns the training result shown with the last pass
func (h *Handler) Training(c echo.Context) error {
	snap := h.svc.Snapshot()
	if snap == nil {
		return ErrorResponse(c, http.StatusServiceUnavailable, errNotReady)
	}
	return SuccessResponse(c, TrainingResponse{Training: snap.Training, Reason: snap.TrainingError})
}

// Train fits a new model now
func (h *Handler) Train(c echo.Context) error {
	result, err := h.svc.Train(c.Request().Context())
	if err != nil {
		return ErrorResponse(c, statusFor(err), err)
	}
	return SuccessResponse(c, result)
}

// Refresh runs a pass now
func (h *Handler) Refresh(c echo.Context) error {
	snap, err := h.svc.Refresh(c.Request().Context())
	if err != nil {
		return ErrorResponse(c, statusFor(err), err)
	}
	return SuccessResponse(c, PredictionResponse{
		Status:     snap.Status,
		Prediction: snap.Prediction,
		Reason:     snap.PredictError,
		Signal:     snap.Signal,
		Market:     snap.Market,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, analyze.ErrTrainingInProgress):
		return http.StatusConflict
	case errors.Is(err, models.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, features.ErrInsufficientData), errors.Is(err, prediction.ErrSingleClass):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
