package api

import (
	"net/http"
	"time"

	models "FactPull/internal/domain/models"
	smetrics "FactPull/internal/service/metrics"
	"FactPull/internal/service/stream"
	"FactPull/internal/usecase"
	xhttp "FactPull/pkg/http"
	xlogger "FactPull/pkg/logger"
	"FactPull/pkg/queue"

	"github.com/labstack/echo/v4"
)

// FactsEchoHandler exposes the series API over Echo. Series routes are built
// from the metric table, so a config-supplied metric gets its endpoints
// without code changes.
type FactsEchoHandler struct {
	logger *xlogger.Logger
	svc    *usecase.SeriesService
	table  *models.MetricTable
	hub    *stream.Hub        // optional
	jobs   queue.QueueService // optional, nil when refresh pipeline disabled
}

func NewFactsEchoHandler(logger *xlogger.Logger, svc *usecase.SeriesService, table *models.MetricTable) *FactsEchoHandler {
	return &FactsEchoHandler{logger: logger, svc: svc, table: table}
}

// SetHub enables the websocket stream route.
func (h *FactsEchoHandler) SetHub(hub *stream.Hub) { h.hub = hub }

// SetRefreshQueue enables the refresh endpoint.
func (h *FactsEchoHandler) SetRefreshQueue(q queue.QueueService) { h.jobs = q }

func (h *FactsEchoHandler) RegisterRoutes(e *echo.Echo) {
	smetrics.Register()

	g := e.Group("/api")
	g.GET("/health", h.Health)
	g.GET("/logs", h.Logs)
	g.GET("/metrics", h.MetricTable)
	g.GET("/companies/:ticker", h.Profile)
	g.POST("/companies/:ticker/refresh", h.Refresh)

	for _, m := range h.table.All() {
		metric := m
		g.GET("/companies/:ticker/"+metric.Slug, h.series(metric))
		g.GET("/companies/:ticker/"+metric.Slug+"/ttm", h.ttm(metric))
	}

	if h.hub != nil {
		g.GET("/stream", h.hub.Serve)
	}
}

func (h *FactsEchoHandler) series(m models.Metric) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := &models.SeriesRequest{}
		if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
			return xhttp.BadRequestResponse(c, verr)
		}

		points, err := h.svc.Quarterly(c.Request().Context(), req.Ticker, m)
		if err != nil {
			smetrics.SeriesErrors.WithLabelValues(m.Slug).Inc()
			h.logger.Error("series usecase error",
				xlogger.String("metric", m.Name), xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		smetrics.SeriesLatency.WithLabelValues(m.Slug).Observe(time.Since(start).Seconds())

		c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=300")
		return xhttp.SuccessResponse(c, renderSeries(points, m.Field))
	}
}

func (h *FactsEchoHandler) ttm(m models.Metric) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := &models.SeriesRequest{}
		if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
			return xhttp.BadRequestResponse(c, verr)
		}

		points, err := h.svc.TTM(c.Request().Context(), req.Ticker, m)
		if err != nil {
			smetrics.SeriesErrors.WithLabelValues(m.Slug + "_ttm").Inc()
			h.logger.Error("ttm usecase error",
				xlogger.String("metric", m.Name), xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		smetrics.SeriesLatency.WithLabelValues(m.Slug + "_ttm").Observe(time.Since(start).Seconds())

		c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=300")
		return xhttp.SuccessResponse(c, renderSeries(points, m.Field))
	}
}

func (h *FactsEchoHandler) Profile(c echo.Context) error {
	req := &models.ProfileRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	profile, err := h.svc.Profile(c.Request().Context(), req.Ticker)
	if err != nil {
		h.logger.Error("profile usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, profile)
}

// MetricTable lists the metrics this deployment serves, so the client can
// discover available series.
func (h *FactsEchoHandler) MetricTable(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.table.All())
}

func (h *FactsEchoHandler) Refresh(c echo.Context) error {
	if h.jobs == nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("refresh pipeline is disabled"))
	}

	req := &models.RefreshRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	entry, err := h.svc.Resolve(c.Request().Context(), req.Ticker)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	if err := h.jobs.PublishMessage(c.Request().Context(), usecase.RefreshMessageType, usecase.RefreshPayload{
		Ticker: entry.Ticker,
		CIK:    entry.CIK,
	}); err != nil {
		h.logger.Error("refresh enqueue error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("refresh enqueue failed").WithError(err))
	}

	return xhttp.DataResponse(c, http.StatusAccepted, map[string]interface{}{
		"ticker": entry.Ticker,
		"cik":    entry.CIK,
		"queued": true,
	})
}

func (h *FactsEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// Logs serves the retained warn/error ring for quick diagnostics.
func (h *FactsEchoHandler) Logs(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.logger.Recent())
}

// renderSeries shapes points as [{"period": ..., "<field>": ...}] with the
// metric's serialization key. Field naming is client contract.
func renderSeries(points []models.PeriodPoint, field string) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(points))
	for _, p := range points {
		out = append(out, map[string]interface{}{
			"period": p.Period,
			field:    p.Value,
		})
	}
	return out
}
