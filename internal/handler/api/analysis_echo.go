package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Hindsight/internal/domain/models"
	"Hindsight/internal/service/metrics"
	"Hindsight/internal/service/ratelimit"
	"Hindsight/internal/services/analog"
	"Hindsight/internal/usecase"
	pkgcache "Hindsight/pkg/cache"
	xhttp "Hindsight/pkg/http"
	xlogger "Hindsight/pkg/logger"
	"Hindsight/pkg/util"

	"github.com/labstack/echo/v4"
)

// AnalysisEchoHandler exposes the analog engine over HTTP.
type AnalysisEchoHandler struct {
	logger   *xlogger.Logger
	analysis *usecase.AnalysisUseCase
	scan     *usecase.ScanUseCase
	cache    pkgcache.Service
	rl       *ratelimit.Limiter
	health   func(ctx context.Context) error
	cacheTTL time.Duration
}

func NewAnalysisEchoHandler(logger *xlogger.Logger, analysis *usecase.AnalysisUseCase, scan *usecase.ScanUseCase) *AnalysisEchoHandler {
	metrics.Register()
	return &AnalysisEchoHandler{
		logger:   logger,
		analysis: analysis,
		scan:     scan,
		rl:       ratelimit.New(),
		cacheTTL: 30 * time.Second,
	}
}

// SetCache enables response caching.
func (h *AnalysisEchoHandler) SetCache(c pkgcache.Service) { h.cache = c }

// SetHealthCheck wires the storage health probe into /api/healthz.
func (h *AnalysisEchoHandler) SetHealthCheck(f func(ctx context.Context) error) { h.health = f }

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/advice", h.Advice)
	g.GET("/analogs", h.Analogs)
	g.GET("/bars", h.Bars)
	g.GET("/regime", h.Regime)
	g.POST("/scan", h.Scan)
	g.GET("/healthz", h.Healthz)
}

// Bars returns the raw daily series. The time params accept RFC3339 or unix
// seconds, so they are parsed by hand instead of through a bound DTO.
func (h *AnalysisEchoHandler) Bars(c echo.Context) error {
	start := time.Now()
	endpoint := "bars"
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	symbol := c.QueryParam("symbol")
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol required")
	}
	if !h.rl.Allow(c.RealIP()+":bars", 5, 2) {
		return xhttp.AppErrorResponse(c, errTooManyRequests)
	}

	from := xhttp.ParseTimeDefault(c.QueryParam("from"), time.Time{})
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), time.Time{})
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 500)
	from, to = util.AlignFromTo(from, to, "1d")

	bars, err := h.analysis.Bars(c.Request().Context(), symbol, from, to, limit)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		return h.usecaseError(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, bars)
}

func (h *AnalysisEchoHandler) Advice(c echo.Context) error {
	start := time.Now()
	endpoint := "advice"
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.AdviceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":advice", 5, 2) {
		return xhttp.AppErrorResponse(c, errTooManyRequests)
	}

	ctx := c.Request().Context()
	cacheKey := pkgcache.GenerateKeyWithParams("advice", req.Symbol, req.N)
	var cached models.AnalysisReport
	if h.cacheGet(ctx, cacheKey, &cached) {
		return xhttp.SuccessResponse(c, &cached)
	}

	report, err := h.analysis.Analyze(ctx, req.Symbol, req.N)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		return h.usecaseError(c, endpoint, err)
	}
	h.cacheSet(ctx, cacheKey, report)
	return xhttp.SuccessResponse(c, report)
}

func (h *AnalysisEchoHandler) Analogs(c echo.Context) error {
	start := time.Now()
	endpoint := "analogs"
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.AnalogsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":analogs", 5, 2) {
		return xhttp.AppErrorResponse(c, errTooManyRequests)
	}

	ctx := c.Request().Context()
	cacheKey := pkgcache.GenerateKeyWithParams("analogs", req.Symbol, req.N, fmt.Sprintf("%.4f", req.Tolerance), req.Enhanced)
	var cached usecase.AnalogsResult
	if h.cacheGet(ctx, cacheKey, &cached) {
		return xhttp.SuccessResponse(c, &cached)
	}

	res, err := h.analysis.Analogs(ctx, req.Symbol, req.N, req.Tolerance, req.Enhanced)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		return h.usecaseError(c, endpoint, err)
	}
	h.cacheSet(ctx, cacheKey, res)
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) Regime(c echo.Context) error {
	start := time.Now()
	endpoint := "regime"
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.RegimeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":regime", 5, 2) {
		return xhttp.AppErrorResponse(c, errTooManyRequests)
	}

	ctx := c.Request().Context()
	type regimeResponse struct {
		Symbol  string         `json:"symbol"`
		Regime  models.Regime  `json:"regime"`
		MAState models.MAState `json:"ma_state"`
	}
	cacheKey := pkgcache.GenerateKeyWithParams("regime", req.Symbol, req.N)
	var cached regimeResponse
	if h.cacheGet(ctx, cacheKey, &cached) {
		return xhttp.SuccessResponse(c, &cached)
	}

	regime, state, err := h.analysis.Regime(ctx, req.Symbol, req.N)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		return h.usecaseError(c, endpoint, err)
	}
	res := &regimeResponse{Symbol: req.Symbol, Regime: regime, MAState: state}
	h.cacheSet(ctx, cacheKey, res)
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) Scan(c echo.Context) error {
	start := time.Now()
	endpoint := "scan"
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	// a scan fans out over the whole universe: tighter budget than the
	// single-symbol endpoints
	if !h.rl.Allow(c.RealIP()+":scan", 2, 0.2) {
		return xhttp.AppErrorResponse(c, errTooManyRequests)
	}

	report, err := h.scan.Scan(c.Request().Context(), req.Symbols)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		return h.usecaseError(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *AnalysisEchoHandler) Healthz(c echo.Context) error {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.health(ctx); err != nil {
			if h.logger != nil {
				h.logger.Warn("healthz storage check failed", xlogger.Error(err))
			}
			return xhttp.AppErrorResponse(c, xhttp.InternalError("storage unavailable"))
		}
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

var errTooManyRequests = xhttp.NewAppError("too_many_requests", "", "rate limited", 429)

func (h *AnalysisEchoHandler) usecaseError(c echo.Context, endpoint string, err error) error {
	if h.logger != nil {
		h.logger.Error(endpoint+" usecase error", xlogger.Error(err))
	}
	if errors.Is(err, analog.ErrMalformedSeries) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	return xhttp.AppErrorResponse(c, err)
}

func (h *AnalysisEchoHandler) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if h.cache == nil {
		return false
	}
	err := h.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, pkgcache.ErrCacheMiss) && h.logger != nil {
		h.logger.Warn("cache get error", xlogger.String("key", key), xlogger.Error(err))
	}
	return false
}

func (h *AnalysisEchoHandler) cacheSet(ctx context.Context, key string, value interface{}) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Set(ctx, key, value, h.cacheTTL); err != nil && h.logger != nil {
		h.logger.Warn("cache set error", xlogger.String("key", key), xlogger.Error(err))
	}
}
