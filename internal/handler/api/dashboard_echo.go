package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	models "github.com/anishesg/a-rusty-kalshi-bot/internal/domain/models"
	icache "github.com/anishesg/a-rusty-kalshi-bot/internal/service/cache"
	"github.com/anishesg/a-rusty-kalshi-bot/internal/service/ratelimit"
	"github.com/anishesg/a-rusty-kalshi-bot/internal/state"
	xhttp "github.com/anishesg/a-rusty-kalshi-bot/pkg/http"
	xlogger "github.com/anishesg/a-rusty-kalshi-bot/pkg/logger"
)

const chartCacheTTL = 2 * time.Second

// DashboardHandler exposes the reconciled dashboard projections over HTTP.
type DashboardHandler struct {
	logger *xlogger.Logger
	store  *state.Store
	cache  icache.BytesCache
	rl     *ratelimit.Limiter
}

func NewDashboardHandler(logger *xlogger.Logger, store *state.Store, cache icache.BytesCache) *DashboardHandler {
	if cache == nil {
		cache = icache.Noop{}
	}
	return &DashboardHandler{
		logger: logger,
		store:  store,
		cache:  cache,
		rl:     ratelimit.New(),
	}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/state", h.State)
	g.GET("/trades", h.Trades)
	g.GET("/pnl", h.Pnl)
	g.GET("/chart", h.Chart)
	g.GET("/metrics", h.Metrics)
	g.GET("/counters", h.Counters)
	g.GET("/health", h.Health)
}

// State returns the full dashboard snapshot projection.
func (h *DashboardHandler) State(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.store.State())
}

// Trades returns ledger records, newest first, optionally filtered by model.
func (h *DashboardHandler) Trades(c echo.Context) error {
	req := &models.TradesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rows := h.store.Trades(req.Model, req.Limit)
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// Pnl returns one model's cumulative P&L series, chronological.
func (h *DashboardHandler) Pnl(c echo.Context) error {
	req := &models.PnlRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rows := h.store.Pnl(req.Model, req.Limit)
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// Chart renders the bucketed multi-model chart. Rendering walks the whole
// series, so results are cached briefly and the endpoint is rate limited.
func (h *DashboardHandler) Chart(c echo.Context) error {
	if !h.rl.Allow(c.RealIP()+":chart", 10, 5) {
		h.logger.Warn("dashboard.chart rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.TooManyRequestsResponse(c)
	}

	ctx := c.Request().Context()
	const cacheKey = "dashboard:chart"
	if b, ok, err := h.cache.GetBytes(ctx, cacheKey); err != nil {
		h.logger.Warn("dashboard.chart cache_get_error", xlogger.Error(err))
	} else if ok {
		return c.JSONBlob(http.StatusOK, b)
	}

	rows := h.store.Chart()
	b, err := json.Marshal(xhttp.APIResponse{
		Status:  http.StatusOK,
		Message: http.StatusText(http.StatusOK),
		Data:    &xhttp.ListDataResponse{Rows: rows, Total: int64(len(rows))},
	})
	if err != nil {
		h.logger.Error("dashboard.chart marshal_error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if err := h.cache.SetBytes(ctx, cacheKey, b, chartCacheTTL); err != nil {
		h.logger.Warn("dashboard.chart cache_set_error", xlogger.Error(err))
	}
	return c.JSONBlob(http.StatusOK, b)
}

type modelMetricsView struct {
	models.ModelMetrics
	WinRate float64 `json:"win_rate"`
}

// Metrics returns the per-model performance table with derived win rates.
func (h *DashboardHandler) Metrics(c echo.Context) error {
	st := h.store.State()
	out := make(map[string]*modelMetricsView, len(st.Models))
	for name, m := range st.Models {
		out[name] = &modelMetricsView{ModelMetrics: *m, WinRate: m.WinRate()}
	}
	return xhttp.SuccessResponse(c, out)
}

// Counters returns ingest bookkeeping totals.
func (h *DashboardHandler) Counters(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.store.Counters().Snapshot())
}

// Health reports stream liveness.
func (h *DashboardHandler) Health(c echo.Context) error {
	body := map[string]interface{}{
		"status":    "ok",
		"connected": h.store.Connected(),
		"lifecycle": h.store.Lifecycle(),
	}
	if !h.store.Connected() {
		body["status"] = "degraded"
	}
	return xhttp.SuccessResponse(c, body)
}
