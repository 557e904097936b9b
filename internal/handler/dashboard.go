package handler

import (
	"net/http"

	"github.com/deppfellow/dealer-dashboard/internal/server"
	"github.com/deppfellow/dealer-dashboard/internal/service"
	"github.com/labstack/echo/v4"
)

// DashboardHandler serves the dashboard summary and the data visualisation
// endpoints.
type DashboardHandler struct {
	Handler
	dashboard *service.DashboardService
	data      *service.DataService
}

func NewDashboardHandler(s *server.Server, dashboard *service.DashboardService, data *service.DataService) *DashboardHandler {
	return &DashboardHandler{
		Handler:   NewHandler(s),
		dashboard: dashboard,
		data:      data,
	}
}

func (h *DashboardHandler) stats(c echo.Context, _ *EmptyRequest) (*service.DashboardStats, error) {
	return h.dashboard.Stats(c.Request().Context())
}

func (h *DashboardHandler) charts(_ echo.Context, _ *EmptyRequest) (service.DashboardCharts, error) {
	return h.dashboard.Charts(), nil
}

func (h *DashboardHandler) table(c echo.Context, req *TableRequest) (*service.TablePage, error) {
	return h.data.Table(c.Request().Context(), req.Table, req.PageRequest())
}

func (h *DashboardHandler) chart(_ echo.Context, req *KindRequest) (*service.Chart, error) {
	return h.data.Chart(req.Type)
}

func (h *DashboardHandler) mapData(_ echo.Context, req *KindRequest) (*service.MapData, error) {
	return h.data.Map(req.Type)
}

// Stats handles GET /api/dashboard/stats.
func (h *DashboardHandler) Stats() echo.HandlerFunc {
	return Handle(h.Handler, h.stats, http.StatusOK, newEmptyRequest)
}

// Charts handles GET /api/dashboard/charts.
func (h *DashboardHandler) Charts() echo.HandlerFunc {
	return Handle(h.Handler, h.charts, http.StatusOK, newEmptyRequest)
}

// Table handles GET /api/data/tables.
func (h *DashboardHandler) Table() echo.HandlerFunc {
	return Handle(h.Handler, h.table, http.StatusOK, newTableRequest)
}

// Chart handles GET /api/data/charts.
func (h *DashboardHandler) Chart() echo.HandlerFunc {
	return Handle(h.Handler, h.chart, http.StatusOK, newKindRequest)
}

// Map handles GET /api/data/maps.
func (h *DashboardHandler) Map() echo.HandlerFunc {
	return Handle(h.Handler, h.mapData, http.StatusOK, newKindRequest)
}

