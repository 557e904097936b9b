package handler

import (
	"github.com/deppfellow/dealer-dashboard/internal/errs"
	"github.com/deppfellow/dealer-dashboard/internal/server"
	"github.com/labstack/echo/v4"
)

// StaticHandler serves the dashboard's HTML entry points.
// Asset directories are served by the static middleware.
type StaticHandler struct {
	Handler
}

func NewStaticHandler(s *server.Server) *StaticHandler {
	return &StaticHandler{
		Handler: NewHandler(s),
	}
}

// APITestPage serves the configured API test page.
func (h *StaticHandler) APITestPage(c echo.Context) error {
	page := h.server.Config.Static.APITestPage
	if page == "" {
		return errs.NewNotFoundError("Page not found", nil)
	}

	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.File(page)
}

// Index serves the single-page application's entry document for client-side
// routes.
func (h *StaticHandler) Index(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.File(h.server.Config.Static.Index)
}

// APINotFound answers unmatched /api routes with JSON instead of the SPA.
func (h *StaticHandler) APINotFound(c echo.Context) error {
	return errs.NewNotFoundError("Route not found", nil)
}

