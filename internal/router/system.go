package router

import (
	"github.com/deppfellow/dealer-dashboard/internal/handler"
	"github.com/deppfellow/dealer-dashboard/internal/middleware"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers the endpoints outside the business API:
// health, uptime, the API test page and the fallbacks.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET(middleware.APIPrefix+"/health", h.Health.CheckHealth)
	r.GET(middleware.APIPrefix+"/uptime", h.Health.Uptime)

	r.GET("/api-test", h.Static.APITestPage)

	// Unknown API routes stay JSON; everything else is a client-side route.
	r.Any(middleware.APIPrefix, h.Static.APINotFound)
	r.Any(middleware.APIPrefix+"/*", h.Static.APINotFound)
	r.GET("/*", h.Static.Index)
}
