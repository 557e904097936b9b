// Package router builds the echo instance: middleware stack, API routes,
// static assets and the single-page-application fallback.
package router

import (
	"github.com/deppfellow/dealer-dashboard/internal/handler"
	"github.com/deppfellow/dealer-dashboard/internal/middleware"
	"github.com/deppfellow/dealer-dashboard/internal/server"
	"github.com/labstack/echo/v4"
)

func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Global.Recover(),
		middlewares.Tracing.NewRelicMiddleware(),
		middleware.RequestID(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.Global.RequestLogger(),
	)

	for _, dir := range s.Config.Static.Dirs {
		router.Use(middlewares.Global.Static(dir))
	}

	api := router.Group(middleware.APIPrefix)
	registerResourceRoutes(api, h)
	registerDashboardRoutes(api, h)

	registerSystemRoutes(router, h)

	return router
}
