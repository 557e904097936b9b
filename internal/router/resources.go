package router

import (
	"github.com/deppfellow/dealer-dashboard/internal/handler"
	"github.com/labstack/echo/v4"
)

// resourceRoute mounts one resource under the /api group.
type resourceRoute struct {
	name string
	path string
	// collectionOnly resources expose list and create only.
	collectionOnly bool
}

var resourceRoutes = []resourceRoute{
	{name: "users", path: "/users"},
	{name: "products", path: "/products"},
	{name: "orders", path: "/orders"},
	{name: "invoices", path: "/invoices"},
	{name: "pricing", path: "/pricing"},
	{name: "tasks", path: "/content/tasks"},
	{name: "gallery", path: "/content/gallery"},
	{name: "faq", path: "/content/faq"},
	{name: "logs", path: "/logs", collectionOnly: true},
}

func registerResourceRoutes(api *echo.Group, h *handler.Handlers) {
	for _, route := range resourceRoutes {
		resource, ok := h.Resources[route.name]
		if !ok {
			continue
		}

		group := api.Group(route.path)
		group.GET("", resource.List())
		group.POST("", resource.Create())

		if route.collectionOnly {
			continue
		}

		group.GET("/:id", resource.Get())
		group.PUT("/:id", resource.Update())
		group.DELETE("/:id", resource.Delete())
	}
}

func registerDashboardRoutes(api *echo.Group, h *handler.Handlers) {
	api.GET("/settings", h.Settings.All())
	api.GET("/settings/:key", h.Settings.Get())
	api.PUT("/settings/:key", h.Settings.Put())
	api.DELETE("/settings/:key", h.Settings.Delete())

	dashboard := api.Group("/dashboard")
	dashboard.GET("/stats", h.Dashboard.Stats())
	dashboard.GET("/charts", h.Dashboard.Charts())

	data := api.Group("/data")
	data.GET("/tables", h.Dashboard.Table())
	data.GET("/charts", h.Dashboard.Chart())
	data.GET("/maps", h.Dashboard.Map())
}
