package handler

import (
	"github.com/deppfellow/dealer-dashboard/internal/server"
	"github.com/deppfellow/dealer-dashboard/internal/service"
)

// Handlers groups every HTTP handler so the router receives a single value.
type Handlers struct {
	// Resources holds one CRUD handler per registered resource, keyed by name.
	Resources map[string]*ResourceHandler
	Settings  *SettingsHandler
	Dashboard *DashboardHandler
	Health    *HealthHandler
	Static    *StaticHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	resources := make(map[string]*ResourceHandler, len(services.Resources))
	for name, resourceService := range services.Resources {
		resources[name] = NewResourceHandler(s, resourceService)
	}

	return &Handlers{
		Resources: resources,
		Settings:  NewSettingsHandler(s, services.Settings),
		Dashboard: NewDashboardHandler(s, services.Dashboard, services.Data),
		Health:    NewHealthHandler(s, services.System),
		Static:    NewStaticHandler(s),
	}
}
