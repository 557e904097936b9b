// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, applies per-resource rules
// (required fields, defaults, hidden columns) and calls the record store.
package service

import (
	"github.com/deppfellow/dealer-dashboard/internal/repository"
	"github.com/deppfellow/dealer-dashboard/internal/server"
)

type Services struct {
	Resources map[string]*ResourceService
	Settings  *SettingsService
	Dashboard *DashboardService
	Data      *DataService
	System    *SystemService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return New(repos.Records, s.Config.Primary.Env), nil
}

// New builds every service over store.
func New(store RecordStore, environment string) *Services {
	resources := make(map[string]*ResourceService, len(Resources()))
	for _, resource := range Resources() {
		resources[resource.Name] = NewResourceService(resource, store)
	}

	return &Services{
		Resources: resources,
		Settings:  NewSettingsService(store),
		Dashboard: NewDashboardService(store),
		Data:      NewDataService(store),
		System:    NewSystemService(store, environment),
	}
}

// Resource returns the service for a registered resource name, or nil.
func (s *Services) Resource(name string) *ResourceService {
	return s.Resources[name]
}
