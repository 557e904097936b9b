package repository

import (
	"github.com/deppfellow/dealer-dashboard/internal/server"
)

// Tables is the allow-list of physical tables created by the migrations.
var Tables = []string{
	"users",
	"products",
	"orders",
	"invoices",
	"pricing_plans",
	"tasks",
	"gallery",
	"faqs",
	"settings",
	"system_logs",
}

// Repositories is a container for all repository instances.
type Repositories struct {
	Records *RecordRepository
}

// NewRepositories wires repositories to the server's shared pool.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Records: NewRecordRepository(s.DB.Pool, s.Config.Database.QueryTimeout, Tables...),
	}
}
