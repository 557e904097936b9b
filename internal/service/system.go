package service

import (
	"context"
	"runtime"
	"time"
)

// HealthStatus is the body of GET /api/health.
type HealthStatus struct {
	Status            string    `json:"status"`
	DatabaseConnected bool      `json:"databaseConnected"`
	Timestamp         time.Time `json:"timestamp"`
	Environment       string    `json:"environment"`
}

// MemoryUsage is a subset of runtime.MemStats, in bytes.
type MemoryUsage struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"totalAlloc"`
	Sys        uint64 `json:"sys"`
	HeapAlloc  uint64 `json:"heapAlloc"`
	HeapInuse  uint64 `json:"heapInuse"`
	NumGC      uint32 `json:"numGC"`
}

// Uptime is the body of GET /api/uptime.
type Uptime struct {
	Uptime          float64     `json:"uptime"`
	ServerStartTime time.Time   `json:"serverStartTime"`
	Status          string      `json:"status"`
	MemoryUsage     MemoryUsage `json:"memoryUsage"`
	Goroutines      int         `json:"goroutines"`
	NumCPU          int         `json:"numCPU"`
}

// SystemService reports process liveness and database reachability.
type SystemService struct {
	store       RecordStore
	environment string
	startedAt   time.Time
}

func NewSystemService(store RecordStore, environment string) *SystemService {
	return &SystemService{
		store:       store,
		environment: environment,
		startedAt:   time.Now().UTC(),
	}
}

// Health always reports status "ok"; DatabaseConnected carries the ping result.
// The ping error, if any, is returned for logging only.
func (s *SystemService) Health(ctx context.Context) (*HealthStatus, error) {
	err := s.store.Ping(ctx)

	return &HealthStatus{
		Status:            "ok",
		DatabaseConnected: err == nil,
		Timestamp:         time.Now().UTC(),
		Environment:       s.environment,
	}, err
}

func (s *SystemService) Uptime() *Uptime {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	return &Uptime{
		Uptime:          time.Since(s.startedAt).Seconds(),
		ServerStartTime: s.startedAt,
		Status:          "online",
		MemoryUsage: MemoryUsage{
			Alloc:      stats.Alloc,
			TotalAlloc: stats.TotalAlloc,
			Sys:        stats.Sys,
			HeapAlloc:  stats.HeapAlloc,
			HeapInuse:  stats.HeapInuse,
			NumGC:      stats.NumGC,
		},
		Goroutines: runtime.NumGoroutine(),
		NumCPU:     runtime.NumCPU(),
	}
}
