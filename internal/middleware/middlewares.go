package middleware

import (
	"github.com/deppfellow/dealer-dashboard/internal/server"
)

// Middlewares groups every middleware component used by the router.
type Middlewares struct {
	// Global holds CORS, request logging, recovery, secure headers,
	// static files and the global error handler.
	Global *GlobalMiddlewares

	// ContextEnhancer attaches a request-scoped logger to each request.
	ContextEnhancer *ContextEnhancer

	// Tracing wires New Relic transactions and custom attributes.
	Tracing *TracingMiddleware
}

// NewMiddlewares constructs all middleware components from the server container.
// Without New Relic the tracing middleware degrades to a pass-through.
func NewMiddlewares(s *server.Server) *Middlewares {
	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, s.LoggerService.GetApplication()),
	}
}
