package middleware

import (
	"github.com/deppfellow/dealer-dashboard/internal/logger"
	"github.com/deppfellow/dealer-dashboard/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// LoggerKey is where the request-scoped logger is stored in the echo context.
const LoggerKey = "logger"

// ContextEnhancer builds a logger per request carrying request_id, method,
// route, ip and (with New Relic) trace and span ids.
type ContextEnhancer struct {
	server *server.Server
}

func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

// EnhanceContext returns the middleware that builds the request logger.
//
// For every request it:
//  1. reads the request id set by RequestID
//  2. derives a logger carrying request_id, method, route and client ip
//  3. adds trace.id and span.id when a New Relic transaction exists
//  4. stores the logger in the echo context (GetLogger) and in the request's
//     context.Context (logger.FromContext), so services that only receive a
//     context log with the same fields
func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			contextLogger := ce.server.Logger.With().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("ip", c.RealIP()).
				Logger()

			if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
				contextLogger = logger.WithTraceContext(contextLogger, txn)
			}

			c.Set(LoggerKey, &contextLogger)

			ctx := logger.WithContext(c.Request().Context(), &contextLogger)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetLogger returns the request-scoped logger, or a no-op logger when
// EnhanceContext did not run.
func GetLogger(c echo.Context) *zerolog.Logger {
	if logger, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return logger
	}

	logger := zerolog.Nop()
	return &logger
}
