package middleware

import (
	"errors"

	"github.com/deppfellow/dealer-dashboard/internal/server"
	"github.com/deppfellow/dealer-dashboard/internal/sqlerr"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// TracingMiddleware owns the New Relic side of request handling.
//
// It is made of two layers that must be installed in this order:
//  1. NewRelicMiddleware() starts a transaction and puts it in the request context
//  2. EnhanceTracing()     decorates that transaction once the handler has run
//
// nrApp is nil when no license key is configured. Both layers then do nothing,
// so the router installs them unconditionally.
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

// NewTracingMiddleware constructs TracingMiddleware.
func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{
		server: s,
		nrApp:  nrApp,
	}
}

// NewRelicMiddleware returns nrecho's transaction middleware.
//
// nrecho names each transaction after the matched route ("GET /api/content/tasks/:id")
// rather than the raw URL, so every task id lands in the same bucket.
// This is also what makes newrelic.FromContext work for EnhanceContext,
// the handlers and the nrpgx5 query segments further down.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing adds dashboard attributes to the current transaction.
//
// Attributes added before the handler runs:
//   - http.real_ip, http.user_agent
//   - request.id, to join traces with log lines
//   - service.environment
//   - http.route, the matched route pattern
//   - dashboard.table, the ?table= of the /api/data endpoints
//
// Attributes added after:
//   - http.status_code, resolved the same way GlobalErrorHandler will write it
//   - db.error_kind and db.table when the error came out of the repository
//
// Returned errors are noticed through nrpkgerrors so the stack is kept.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			for key, value := range requestAttributes(c, tm.server.Config.Primary.Env) {
				txn.AddAttribute(key, value)
			}

			err := next(c)
			if err != nil {
				txn.NoticeError(nrpkgerrors.Wrap(err))
			}

			for key, value := range responseAttributes(c, err) {
				txn.AddAttribute(key, value)
			}

			return err
		}
	}
}

func requestAttributes(c echo.Context, env string) map[string]any {
	attrs := map[string]any{
		"http.real_ip":        c.RealIP(),
		"http.user_agent":     c.Request().UserAgent(),
		"service.environment": env,
	}

	if requestID := GetRequestID(c); requestID != "" {
		attrs["request.id"] = requestID
	}
	if route := c.Path(); route != "" {
		attrs["http.route"] = route
	}
	if table := c.QueryParam("table"); table != "" {
		attrs["dashboard.table"] = table
	}

	return attrs
}

// responseAttributes runs before GlobalErrorHandler has written anything,
// so on error the status comes from the error itself.
func responseAttributes(c echo.Context, err error) map[string]any {
	if err == nil {
		return map[string]any{"http.status_code": c.Response().Status}
	}

	attrs := map[string]any{"http.status_code": resolveHTTPError(err).Status}

	var sqlErr *sqlerr.Error
	if errors.As(err, &sqlErr) {
		attrs["db.error_kind"] = sqlErr.Kind.String()
		if sqlErr.Table != "" {
			attrs["db.table"] = sqlErr.Table
		}
	}

	return attrs
}
