package handler

import (
	"time"

	"github.com/deppfellow/dealer-dashboard/internal/middleware"
	"github.com/deppfellow/dealer-dashboard/internal/server"
	"github.com/deppfellow/dealer-dashboard/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Handler holds the shared application dependencies and is embedded by
// every concrete handler (ResourceHandler, SettingsHandler, DashboardHandler,
// HealthHandler, StaticHandler).
//
// It only carries *server.Server, so copying it by value is cheap and every
// copy sees the same config, logger and pool.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint: it receives a bound, validated request
// and returns the response body or an error.
//
// Req is a pointer type so echo can bind into it.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// handleRequest is the pipeline shared by all typed endpoints.
//
// For every request it:
//  1. tags the New Relic transaction with the route (when there is one)
//  2. binds path, query and body into req and runs req.Validate()
//  3. calls the handler
//  4. records validation and handler timings on the transaction
//  5. writes result as JSON with status
//
// Errors are returned untouched. Turning them into a response, and logging
// them, is GlobalErrorHandler's job.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	req Req,
	handler func(c echo.Context, req Req) (any, error),
	status int,
) error {
	start := time.Now()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", c.Path())
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", "handler").
		Str("route", c.Path()).
		Logger()

	logger.Debug().Msg("handling request")

	validationStart := time.Now()
	if err := validation.BindAndValidate(c, req); err != nil {
		validationDuration := time.Since(validationStart)

		logger.Debug().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")

		if txn != nil {
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}

		return err
	}

	validationDuration := time.Since(validationStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	handlerStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		// GlobalErrorHandler logs the error once, at warn below 500 and at
		// error with a stack above. Only the timings are added here.
		logger.Debug().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", time.Since(start)).
			Msg("handler returned an error")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		}
		return err
	}

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", time.Since(start).Milliseconds())
	}

	logger.Debug().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", time.Since(start)).
		Msg("request completed successfully")

	return c.JSON(status, result)
}

// Handle adapts a typed endpoint into an echo.HandlerFunc.
//
// newReq is called once per request, so concurrent requests never share a
// payload.
//
//	r.POST("/api/content/tasks", handler.Handle(h.Handler, h.Create, http.StatusCreated, newRecordRequest))
func Handle[Req validation.Validatable, Res any](
	h Handler,
	handler HandlerFunc[Req, Res],
	status int,
	newReq func() Req,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, newReq(), func(c echo.Context, req Req) (any, error) {
			return handler(c, req)
		}, status)
	}
}
