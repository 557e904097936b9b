// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns
// such as request ids, request-scoped logging, New Relic tracing,
// CORS, static assets, panic recovery and the global error handler.
package middleware
