// Package handler is the HTTP layer between the router and the services.
//
// It binds and validates requests through the validation package, calls
// the matching service and writes the JSON response. Errors are returned
// to the global error handler, which owns the response shape.
package handler
