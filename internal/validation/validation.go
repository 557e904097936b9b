// Package validation contains the logic for validating
// request data.
//
// It uses the `validator` library to enforce rules (like
// required fields) defined in struct tags, checks required keys on
// free-form records, and turns failures into a format the client can
// understand.
package validation
