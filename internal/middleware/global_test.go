package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/dealer-dashboard/internal/errs"
	"github.com/deppfellow/dealer-dashboard/internal/sqlerr"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestResolveHTTPError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "application error passes through",
			err:     errs.NewBadRequestError("Missing required field(s): title", nil, nil),
			status:  http.StatusBadRequest,
			message: "Missing required field(s): title",
		},
		{
			name:    "unknown route",
			err:     echo.ErrNotFound,
			status:  http.StatusNotFound,
			message: "Route not found",
		},
		{
			name:    "wrong method",
			err:     echo.ErrMethodNotAllowed,
			status:  http.StatusMethodNotAllowed,
			message: "Method Not Allowed",
		},
		{
			name:    "not found sentinel",
			err:     sqlerr.ErrNotFound,
			status:  http.StatusNotFound,
			message: "Resource not found",
		},
		{
			name:    "unclassified error",
			err:     errors.New("pq: connection reset by peer"),
			status:  http.StatusInternalServerError,
			message: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := resolveHTTPError(tt.err)

			assert.Equal(t, tt.status, httpErr.Status)
			assert.Equal(t, tt.message, httpErr.Message)
		})
	}
}

func TestIsAPIRequest(t *testing.T) {
	e := echo.New()

	for path, want := range map[string]bool{
		"/api":           true,
		"/api/users":     true,
		"/api-test":      false,
		"/apiary":        false,
		"/":              false,
		"/assets/app.js": false,
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		c := e.NewContext(req, httptest.NewRecorder())

		assert.Equal(t, want, IsAPIRequest(c), path)
	}
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	handler := RequestID()(func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	assert.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, "abc-123", rec.Body.String())
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	assert.NoError(t, handler(e.NewContext(req, rec)))
	assert.Len(t, rec.Body.String(), 36)
}

func TestGetLoggerWithoutEnhancer(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.NotNil(t, GetLogger(c))
	assert.Empty(t, GetRequestID(c))
}
