package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/dealer-dashboard/internal/sqlerr"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRequestAttributes(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/data/tables?table=orders", nil)
	req.Header.Set("User-Agent", "dashboard-test")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/data/tables")
	c.Set(RequestIDKey, "req-42")

	attrs := requestAttributes(c, "staging")

	assert.Equal(t, "dashboard-test", attrs["http.user_agent"])
	assert.Equal(t, "staging", attrs["service.environment"])
	assert.Equal(t, "req-42", attrs["request.id"])
	assert.Equal(t, "/api/data/tables", attrs["http.route"])
	assert.Equal(t, "orders", attrs["dashboard.table"])
}

func TestResponseAttributes(t *testing.T) {
	e := echo.New()

	t.Run("success uses the written status", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/products", nil), httptest.NewRecorder())
		c.Response().WriteHeader(http.StatusCreated)

		assert.Equal(t, map[string]any{"http.status_code": http.StatusCreated}, responseAttributes(c, nil))
	})

	t.Run("error status is resolved before it is written", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/products", nil), httptest.NewRecorder())
		err := sqlerr.Classify("insert", "products",
			errors.New("failed to encode args[2]: cannot convert 2.7 to integer"))

		attrs := responseAttributes(c, err)

		assert.Equal(t, http.StatusBadRequest, attrs["http.status_code"])
		assert.Equal(t, "validation", attrs["db.error_kind"])
		assert.Equal(t, "products", attrs["db.table"])
	})

	t.Run("consistency failures are server errors", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/api/orders/1", nil), httptest.NewRecorder())

		attrs := responseAttributes(c, sqlerr.NewConsistencyError("delete", "orders", "2 rows"))

		assert.Equal(t, http.StatusInternalServerError, attrs["http.status_code"])
		assert.Equal(t, "consistency", attrs["db.error_kind"])
	})
}
