package handler

import (
	"net/http"

	"github.com/deppfellow/dealer-dashboard/internal/repository"
	"github.com/deppfellow/dealer-dashboard/internal/server"
	"github.com/deppfellow/dealer-dashboard/internal/service"
	"github.com/labstack/echo/v4"
)

// MessageResponse is returned by endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// ResourceHandler serves the CRUD routes of one resource.
type ResourceHandler struct {
	Handler
	service *service.ResourceService
}

func NewResourceHandler(s *server.Server, resourceService *service.ResourceService) *ResourceHandler {
	return &ResourceHandler{
		Handler: NewHandler(s),
		service: resourceService,
	}
}

func (h *ResourceHandler) Resource() service.Resource {
	return h.service.Resource()
}

func (h *ResourceHandler) list(c echo.Context, _ *EmptyRequest) ([]repository.Record, error) {
	return h.service.List(c.Request().Context())
}

func (h *ResourceHandler) get(c echo.Context, req *IDRequest) (repository.Record, error) {
	return h.service.Get(c.Request().Context(), req.ID)
}

func (h *ResourceHandler) create(c echo.Context, req *RecordRequest) (repository.Record, error) {
	return h.service.Create(c.Request().Context(), req.Fields)
}

func (h *ResourceHandler) update(c echo.Context, req *UpdateRecordRequest) (repository.Record, error) {
	return h.service.Update(c.Request().Context(), req.ID, req.Fields)
}

func (h *ResourceHandler) delete(c echo.Context, req *IDRequest) (*MessageResponse, error) {
	if err := h.service.Delete(c.Request().Context(), req.ID); err != nil {
		return nil, err
	}
	return &MessageResponse{Message: h.service.DeletedMessage()}, nil
}

// List handles GET /<resource>.
func (h *ResourceHandler) List() echo.HandlerFunc {
	return Handle(h.Handler, h.list, http.StatusOK, newEmptyRequest)
}

// Get handles GET /<resource>/:id.
func (h *ResourceHandler) Get() echo.HandlerFunc {
	return Handle(h.Handler, h.get, http.StatusOK, newIDRequest)
}

// Create handles POST /<resource>.
func (h *ResourceHandler) Create() echo.HandlerFunc {
	return Handle(h.Handler, h.create, http.StatusCreated, newRecordRequest)
}

// Update handles PUT /<resource>/:id.
func (h *ResourceHandler) Update() echo.HandlerFunc {
	return Handle(h.Handler, h.update, http.StatusOK, newUpdateRecordRequest)
}

// Delete handles DELETE /<resource>/:id.
func (h *ResourceHandler) Delete() echo.HandlerFunc {
	return Handle(h.Handler, h.delete, http.StatusOK, newIDRequest)
}
