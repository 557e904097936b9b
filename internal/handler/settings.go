package handler

import (
	"net/http"

	"github.com/deppfellow/dealer-dashboard/internal/server"
	"github.com/deppfellow/dealer-dashboard/internal/service"
	"github.com/labstack/echo/v4"
)

type SettingsHandler struct {
	Handler
	service *service.SettingsService
}

func NewSettingsHandler(s *server.Server, settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		Handler: NewHandler(s),
		service: settingsService,
	}
}

func (h *SettingsHandler) all(c echo.Context, _ *EmptyRequest) (map[string]any, error) {
	return h.service.All(c.Request().Context())
}

func (h *SettingsHandler) put(c echo.Context, req *PutSettingRequest) (*service.Setting, error) {
	return h.service.Put(c.Request().Context(), req.Key, req.Value)
}

func (h *SettingsHandler) get(c echo.Context, req *SettingKeyRequest) (*service.Setting, error) {
	return h.service.Get(c.Request().Context(), req.Key)
}

func (h *SettingsHandler) delete(c echo.Context, req *SettingKeyRequest) (*MessageResponse, error) {
	if err := h.service.Delete(c.Request().Context(), req.Key); err != nil {
		return nil, err
	}
	return &MessageResponse{Message: "Setting deleted successfully"}, nil
}

// All handles GET /api/settings.
func (h *SettingsHandler) All() echo.HandlerFunc {
	return Handle(h.Handler, h.all, http.StatusOK, newEmptyRequest)
}

// Put handles PUT /api/settings/:key.
func (h *SettingsHandler) Put() echo.HandlerFunc {
	return Handle(h.Handler, h.put, http.StatusOK, newPutSettingRequest)
}

// Get handles GET /api/settings/:key.
func (h *SettingsHandler) Get() echo.HandlerFunc {
	return Handle(h.Handler, h.get, http.StatusOK, newSettingKeyRequest)
}

// Delete handles DELETE /api/settings/:key.
func (h *SettingsHandler) Delete() echo.HandlerFunc {
	return Handle(h.Handler, h.delete, http.StatusOK, newSettingKeyRequest)
}
