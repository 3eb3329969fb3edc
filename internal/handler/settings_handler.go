package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"resumevault/internal/service"
)

type SettingsHandler struct {
	settingsService *service.SettingsService
}

func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetVisibility отдает флаг видимости резюме. Эндпоинт публичный и никогда
// жестко не падает: при неразвернутом хранилище настроек возвращается
// значение по умолчанию с предупреждением.
func (h *SettingsHandler) GetVisibility(w http.ResponseWriter, r *http.Request) {
	status, err := h.settingsService.GetVisibility(r.Context())
	if err != nil {
		log.Printf("[Settings] failed to get visibility: %v", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "settings are not available")
		return
	}

	writeJSON(w, http.StatusOK, status)
}

type setVisibilityRequest struct {
	Visible *bool `json:"visible"`
}

// SetVisibility сохраняет флаг видимости и возвращает записанное значение
func (h *SettingsHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	if _, ok := adminActor(w, r); !ok {
		return
	}

	var req setVisibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Visible == nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "visible field is required")
		return
	}

	persisted, err := h.settingsService.SetVisibility(r.Context(), *req.Visible)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"visible": persisted})
}
