package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"resumevault/internal/auth"
	"resumevault/internal/domain"
)

// Машиночитаемые коды ошибок админского API
const (
	codeValidationFailed   = "validation_failed"
	codeUnauthorized       = "unauthorized"
	codeForbidden          = "forbidden"
	codeNotFound           = "not_found"
	codeCannotDeleteActive = "cannot_delete_active"
	codeStorageError       = "storage_error"
	codeInternal           = "internal"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("warning: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeDomainError отображает ошибку таксономии на HTTP-статус и код.
// Детали внутренних сбоев наружу не отдаются.
func writeDomainError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	var storageErr *domain.StorageError

	switch {
	case errors.Is(err, auth.ErrNoToken), errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authorization required")
	case errors.Is(err, auth.ErrNotAdmin):
		writeError(w, http.StatusForbidden, codeForbidden, "admin capability required")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "resume version not found")
	case errors.Is(err, domain.ErrActiveResume):
		writeError(w, http.StatusBadRequest, codeCannotDeleteActive, "activate another version before deleting this one")
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, codeValidationFailed, validationErr.Error())
	case errors.As(err, &storageErr):
		log.Printf("storage error: %v", err)
		writeError(w, http.StatusInternalServerError, codeStorageError, "object storage is unavailable")
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}
