package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"resumevault/internal/auth"
	"resumevault/internal/domain"
	"resumevault/internal/service"
)

// Лимит на разбор multipart-формы: сам файл ограничен 10MB на уровне сервиса
const maxUploadFormSize = 12 << 20

type ResumeHandler struct {
	resumeService *service.ResumeService
}

func NewResumeHandler(resumeService *service.ResumeService) *ResumeHandler {
	return &ResumeHandler{resumeService: resumeService}
}

// adminActor проверяет права администратора и возвращает id вызывающего
func adminActor(w http.ResponseWriter, r *http.Request) (string, bool) {
	actor, err := auth.VerifyAdmin(r)
	if err != nil {
		writeDomainError(w, err)
		return "", false
	}
	return actor, true
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "invalid resume version id")
		return 0, false
	}
	return id, true
}

// GetActive отдает публичную проекцию активной версии.
// Отсутствие активной версии — это {"resume": null}, не ошибка.
func (h *ResumeHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	projection, err := h.resumeService.GetActive(r.Context())
	if err != nil {
		log.Printf("[Resume] failed to get active version: %v", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "resume is not available")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"resume": projection})
}

// GetFile отдает байты активного резюме. Доступ закрыт настройкой видимости,
// параметр version должен совпадать с id активной версии.
func (h *ResumeHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	var versionPin *int64
	if raw := r.URL.Query().Get("version"); raw != "" {
		pin, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusNotFound, codeNotFound, "resume is not available")
			return
		}
		versionPin = &pin
	}

	obj, version, err := h.resumeService.GetFile(r.Context(), versionPin)
	if err != nil {
		// Публичный эндпоинт не раскрывает причину: скрыто, нет активной
		// версии и несовпадение version снаружи выглядят одинаково
		var status int
		var code string
		if errors.Is(err, domain.ErrNotFound) {
			status, code = http.StatusNotFound, codeNotFound
		} else {
			log.Printf("[Resume] failed to serve file: %v", err)
			status, code = http.StatusInternalServerError, codeInternal
		}
		writeError(w, status, code, "resume is not available")
		return
	}
	defer obj.Close()

	w.Header().Set("Content-Type", version.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", version.Filename))
	w.Header().Set("Cache-Control", "public, max-age=300")
	if obj.ContentLength() > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.ContentLength(), 10))
	}

	if _, err := io.Copy(w, obj); err != nil {
		log.Printf("[Resume] failed to stream file: %v", err)
	}
}

// ListVersions возвращает все версии, новые первыми
func (h *ResumeHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	if _, ok := adminActor(w, r); !ok {
		return
	}

	versions, err := h.resumeService.ListVersions(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"versions": versions})
}

// Upload обрабатывает загрузку новой версии резюме
func (h *ResumeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, ok := adminActor(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadFormSize); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "failed to parse multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "failed to read uploaded file")
		return
	}

	upload := &domain.ResumeUpload{
		Filename:   header.Filename,
		MIMEType:   header.Header.Get("Content-Type"),
		SizeBytes:  int64(len(data)),
		Notes:      r.FormValue("notes"),
		UploadedBy: actor,
		Data:       data,
	}

	version, err := h.resumeService.Upload(r.Context(), upload)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, version)
}

type renameRequest struct {
	Filename string `json:"filename"`
}

// Rename меняет отображаемое имя версии
func (h *ResumeHandler) Rename(w http.ResponseWriter, r *http.Request) {
	if _, ok := adminActor(w, r); !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "invalid request body")
		return
	}

	version, err := h.resumeService.Rename(r.Context(), id, req.Filename)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, version)
}

type annotateRequest struct {
	Notes *string `json:"notes"`
}

// Annotate обновляет заметки к версии
func (h *ResumeHandler) Annotate(w http.ResponseWriter, r *http.Request) {
	if _, ok := adminActor(w, r); !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req annotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Notes == nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "notes field is required")
		return
	}

	version, err := h.resumeService.Annotate(r.Context(), id, *req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, version)
}

// Activate делает версию активной
func (h *ResumeHandler) Activate(w http.ResponseWriter, r *http.Request) {
	actor, ok := adminActor(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	version, err := h.resumeService.Activate(r.Context(), id, actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, version)
}

// Delete удаляет неактивную версию
func (h *ResumeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := adminActor(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.resumeService.Delete(r.Context(), id, actor); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
