package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"resumevault/internal/analytics"
	"resumevault/internal/cache"
	"resumevault/internal/domain"
	"resumevault/internal/service/s3"
)

// CacheKeyActiveResume — ключ кэша для активной версии резюме
const CacheKeyActiveResume = "resume:active"

const (
	maxResumeSizeBytes = 10 * 1024 * 1024
	maxFilenameLength  = 255
	maxNotesLength     = 5000
	resumeMIMEType     = "application/pdf"
)

// ResumeRecords описывает хранилище записей о версиях резюме
type ResumeRecords interface {
	GetActive(ctx context.Context) (*domain.ResumeVersion, error)
	GetByID(ctx context.Context, id int64) (*domain.ResumeVersion, error)
	ListAll(ctx context.Context) ([]domain.ResumeVersion, error)
	Insert(ctx context.Context, version *domain.ResumeVersion) error
	Update(ctx context.Context, id int64, upd domain.ResumeUpdate) (*domain.ResumeVersion, error)
	Delete(ctx context.Context, id int64) error
	Activate(ctx context.Context, id int64) (*domain.ResumeVersion, error)
}

type ResumeService struct {
	records   ResumeRecords
	settings  *SettingsService
	storage   s3.Storage
	cache     *cache.Store
	analytics *analytics.Logger
}

func NewResumeService(
	records ResumeRecords,
	settings *SettingsService,
	storage s3.Storage,
	cacheStore *cache.Store,
	analyticsLogger *analytics.Logger,
) *ResumeService {
	s := &ResumeService{
		records:   records,
		settings:  settings,
		storage:   storage,
		cache:     cacheStore,
		analytics: analyticsLogger,
	}

	s.cache.Register(CacheKeyActiveResume, func(ctx context.Context) (interface{}, error) {
		return s.records.GetActive(ctx)
	})

	return s
}

// ListVersions возвращает все версии, новые первыми
func (s *ResumeService) ListVersions(ctx context.Context) ([]domain.ResumeVersion, error) {
	return s.records.ListAll(ctx)
}

// GetActiveRecord возвращает активную запись через кэш чтения.
// nil без ошибки — активной версии нет.
func (s *ResumeService) GetActiveRecord(ctx context.Context) (*domain.ResumeVersion, error) {
	value, err := s.cache.Get(ctx, CacheKeyActiveResume)
	if err != nil {
		return nil, err
	}

	version, _ := value.(*domain.ResumeVersion)
	return version, nil
}

// GetActive возвращает публичную проекцию активной версии.
// Отсутствие активной версии — nil-проекция, никогда не ошибка.
func (s *ResumeService) GetActive(ctx context.Context) (*domain.PublicResume, error) {
	version, err := s.GetActiveRecord(ctx)
	if err != nil {
		return nil, err
	}
	return version.PublicProjection(), nil
}

func validateUpload(upload *domain.ResumeUpload) error {
	if upload.MIMEType != resumeMIMEType {
		return &domain.ValidationError{Field: "mime_type", Reason: "only PDF files are accepted"}
	}
	if len(upload.Data) == 0 {
		return &domain.ValidationError{Field: "file", Reason: "file is empty"}
	}
	if upload.SizeBytes > maxResumeSizeBytes {
		return &domain.ValidationError{Field: "file", Reason: fmt.Sprintf("file exceeds %d bytes", maxResumeSizeBytes)}
	}
	if len(upload.Filename) == 0 {
		return &domain.ValidationError{Field: "filename", Reason: "filename is required"}
	}
	if len(upload.Filename) > maxFilenameLength {
		return &domain.ValidationError{Field: "filename", Reason: fmt.Sprintf("filename exceeds %d characters", maxFilenameLength)}
	}
	if len(upload.Notes) > maxNotesLength {
		return &domain.ValidationError{Field: "notes", Reason: fmt.Sprintf("notes exceed %d characters", maxNotesLength)}
	}
	return nil
}

// Upload сохраняет файл в объектное хранилище и создает запись о версии.
// Валидация выполняется до записи в хранилище, чтобы не плодить блобы-сироты.
// Запись в хранилище и вставка в базу НЕ атомарны между собой: при сбое
// вставки уже загруженный блоб остаётся (логируем для внеполосной уборки),
// но запись без файла не появляется никогда.
func (s *ResumeService) Upload(ctx context.Context, upload *domain.ResumeUpload) (*domain.ResumeVersion, error) {
	if err := validateUpload(upload); err != nil {
		return nil, err
	}

	if upload.UploadedBy == "" {
		upload.UploadedBy = "unknown"
	}

	// Ключ генерируется на каждую загрузку и никогда не переиспользуется
	key := fmt.Sprintf("resumes/%d-%s.pdf", time.Now().UnixNano(), uuid.New().String())

	url, err := s.storage.PutBytes(ctx, key, upload.Data, upload.MIMEType)
	if err != nil {
		return nil, &domain.StorageError{Op: "put", Key: key, Err: err}
	}

	version := &domain.ResumeVersion{
		Filename:      upload.Filename,
		StorageKey:    key,
		StorageURL:    url,
		UploadedBy:    upload.UploadedBy,
		FileSizeBytes: upload.SizeBytes,
		MIMEType:      upload.MIMEType,
		Notes:         upload.Notes,
	}

	if err := s.records.Insert(ctx, version); err != nil {
		log.Printf("warning: orphaned blob %s: record insert failed after upload: %v", key, err)
		return nil, fmt.Errorf("failed to create resume version record: %w", err)
	}

	s.analytics.Track("resume_uploaded", upload.UploadedBy, map[string]string{
		"filename": version.Filename,
		"key":      version.StorageKey,
	})

	return version, nil
}

// Rename меняет отображаемое имя файла. Ключ хранилища не меняется.
func (s *ResumeService) Rename(ctx context.Context, id int64, filename string) (*domain.ResumeVersion, error) {
	if len(filename) == 0 {
		return nil, &domain.ValidationError{Field: "filename", Reason: "filename is required"}
	}
	if len(filename) > maxFilenameLength {
		return nil, &domain.ValidationError{Field: "filename", Reason: fmt.Sprintf("filename exceeds %d characters", maxFilenameLength)}
	}

	return s.records.Update(ctx, id, domain.ResumeUpdate{Filename: &filename})
}

// Annotate обновляет заметки к версии
func (s *ResumeService) Annotate(ctx context.Context, id int64, notes string) (*domain.ResumeVersion, error) {
	if len(notes) > maxNotesLength {
		return nil, &domain.ValidationError{Field: "notes", Reason: fmt.Sprintf("notes exceed %d characters", maxNotesLength)}
	}

	return s.records.Update(ctx, id, domain.ResumeUpdate{Notes: &notes})
}

// Activate делает указанную версию активной и сбрасывает кэш активной записи
func (s *ResumeService) Activate(ctx context.Context, id int64, actor string) (*domain.ResumeVersion, error) {
	version, err := s.records.Activate(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(CacheKeyActiveResume)

	s.analytics.Track("resume_activated", actor, map[string]string{
		"id": fmt.Sprintf("%d", version.ID),
	})

	return version, nil
}

// Delete удаляет версию. Активную версию удалить нельзя.
// Удаление блоба — best-effort: сбой хранилища логируется и не блокирует
// удаление записи, чтобы система не застревала на проблемах стораджа.
// Повторная проверка is_active выполняется в репозитории непосредственно
// перед удалением строки.
func (s *ResumeService) Delete(ctx context.Context, id int64, actor string) error {
	version, err := s.records.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if version.IsActive {
		return domain.ErrActiveResume
	}

	if err := s.storage.DeleteObject(ctx, version.StorageKey); err != nil {
		log.Printf("warning: failed to delete blob %s from storage: %v", version.StorageKey, err)
	}

	if err := s.records.Delete(ctx, id); err != nil {
		return err
	}

	s.analytics.Track("resume_deleted", actor, map[string]string{
		"id": fmt.Sprintf("%d", id),
	})

	return nil
}

// GetFile отдает байты активного резюме для публичной страницы.
// Скрытое резюме и отсутствие активной версии неразличимы снаружи (not found).
// versionPin, если задан, обязан совпадать с id активной версии — иначе
// not found, даже когда такая запись существует как неактивная.
func (s *ResumeService) GetFile(ctx context.Context, versionPin *int64) (s3.Object, *domain.ResumeVersion, error) {
	status, err := s.settings.GetVisibility(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !status.Visible {
		return nil, nil, domain.ErrNotFound
	}

	version, err := s.GetActiveRecord(ctx)
	if err != nil {
		return nil, nil, err
	}
	if version == nil {
		return nil, nil, domain.ErrNotFound
	}

	if versionPin != nil && *versionPin != version.ID {
		return nil, nil, domain.ErrNotFound
	}

	obj, err := s.storage.GetObject(ctx, version.StorageKey)
	if err != nil {
		return nil, nil, &domain.StorageError{Op: "get", Key: version.StorageKey, Err: err}
	}

	return obj, version, nil
}
