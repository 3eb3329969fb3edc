package domain

import (
	"time"
)

// ResumeVersion представляет одну загруженную версию резюме
type ResumeVersion struct {
	ID            int64     `json:"id" db:"id"`
	Filename      string    `json:"filename" db:"filename"`
	StorageKey    string    `json:"storage_key" db:"storage_key"`
	StorageURL    string    `json:"storage_url" db:"storage_url"`
	UploadedBy    string    `json:"uploaded_by" db:"uploaded_by"`
	FileSizeBytes int64     `json:"file_size_bytes" db:"file_size_bytes"`
	MIMEType      string    `json:"mime_type" db:"mime_type"`
	Notes         string    `json:"notes" db:"notes"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	UploadedAt    time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// ResumeUpload содержит данные загружаемого файла резюме
type ResumeUpload struct {
	Filename   string
	MIMEType   string
	SizeBytes  int64
	Notes      string
	UploadedBy string
	Data       []byte
}

// ResumeUpdate описывает частичное обновление записи: nil-поле не меняется
type ResumeUpdate struct {
	Filename *string
	Notes    *string
}

// PublicResume представляет публичную проекцию активной версии.
// Служебные поля (storage_key, notes, uploaded_by) наружу не отдаются.
type PublicResume struct {
	ID            int64     `json:"id"`
	Filename      string    `json:"filename"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	MIMEType      string    `json:"mime_type"`
	UploadedAt    time.Time `json:"uploaded_at"`
}

// PublicProjection строит публичную проекцию записи
func (v *ResumeVersion) PublicProjection() *PublicResume {
	if v == nil {
		return nil
	}
	return &PublicResume{
		ID:            v.ID,
		Filename:      v.Filename,
		FileSizeBytes: v.FileSizeBytes,
		MIMEType:      v.MIMEType,
		UploadedAt:    v.UploadedAt,
	}
}
