package domain

import "time"

// Ключ единственной настройки видимости резюме
const VisibilityKey = "resume_visible"

// VisibilitySetting представляет настройку видимости публичного резюме
type VisibilitySetting struct {
	Key       string    `json:"key" db:"key"`
	Value     bool      `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// VisibilityStatus — результат чтения настройки. Когда таблица настроек
// не развернута, Visible = true и Warning заполнено (fail-open).
type VisibilityStatus struct {
	Visible bool   `json:"visible"`
	Warning string `json:"warning,omitempty"`
}
