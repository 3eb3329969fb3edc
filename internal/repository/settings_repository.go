package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"resumevault/internal/domain"
)

// Код ошибки PostgreSQL "undefined_table"
const pqUndefinedTable = "42P01"

type SettingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetVisibility читает флаг видимости резюме.
// Отсутствие строки — значение по умолчанию true.
// Отсутствие самой таблицы (миграции не прогонялись) — тоже true, но с
// пометкой uninitialized: сервис обязан оставаться доступным, а не падать.
// Любая другая ошибка пробрасывается как есть.
func (r *SettingsRepository) GetVisibility(ctx context.Context) (visible bool, uninitialized bool, err error) {
	var value bool
	query := `SELECT value FROM site_settings WHERE key = $1`

	err = r.db.GetContext(ctx, &value, query, domain.VisibilityKey)
	if errors.Is(err, sql.ErrNoRows) {
		return true, false, nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUndefinedTable {
		log.Printf("warning: site_settings table is missing, defaulting resume visibility to true")
		return true, true, nil
	}

	if err != nil {
		return false, false, fmt.Errorf("failed to get visibility setting: %w", err)
	}

	return value, false, nil
}

// SetVisibility сохраняет флаг и возвращает фактически записанное значение
// (RETURNING, а не входной аргумент — на случай конкурентной записи).
func (r *SettingsRepository) SetVisibility(ctx context.Context, visible bool) (bool, error) {
	var persisted bool
	query := `
        INSERT INTO site_settings (key, value, updated_at)
        VALUES ($1, $2, CURRENT_TIMESTAMP)
        ON CONFLICT (key) DO UPDATE
        SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP
        RETURNING value`

	err := r.db.QueryRowxContext(ctx, query, domain.VisibilityKey, visible).Scan(&persisted)
	if err != nil {
		return false, fmt.Errorf("failed to set visibility setting: %w", err)
	}

	return persisted, nil
}
