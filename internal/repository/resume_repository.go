package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"resumevault/internal/domain"
)

type ResumeRepository struct {
	db *sqlx.DB
}

func NewResumeRepository(db *sqlx.DB) *ResumeRepository {
	return &ResumeRepository{db: db}
}

// GetActive возвращает активную версию резюме или nil, если её нет.
// Отсутствие активной записи — штатная ситуация, не ошибка.
func (r *ResumeRepository) GetActive(ctx context.Context) (*domain.ResumeVersion, error) {
	var version domain.ResumeVersion
	query := `SELECT * FROM resume_versions WHERE is_active LIMIT 1`

	err := r.db.GetContext(ctx, &version, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active resume version: %w", err)
	}

	return &version, nil
}

func (r *ResumeRepository) GetByID(ctx context.Context, id int64) (*domain.ResumeVersion, error) {
	var version domain.ResumeVersion
	query := `SELECT * FROM resume_versions WHERE id = $1`

	err := r.db.GetContext(ctx, &version, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resume version %d: %w", id, err)
	}

	return &version, nil
}

// ListAll возвращает все версии, новые первыми
func (r *ResumeRepository) ListAll(ctx context.Context) ([]domain.ResumeVersion, error) {
	versions := make([]domain.ResumeVersion, 0)
	query := `SELECT * FROM resume_versions ORDER BY uploaded_at DESC, id DESC`

	err := r.db.SelectContext(ctx, &versions, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list resume versions: %w", err)
	}

	return versions, nil
}

// Insert создает запись о новой версии. id и uploaded_at назначает база,
// is_active всегда false: активация — отдельная операция.
func (r *ResumeRepository) Insert(ctx context.Context, version *domain.ResumeVersion) error {
	query := `
        INSERT INTO resume_versions (filename, storage_key, storage_url, uploaded_by, file_size_bytes, mime_type, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, is_active, uploaded_at`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		version.Filename,
		version.StorageKey,
		version.StorageURL,
		version.UploadedBy,
		version.FileSizeBytes,
		version.MIMEType,
		version.Notes,
	).Scan(&version.ID, &version.IsActive, &version.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to insert resume version: %w", err)
	}

	return nil
}

// Update меняет только изменяемые поля: filename и notes. nil-поле не трогаем.
func (r *ResumeRepository) Update(ctx context.Context, id int64, upd domain.ResumeUpdate) (*domain.ResumeVersion, error) {
	var version domain.ResumeVersion
	query := `
        UPDATE resume_versions
        SET filename = COALESCE($1, filename),
            notes    = COALESCE($2, notes)
        WHERE id = $3
        RETURNING *`

	err := r.db.GetContext(ctx, &version, query, upd.Filename, upd.Notes, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update resume version %d: %w", id, err)
	}

	return &version, nil
}

// Activate атомарно переносит флаг is_active на указанную запись.
// Порядок внутри транзакции:
//  1. блокируем целевую запись (FOR UPDATE) — при её отсутствии выходим
//     без каких-либо побочных эффектов;
//  2. снимаем флаг с текущего держателя;
//  3. ставим флаг на цель.
// Сброс до установки обязателен: частичный уникальный индекс по is_active
// не допускает двух активных записей даже внутри одного запроса.
// Конкурентные активации сериализуются на блокировке строки, читатели
// видят только зафиксированное состояние.
func (r *ResumeRepository) Activate(ctx context.Context, id int64) (*domain.ResumeVersion, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var targetID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM resume_versions WHERE id = $1 FOR UPDATE`, id).Scan(&targetID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock resume version %d: %w", id, err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE resume_versions SET is_active = FALSE WHERE is_active AND id <> $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to clear active flag: %w", err)
	}

	var version domain.ResumeVersion
	err = tx.GetContext(ctx, &version, `UPDATE resume_versions SET is_active = TRUE WHERE id = $1 RETURNING *`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to set active flag on %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit activation: %w", err)
	}

	return &version, nil
}

// Delete удаляет запись. Проверка is_active и удаление выполняются в одной
// транзакции с блокировкой строки, чтобы гонка с Activate по тому же id
// не могла удалить только что активированную запись.
func (r *ResumeRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var isActive bool
	err = tx.QueryRowContext(ctx, `SELECT is_active FROM resume_versions WHERE id = $1 FOR UPDATE`, id).Scan(&isActive)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock resume version %d: %w", id, err)
	}

	if isActive {
		return domain.ErrActiveResume
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM resume_versions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete resume version %d: %w", id, err)
	}

	return tx.Commit()
}
