package service

import (
	"context"
	"fmt"

	"resumevault/internal/cache"
	"resumevault/internal/domain"
)

// CacheKeyVisibility — ключ кэша для настройки видимости резюме
const CacheKeyVisibility = "settings:visibility"

// Предупреждение для окружений, где миграции настроек ещё не прогонялись
const uninitializedWarning = "settings store is not provisioned; visibility defaults to true"

// VisibilitySettings описывает хранилище настройки видимости
type VisibilitySettings interface {
	GetVisibility(ctx context.Context) (visible bool, uninitialized bool, err error)
	SetVisibility(ctx context.Context, visible bool) (bool, error)
}

type SettingsService struct {
	settings VisibilitySettings
	cache    *cache.Store
}

func NewSettingsService(settings VisibilitySettings, cacheStore *cache.Store) *SettingsService {
	s := &SettingsService{
		settings: settings,
		cache:    cacheStore,
	}

	s.cache.Register(CacheKeyVisibility, func(ctx context.Context) (interface{}, error) {
		return s.loadVisibility(ctx)
	})

	return s
}

func (s *SettingsService) loadVisibility(ctx context.Context) (domain.VisibilityStatus, error) {
	visible, uninitialized, err := s.settings.GetVisibility(ctx)
	if err != nil {
		return domain.VisibilityStatus{}, err
	}

	status := domain.VisibilityStatus{Visible: visible}
	if uninitialized {
		status.Warning = uninitializedWarning
	}
	return status, nil
}

// GetVisibility возвращает текущую видимость резюме через кэш чтения
func (s *SettingsService) GetVisibility(ctx context.Context) (domain.VisibilityStatus, error) {
	value, err := s.cache.Get(ctx, CacheKeyVisibility)
	if err != nil {
		return domain.VisibilityStatus{}, err
	}

	status, ok := value.(domain.VisibilityStatus)
	if !ok {
		return domain.VisibilityStatus{}, fmt.Errorf("unexpected cached value for %s", CacheKeyVisibility)
	}
	return status, nil
}

// SetVisibility сохраняет флаг и синхронно инвалидирует кэш.
// Возвращает фактически записанное значение.
func (s *SettingsService) SetVisibility(ctx context.Context, visible bool) (bool, error) {
	persisted, err := s.settings.SetVisibility(ctx, visible)
	if err != nil {
		return false, err
	}

	s.cache.Invalidate(CacheKeyVisibility)

	return persisted, nil
}
