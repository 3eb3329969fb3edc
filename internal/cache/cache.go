package cache

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Рекомендованные окна свежести для читающих эндпоинтов
const (
	DefaultFreshFor      = 60 * time.Second
	DefaultRevalidateFor = 300 * time.Second
	DefaultExpireAfter   = 3600 * time.Second
)

// Loader загружает актуальное значение для ключа кэша
type Loader func(ctx context.Context) (interface{}, error)

type entry struct {
	value      interface{}
	fetchedAt  time.Time
	refreshing bool
}

// Store — сквозной кэш чтения с тремя окнами на запись:
// свежая (отдаем как есть), устаревшая (отдаем и обновляем в фоне),
// просроченная (блокирующая перезагрузка). Запись в кэш инвалидируется
// синхронно из пишущих операций, TTL — только страховка.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	loaders map[string]Loader
	// Поколение ключа растет при каждой инвалидации и каждой блокирующей
	// загрузке. Фоновое обновление, начатое в старом поколении, свой
	// результат выбрасывает — иначе оно может воскресить значение,
	// считанное до записи, поверх уже перечитанного нового.
	gens map[string]uint64

	freshFor      time.Duration
	revalidateFor time.Duration
	expireAfter   time.Duration
}

func New(freshFor, revalidateFor, expireAfter time.Duration) *Store {
	return &Store{
		entries:       make(map[string]*entry),
		loaders:       make(map[string]Loader),
		gens:          make(map[string]uint64),
		freshFor:      freshFor,
		revalidateFor: revalidateFor,
		expireAfter:   expireAfter,
	}
}

func NewDefault() *Store {
	return New(DefaultFreshFor, DefaultRevalidateFor, DefaultExpireAfter)
}

// Register привязывает загрузчик к ключу. Вызывается один раз при сборке сервиса.
func (s *Store) Register(key string, loader Loader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaders[key] = loader
}

// Get возвращает значение по ключу, при необходимости загружая его
func (s *Store) Get(ctx context.Context, key string) (interface{}, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	loader, hasLoader := s.loaders[key]
	if ok {
		age := time.Since(e.fetchedAt)
		if age < s.freshFor {
			value := e.value
			s.mu.RUnlock()
			return value, nil
		}
		if age < s.revalidateFor {
			value := e.value
			s.mu.RUnlock()
			s.refreshAsync(key)
			return value, nil
		}
	}
	s.mu.RUnlock()

	if !hasLoader {
		return nil, fmt.Errorf("no loader registered for cache key %q", key)
	}

	value, err := loader(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.entries[key] = &entry{value: value, fetchedAt: time.Now()}
	s.gens[key]++
	s.mu.Unlock()

	return value, nil
}

// refreshAsync запускает фоновое обновление, не более одного на ключ
func (s *Store) refreshAsync(key string) {
	s.mu.Lock()
	e, ok := s.entries[key]
	loader, hasLoader := s.loaders[key]
	if !ok || !hasLoader || e.refreshing {
		s.mu.Unlock()
		return
	}
	e.refreshing = true
	gen := s.gens[key]
	s.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		value, err := loader(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		current, stillThere := s.entries[key]
		if stillThere {
			current.refreshing = false
		}
		if !stillThere || s.gens[key] != gen {
			// Ключ инвалидирован или перечитан, пока шло обновление —
			// результат мог быть снят до записи, выбрасываем
			return
		}
		if err != nil {
			log.Printf("[Cache] background refresh of %q failed: %v", key, err)
			return
		}
		current.value = value
		current.fetchedAt = time.Now()
	}()
}

// Invalidate синхронно выбрасывает запись. Обязан вызываться из каждой
// операции записи, способной изменить кэшируемое значение.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	s.gens[key]++
}

// SweepExpired удаляет жестко просроченные записи
func (s *Store) SweepExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		if now.Sub(e.fetchedAt) > s.expireAfter {
			delete(s.entries, key)
		}
	}
}

// StartSweepTask запускает периодическую чистку просроченных записей
func (s *Store) StartSweepTask(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.SweepExpired()
			case <-stop:
				return
			}
		}
	}()
}
