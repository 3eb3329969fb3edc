// Package adminview держит состояние админского интерфейса управления
// версиями резюме: локальную копию списка, фильтр/сортировку, выбор записей
// и состояние диалогов. Состояние не авторитетно и целиком перестраивается
// из сервиса при каждом Refresh.
package adminview

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"resumevault/internal/domain"
)

type Filter string

const (
	FilterAll      Filter = "all"
	FilterActive   Filter = "active"
	FilterInactive Filter = "inactive"
)

type SortKey string

const (
	SortByDate SortKey = "date"
	SortByName SortKey = "name"
	SortBySize SortKey = "size"
)

type DialogKind string

const (
	DialogNone     DialogKind = ""
	DialogRename   DialogKind = "rename"
	DialogAnnotate DialogKind = "annotate"
	DialogPreview  DialogKind = "preview"
)

// Dialog — какой диалог открыт и над какой записью
type Dialog struct {
	Kind     DialogKind
	TargetID int64
}

// Stats — агрегаты по всему списку, без учета фильтра
type Stats struct {
	Active     *domain.ResumeVersion
	TotalBytes int64
	Latest     *time.Time
}

// View — производное представление: отфильтрованный и отсортированный
// список плюс агрегаты. Пересчитывается на каждый вызов, нигде не хранится.
type View struct {
	Versions []domain.ResumeVersion
	Stats    Stats
}

// BulkResult — итог пакетного удаления
type BulkResult struct {
	Requested int
	Deleted   int
	Failed    int
}

// ResumeAPI — то, что менеджеру нужно от сервиса резюме
type ResumeAPI interface {
	ListVersions(ctx context.Context) ([]domain.ResumeVersion, error)
	Delete(ctx context.Context, id int64, actor string) error
}

type Manager struct {
	api   ResumeAPI
	actor string

	mu        sync.Mutex
	versions  []domain.ResumeVersion
	filter    Filter
	sortKey   SortKey
	ascending bool
	selected  map[int64]struct{}
	dialog    Dialog
}

func NewManager(api ResumeAPI, actor string) *Manager {
	return &Manager{
		api:      api,
		actor:    actor,
		filter:   FilterAll,
		sortKey:  SortByDate,
		selected: make(map[int64]struct{}),
	}
}

// Refresh перечитывает канонический список из сервиса.
// Выбор записей, которых больше нет, снимается.
func (m *Manager) Refresh(ctx context.Context) error {
	versions, err := m.api.ListVersions(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.versions = versions

	known := make(map[int64]struct{}, len(versions))
	for _, v := range versions {
		known[v.ID] = struct{}{}
	}
	for id := range m.selected {
		if _, ok := known[id]; !ok {
			delete(m.selected, id)
		}
	}

	return nil
}

func (m *Manager) SetFilter(f Filter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filter = f
}

func (m *Manager) SetSort(key SortKey, ascending bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sortKey = key
	m.ascending = ascending
}

// ToggleSelect добавляет или убирает запись из выбора
func (m *Manager) ToggleSelect(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.selected[id]; ok {
		delete(m.selected, id)
	} else {
		m.selected[id] = struct{}{}
	}
}

func (m *Manager) ClearSelection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = make(map[int64]struct{})
}

// Selected возвращает выбранные id в стабильном порядке
func (m *Manager) Selected() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.selected))
	for id := range m.selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *Manager) OpenDialog(kind DialogKind, targetID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dialog = Dialog{Kind: kind, TargetID: targetID}
}

func (m *Manager) CloseDialog() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dialog = Dialog{}
}

func (m *Manager) Dialog() Dialog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dialog
}

// View строит производное представление из сырого состояния
func (m *Manager) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	filtered := make([]domain.ResumeVersion, 0, len(m.versions))
	for _, v := range m.versions {
		switch m.filter {
		case FilterActive:
			if !v.IsActive {
				continue
			}
		case FilterInactive:
			if v.IsActive {
				continue
			}
		}
		filtered = append(filtered, v)
	}

	asc := m.ascending
	switch m.sortKey {
	case SortByName:
		sort.SliceStable(filtered, func(i, j int) bool {
			less := strings.ToLower(filtered[i].Filename) < strings.ToLower(filtered[j].Filename)
			if asc {
				return less
			}
			return !less
		})
	case SortBySize:
		sort.SliceStable(filtered, func(i, j int) bool {
			if asc {
				return filtered[i].FileSizeBytes < filtered[j].FileSizeBytes
			}
			return filtered[i].FileSizeBytes > filtered[j].FileSizeBytes
		})
	default:
		sort.SliceStable(filtered, func(i, j int) bool {
			if asc {
				return filtered[i].UploadedAt.Before(filtered[j].UploadedAt)
			}
			return filtered[i].UploadedAt.After(filtered[j].UploadedAt)
		})
	}

	stats := Stats{}
	for i := range m.versions {
		v := m.versions[i]
		stats.TotalBytes += v.FileSizeBytes
		if v.IsActive {
			active := v
			stats.Active = &active
		}
		if stats.Latest == nil || v.UploadedAt.After(*stats.Latest) {
			uploadedAt := v.UploadedAt
			stats.Latest = &uploadedAt
		}
	}

	return View{Versions: filtered, Stats: stats}
}

// BulkDelete удаляет все выбранные записи.
// Если среди выбранных есть активная — пакет отклоняется целиком, ни одно
// удаление не запускается и выбор сохраняется.
// Иначе удаления выполняются конкурентно, каждое до своего исхода: первый
// сбой не прерывает остальные. Итог — агрегат "удалено N из M".
// Выбор снимается после завершения пакета независимо от результата, затем
// список перечитывается из сервиса.
func (m *Manager) BulkDelete(ctx context.Context) (BulkResult, error) {
	m.mu.Lock()
	ids := make([]int64, 0, len(m.selected))
	for id := range m.selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		for _, v := range m.versions {
			if v.ID == id && v.IsActive {
				m.mu.Unlock()
				return BulkResult{}, domain.ErrActiveResume
			}
		}
	}
	m.mu.Unlock()

	if len(ids) == 0 {
		return BulkResult{}, nil
	}

	var (
		wg       sync.WaitGroup
		resultMu sync.Mutex
		failed   int
	)

	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if err := m.api.Delete(ctx, id, m.actor); err != nil {
				log.Printf("warning: bulk delete of version %d failed: %v", id, err)
				resultMu.Lock()
				failed++
				resultMu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	m.mu.Lock()
	m.selected = make(map[int64]struct{})
	m.mu.Unlock()

	if err := m.Refresh(ctx); err != nil {
		log.Printf("warning: failed to refresh versions after bulk delete: %v", err)
	}

	return BulkResult{
		Requested: len(ids),
		Deleted:   len(ids) - failed,
		Failed:    failed,
	}, nil
}
