package adminview

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumevault/internal/domain"
)

// fakeAPI хранит записи в памяти и позволяет инъецировать отказы удаления
type fakeAPI struct {
	mu        sync.Mutex
	items     map[int64]domain.ResumeVersion
	failIDs   map[int64]bool
	listCalls int
}

func newFakeAPI(versions ...domain.ResumeVersion) *fakeAPI {
	api := &fakeAPI{
		items:   make(map[int64]domain.ResumeVersion),
		failIDs: make(map[int64]bool),
	}
	for _, v := range versions {
		api.items[v.ID] = v
	}
	return api
}

func (f *fakeAPI) ListVersions(ctx context.Context) ([]domain.ResumeVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	out := make([]domain.ResumeVersion, 0, len(f.items))
	for _, v := range f.items {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeAPI) Delete(ctx context.Context, id int64, actor string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[id] {
		return errors.New("simulated storage failure")
	}
	if _, ok := f.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func version(id int64, name string, size int64, active bool, uploadedAt time.Time) domain.ResumeVersion {
	return domain.ResumeVersion{
		ID:            id,
		Filename:      name,
		StorageKey:    "resumes/key",
		StorageURL:    "https://cdn/resumes/key",
		UploadedBy:    "admin",
		FileSizeBytes: size,
		MIMEType:      "application/pdf",
		IsActive:      active,
		UploadedAt:    uploadedAt,
	}
}

func fiveVersions() []domain.ResumeVersion {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []domain.ResumeVersion{
		version(1, "alpha.pdf", 100, false, base),
		version(2, "bravo.pdf", 500, false, base.Add(time.Hour)),
		version(3, "charlie.pdf", 300, true, base.Add(2*time.Hour)),
		version(4, "delta.pdf", 200, false, base.Add(3*time.Hour)),
		version(5, "echo.pdf", 400, false, base.Add(4*time.Hour)),
	}
}

func TestRefresh_DropsSelectionOfRemovedVersions(t *testing.T) {
	api := newFakeAPI(fiveVersions()...)
	m := NewManager(api, "admin")
	require.NoError(t, m.Refresh(context.Background()))

	m.ToggleSelect(1)
	m.ToggleSelect(2)

	api.mu.Lock()
	delete(api.items, 2)
	api.mu.Unlock()

	require.NoError(t, m.Refresh(context.Background()))
	assert.Equal(t, []int64{1}, m.Selected())
}

func TestView_FilterAndSort(t *testing.T) {
	api := newFakeAPI(fiveVersions()...)
	m := NewManager(api, "admin")
	require.NoError(t, m.Refresh(context.Background()))

	m.SetFilter(FilterInactive)
	m.SetSort(SortBySize, true)

	view := m.View()
	require.Len(t, view.Versions, 4)
	sizes := make([]int64, 0, len(view.Versions))
	for _, v := range view.Versions {
		assert.False(t, v.IsActive)
		sizes = append(sizes, v.FileSizeBytes)
	}
	assert.Equal(t, []int64{100, 200, 400, 500}, sizes)
}

func TestView_StatsComputedFromRawState(t *testing.T) {
	api := newFakeAPI(fiveVersions()...)
	m := NewManager(api, "admin")
	require.NoError(t, m.Refresh(context.Background()))

	// Фильтр не влияет на агрегаты
	m.SetFilter(FilterActive)

	view := m.View()
	require.NotNil(t, view.Stats.Active)
	assert.Equal(t, int64(3), view.Stats.Active.ID)
	assert.Equal(t, int64(1500), view.Stats.TotalBytes)
	require.NotNil(t, view.Stats.Latest)
	assert.Equal(t, time.Date(2025, 6, 1, 16, 0, 0, 0, time.UTC), *view.Stats.Latest)
}

func TestView_DefaultSortNewestFirst(t *testing.T) {
	api := newFakeAPI(fiveVersions()...)
	m := NewManager(api, "admin")
	require.NoError(t, m.Refresh(context.Background()))

	view := m.View()
	require.Len(t, view.Versions, 5)
	assert.Equal(t, int64(5), view.Versions[0].ID)
	assert.Equal(t, int64(1), view.Versions[4].ID)
}

func TestBulkDelete_RejectsBatchWithActiveSelection(t *testing.T) {
	api := newFakeAPI(fiveVersions()...)
	m := NewManager(api, "admin")
	require.NoError(t, m.Refresh(context.Background()))

	m.ToggleSelect(1)
	m.ToggleSelect(3) // активная

	_, err := m.BulkDelete(context.Background())
	assert.ErrorIs(t, err, domain.ErrActiveResume)

	// Ни одно удаление не запускалось, выбор сохранён
	api.mu.Lock()
	assert.Len(t, api.items, 5)
	api.mu.Unlock()
	assert.Equal(t, []int64{1, 3}, m.Selected())
}

func TestBulkDelete_PartialFailureAggregation(t *testing.T) {
	api := newFakeAPI(fiveVersions()...)
	api.failIDs[2] = true
	api.failIDs[4] = true

	m := NewManager(api, "admin")
	require.NoError(t, m.Refresh(context.Background()))

	for _, id := range []int64{1, 2, 4, 5} {
		m.ToggleSelect(id)
	}
	// Плюс уже отсутствующая на сервере запись
	m.selected[99] = struct{}{}

	result, err := m.BulkDelete(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, result.Requested)
	assert.Equal(t, 2, result.Deleted, "only 1 and 5 can succeed")
	assert.Equal(t, 3, result.Failed)

	// Успешно удаленные исчезли, отказавшие остались
	api.mu.Lock()
	_, ok1 := api.items[1]
	_, ok2 := api.items[2]
	_, ok4 := api.items[4]
	_, ok5 := api.items[5]
	api.mu.Unlock()
	assert.False(t, ok1)
	assert.True(t, ok2)
	assert.True(t, ok4)
	assert.False(t, ok5)

	// Выбор снят независимо от исхода, список перечитан
	assert.Empty(t, m.Selected())
	view := m.View()
	assert.Len(t, view.Versions, 3)
}

func TestBulkDelete_AllSucceed(t *testing.T) {
	api := newFakeAPI(fiveVersions()...)
	m := NewManager(api, "admin")
	require.NoError(t, m.Refresh(context.Background()))

	m.ToggleSelect(1)
	m.ToggleSelect(2)
	m.ToggleSelect(4)

	result, err := m.BulkDelete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, BulkResult{Requested: 3, Deleted: 3, Failed: 0}, result)
	assert.Empty(t, m.Selected())
}

func TestBulkDelete_EmptySelection(t *testing.T) {
	api := newFakeAPI(fiveVersions()...)
	m := NewManager(api, "admin")
	require.NoError(t, m.Refresh(context.Background()))

	result, err := m.BulkDelete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, BulkResult{}, result)
}

func TestDialogState(t *testing.T) {
	api := newFakeAPI(fiveVersions()...)
	m := NewManager(api, "admin")

	m.OpenDialog(DialogRename, 2)
	assert.Equal(t, Dialog{Kind: DialogRename, TargetID: 2}, m.Dialog())

	m.CloseDialog()
	assert.Equal(t, Dialog{}, m.Dialog())
}
