package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumevault/internal/cache"
)

func TestGetVisibility_DefaultsTrueWhenStoreUninitialized(t *testing.T) {
	settings := &fakeSettings{uninitialized: true}
	svc := NewSettingsService(settings, cache.New(0, 0, time.Hour))

	status, err := svc.GetVisibility(context.Background())
	require.NoError(t, err, "uninitialized settings store must never be a hard error")
	assert.True(t, status.Visible)
	assert.NotEmpty(t, status.Warning)
}

func TestGetVisibility_DefaultsTrueWhenRowMissing(t *testing.T) {
	settings := &fakeSettings{}
	svc := NewSettingsService(settings, cache.New(0, 0, time.Hour))

	status, err := svc.GetVisibility(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Visible)
	assert.Empty(t, status.Warning)
}

func TestSetVisibility_ReturnsPersistedValue(t *testing.T) {
	settings := &fakeSettings{}
	svc := NewSettingsService(settings, cache.New(0, 0, time.Hour))

	persisted, err := svc.SetVisibility(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, persisted)

	status, err := svc.GetVisibility(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Visible)
}

func TestSetVisibility_InvalidatesCache(t *testing.T) {
	settings := &fakeSettings{}
	svc := NewSettingsService(settings, cache.New(time.Minute, 2*time.Minute, time.Hour))

	status, err := svc.GetVisibility(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Visible)

	_, err = svc.SetVisibility(context.Background(), false)
	require.NoError(t, err)

	status, err = svc.GetVisibility(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Visible, "write must invalidate the cached visibility")
}
