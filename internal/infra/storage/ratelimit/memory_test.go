package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Take_FixedWindowSemantics(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	window := time.Hour

	// Первые max запросов разрешены с убывающим remaining
	for i := 0; i < 5; i++ {
		decision, err := store.Take(ctx, "+79990000001", 5, window, now)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, 4-i, decision.Remaining)
		assert.Equal(t, now.Add(window), decision.ResetTime)
	}

	// Шестой запрос отклонен, время сброса не сдвигается
	decision, err := store.Take(ctx, "+79990000001", 5, window, now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
	assert.Equal(t, now.Add(window), decision.ResetTime)
}

func TestMemoryStore_Take_RejectionDoesNotExtendWindow(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := store.Take(ctx, "key", 3, time.Hour, now)
		require.NoError(t, err)
	}

	// Отказы внутри окна не инкрементируют счетчик
	for i := 0; i < 10; i++ {
		decision, err := store.Take(ctx, "key", 3, time.Hour, now.Add(59*time.Minute))
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
	}

	// Ровно в момент сброса окно еще действует
	decision, err := store.Take(ctx, "key", 3, time.Hour, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, decision.Allowed)

	// Строго после сброса запрос снова разрешен, окно новое
	after := now.Add(time.Hour + time.Second)
	decision, err = store.Take(ctx, "key", 3, time.Hour, after)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 2, decision.Remaining)
	assert.Equal(t, after.Add(time.Hour), decision.ResetTime)
}

func TestMemoryStore_Take_IndependentKeys(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		_, err := store.Take(ctx, "first", 2, time.Hour, now)
		require.NoError(t, err)
	}

	decision, err := store.Take(ctx, "first", 2, time.Hour, now)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)

	decision, err = store.Take(ctx, "second", 2, time.Hour, now)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestMemoryStore_Cleanup(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	_, err := store.Take(ctx, "old", 5, time.Hour, now)
	require.NoError(t, err)
	_, err = store.Take(ctx, "fresh", 5, time.Hour, now.Add(30*time.Minute))
	require.NoError(t, err)

	removed, err := store.Cleanup(ctx, now.Add(61*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	// Счетчик свежего окна сохранен
	decision, err := store.Take(ctx, "fresh", 5, time.Hour, now.Add(62*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 3, decision.Remaining)
}
