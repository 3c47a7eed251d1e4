package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ratelimitStore "github.com/m04kA/SMC-EnrollmentService/internal/infra/storage/ratelimit"
)

type fakeTimeProvider struct {
	now time.Time
}

func (f *fakeTimeProvider) Now() time.Time {
	return f.now
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type countingMetrics struct {
	rejections int
}

func (m *countingMetrics) IncRateLimitRejection() {
	m.rejections++
}

func newTestService(max int, window time.Duration) (*Service, *fakeTimeProvider, *countingMetrics) {
	clock := &fakeTimeProvider{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	metrics := &countingMetrics{}

	svc := NewService(ratelimitStore.NewMemoryStore(), max, window, metrics, nopLogger{}).
		WithTimeProvider(clock)

	return svc, clock, metrics
}

func TestAllow_GrantsUpToMaxRequests(t *testing.T) {
	svc, _, metrics := newTestService(5, time.Hour)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		decision, err := svc.Allow(ctx, "+79990000001")
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, 4-i, decision.Remaining)
	}

	assert.Zero(t, metrics.rejections)
}

func TestAllow_RejectsWhenWindowExhausted(t *testing.T) {
	svc, clock, metrics := newTestService(5, time.Hour)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Allow(ctx, "+79990000001")
		require.NoError(t, err)
	}

	decision, err := svc.Allow(ctx, "+79990000001")
	assert.ErrorIs(t, err, ErrRateLimited)
	require.NotNil(t, decision)
	assert.Equal(t, clock.now.Add(time.Hour), decision.ResetTime)
	assert.Equal(t, 1, metrics.rejections)
}

func TestAllow_WindowResetsAfterExpiry(t *testing.T) {
	svc, clock, _ := newTestService(2, time.Hour)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Allow(ctx, "key")
		require.NoError(t, err)
	}

	_, err := svc.Allow(ctx, "key")
	assert.ErrorIs(t, err, ErrRateLimited)

	// Ровно на границе окна отказ сохраняется
	clock.now = clock.now.Add(time.Hour)
	_, err = svc.Allow(ctx, "key")
	assert.ErrorIs(t, err, ErrRateLimited)

	// Отказы не отодвинули время сброса: строго после границы лимит доступен снова
	clock.now = clock.now.Add(time.Second)

	decision, err := svc.Allow(ctx, "key")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 1, decision.Remaining)
}

func TestCleanup_RemovesExpiredWindows(t *testing.T) {
	svc, clock, _ := newTestService(5, time.Hour)
	ctx := context.Background()

	_, err := svc.Allow(ctx, "first")
	require.NoError(t, err)
	_, err = svc.Allow(ctx, "second")
	require.NoError(t, err)

	clock.now = clock.now.Add(2 * time.Hour)

	removed, err := svc.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
}
