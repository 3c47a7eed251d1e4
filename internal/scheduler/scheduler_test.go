package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeSweeper struct {
	calls atomic.Int32
	err   error
}

func (s *fakeSweeper) Execute(context.Context) (int, error) {
	s.calls.Add(1)
	return 2, s.err
}

type fakeCleaner struct {
	calls atomic.Int32
	err   error
}

func (c *fakeCleaner) Cleanup(context.Context) (int, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestScheduler_TickBodies(t *testing.T) {
	sweeper := &fakeSweeper{}
	cleaner := &fakeCleaner{}
	s := New(sweeper, cleaner, time.Minute, time.Minute, nopLogger{})

	s.sweep(context.Background())
	s.cleanup(context.Background())

	assert.Equal(t, int32(1), sweeper.calls.Load())
	assert.Equal(t, int32(1), cleaner.calls.Load())
}

func TestScheduler_TickErrorsAreSwallowed(t *testing.T) {
	sweeper := &fakeSweeper{err: assert.AnError}
	cleaner := &fakeCleaner{err: assert.AnError}
	s := New(sweeper, cleaner, time.Minute, time.Minute, nopLogger{})

	// Ошибки задач логируются и не роняют планировщик
	s.sweep(context.Background())
	s.cleanup(context.Background())

	assert.Equal(t, int32(1), sweeper.calls.Load())
	assert.Equal(t, int32(1), cleaner.calls.Load())
}

func TestScheduler_StopTerminatesTasks(t *testing.T) {
	sweeper := &fakeSweeper{}
	cleaner := &fakeCleaner{}
	s := New(sweeper, cleaner, 10*time.Millisecond, 10*time.Millisecond, nopLogger{})

	s.Start(context.Background())

	// Первый sweep выполняется сразу при старте
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	// Даем тику в полете завершиться
	time.Sleep(20 * time.Millisecond)
	callsAfterStop := sweeper.calls.Load()
	time.Sleep(30 * time.Millisecond)

	assert.GreaterOrEqual(t, callsAfterStop, int32(1))
	assert.Equal(t, callsAfterStop, sweeper.calls.Load())
}
