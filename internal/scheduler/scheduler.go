package scheduler

import (
	"context"
	"time"
)

// Sweeper интерфейс фоновой очистки просроченных записей листа ожидания
type Sweeper interface {
	Execute(ctx context.Context) (int, error)
}

// RateLimitCleaner интерфейс очистки истекших окон лимитера
type RateLimitCleaner interface {
	Cleanup(ctx context.Context) (int, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	sweeper         Sweeper
	cleaner         RateLimitCleaner
	sweepInterval   time.Duration
	cleanupInterval time.Duration
	logger          Logger
	stopChan        chan struct{}
}

// New создает новый планировщик
func New(
	sweeper Sweeper,
	cleaner RateLimitCleaner,
	sweepInterval time.Duration,
	cleanupInterval time.Duration,
	logger Logger,
) *Scheduler {
	return &Scheduler{
		sweeper:         sweeper,
		cleaner:         cleaner,
		sweepInterval:   sweepInterval,
		cleanupInterval: cleanupInterval,
		logger:          logger,
		stopChan:        make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler (sweep every %s, ratelimit cleanup every %s)",
		s.sweepInterval, s.cleanupInterval)

	go s.runSweepTask(ctx)
	go s.runCleanupTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runSweepTask периодически удаляет просроченные записи листа ожидания
func (s *Scheduler) runSweepTask(ctx context.Context) {
	// Первый запуск сразу при старте: после рестарта не ждем целый интервал
	s.sweep(ctx)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("Waitlist sweep task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Waitlist sweep task cancelled")
			return
		}
	}
}

// runCleanupTask периодически удаляет истекшие окна лимитера
func (s *Scheduler) runCleanupTask(ctx context.Context) {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup(ctx)
		case <-s.stopChan:
			s.logger.Info("Ratelimit cleanup task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Ratelimit cleanup task cancelled")
			return
		}
	}
}

// sweep тело задачи очистки листа ожидания, вызывается тестами напрямую
func (s *Scheduler) sweep(ctx context.Context) {
	removed, err := s.sweeper.Execute(ctx)
	if err != nil {
		s.logger.Error("Waitlist sweep failed: %v", err)
		return
	}

	if removed > 0 {
		s.logger.Info("Waitlist sweep removed %d expired entries", removed)
	}
}

// cleanup тело задачи очистки окон лимитера, вызывается тестами напрямую
func (s *Scheduler) cleanup(ctx context.Context) {
	if _, err := s.cleaner.Cleanup(ctx); err != nil {
		s.logger.Error("Ratelimit cleanup failed: %v", err)
	}
}
