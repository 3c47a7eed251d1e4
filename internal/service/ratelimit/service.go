package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-EnrollmentService/internal/domain"
)

// Metrics интерфейс для учета отклоненных запросов
type Metrics interface {
	IncRateLimitRejection()
}

// Service лимитер с фиксированным окном
//
// Счетчик окна фиксируется в момент первого запроса и живет ровно
// window. По исчерпании лимита счетчик НЕ инкрементируется, поэтому
// время сброса не отодвигается повторными попытками
type Service struct {
	store        WindowStore
	max          int
	window       time.Duration
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса rate limiting
func NewService(store WindowStore, max int, window time.Duration, metrics Metrics, logger Logger) *Service {
	return &Service{
		store:        store,
		max:          max,
		window:       window,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет провайдер времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// Allow проверяет и расходует одну попытку для ключа
//
// При исчерпании лимита возвращает ErrRateLimited вместе с решением,
// содержащим время сброса окна для заголовка Retry-After
func (s *Service) Allow(ctx context.Context, key string) (*domain.RateLimitDecision, error) {
	now := s.timeProvider.Now()

	decision, err := s.store.Take(ctx, key, s.max, s.window, now)
	if err != nil {
		s.logger.Error("Allow: window store error for key=%s: %v", key, err)
		return nil, fmt.Errorf("%w: Allow - window store error: %v", ErrInternal, err)
	}

	if !decision.Allowed {
		s.metrics.IncRateLimitRejection()
		s.logger.Warn("Allow: key=%s rejected, window resets at %s", key, decision.ResetTime.Format(time.RFC3339))
		return &decision, ErrRateLimited
	}

	return &decision, nil
}

// Cleanup удаляет истекшие окна из хранилища
// Для Redis-бекенда это no-op: окна истекают по TTL
func (s *Service) Cleanup(ctx context.Context) (int, error) {
	removed, err := s.store.Cleanup(ctx, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("Cleanup: window store error: %v", err)
		return 0, fmt.Errorf("%w: Cleanup - window store error: %v", ErrInternal, err)
	}

	if removed > 0 {
		s.logger.Info("Cleanup: removed %d expired windows", removed)
	}

	return removed, nil
}
