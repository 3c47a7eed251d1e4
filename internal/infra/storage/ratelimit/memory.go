package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-EnrollmentService/internal/domain"
)

// MemoryStore хранилище окон фиксированного лимита в памяти процесса
// Подходит для single-instance деплоя и тестов; для нескольких
// инстансов используется RedisStore
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*domain.RateLimitWindow
}

// NewMemoryStore создает новое in-memory хранилище окон
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*domain.RateLimitWindow),
	}
}

// Take выполняет одну проверку фиксированного окна для ключа
//
// Семантика:
//   - окна нет или оно истекло: создается новое с count=1, запрос разрешен
//   - окно активно и count < max: инкремент, запрос разрешен
//   - окно активно и count >= max: отказ без инкремента
func (s *MemoryStore) Take(ctx context.Context, key string, max int, window time.Duration, now time.Time) (domain.RateLimitDecision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || w.IsExpired(now) {
		w = &domain.RateLimitWindow{
			Count:     1,
			ResetTime: now.Add(window),
		}
		s.windows[key] = w
		return domain.RateLimitDecision{
			Allowed:   true,
			Remaining: max - 1,
			ResetTime: w.ResetTime,
		}, nil
	}

	if w.Count >= max {
		return domain.RateLimitDecision{
			Allowed:   false,
			Remaining: 0,
			ResetTime: w.ResetTime,
		}, nil
	}

	w.Count++
	return domain.RateLimitDecision{
		Allowed:   true,
		Remaining: max - w.Count,
		ResetTime: w.ResetTime,
	}, nil
}

// Cleanup удаляет все истекшие окна, возвращает количество удаленных
func (s *MemoryStore) Cleanup(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, w := range s.windows {
		if w.IsExpired(now) {
			delete(s.windows, key)
			removed++
		}
	}

	return removed, nil
}
