package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-EnrollmentService/internal/domain"
)

// Скрипт атомарно воспроизводит семантику фиксированного окна:
// новое окно с count=1 при отсутствии/истечении ключа, отказ без
// инкремента при достижении лимита. Возвращает {allowed, count, ttl_ms}
const takeScript = `
local key = KEYS[1]
local max = tonumber(ARGV[1])
local window_ms = tonumber(ARGV[2])

local ttl = redis.call('PTTL', key)
if ttl < 0 then
  redis.call('SET', key, 1, 'PX', window_ms)
  return {1, 1, window_ms}
end

local count = tonumber(redis.call('GET', key))
if count >= max then
  return {0, count, ttl}
end

count = redis.call('INCR', key)
return {1, count, ttl}
`

// RedisStore хранилище окон фиксированного лимита в Redis
// Несколько инстансов сервиса разделяют одну таблицу окон
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	script *redis.Script
}

// NewRedisStore создает новое redis-хранилище окон
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{
		rdb:    rdb,
		prefix: "ratelimit:otp:",
		script: redis.NewScript(takeScript),
	}
}

// Take выполняет одну проверку фиксированного окна для ключа
func (s *RedisStore) Take(ctx context.Context, key string, max int, window time.Duration, now time.Time) (domain.RateLimitDecision, error) {
	res, err := s.script.Run(ctx, s.rdb, []string{s.prefix + key}, max, window.Milliseconds()).Int64Slice()
	if err != nil {
		return domain.RateLimitDecision{}, fmt.Errorf("ratelimit.redis: Take - run script: %w", err)
	}
	if len(res) != 3 {
		return domain.RateLimitDecision{}, fmt.Errorf("ratelimit.redis: Take - unexpected script result length %d", len(res))
	}

	allowed := res[0] == 1
	count := int(res[1])
	resetTime := now.Add(time.Duration(res[2]) * time.Millisecond)

	remaining := max - count
	if !allowed || remaining < 0 {
		remaining = 0
	}

	return domain.RateLimitDecision{
		Allowed:   allowed,
		Remaining: remaining,
		ResetTime: resetTime,
	}, nil
}

// Cleanup для Redis не требуется: ключи окон истекают по TTL
func (s *RedisStore) Cleanup(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}
