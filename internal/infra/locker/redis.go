package locker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisRetryInterval = 25 * time.Millisecond

// releaseScript удаляет ключ, только если он принадлежит вызывающему
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// RedisLocker распределённая блокировка (SET NX PX) для нескольких инстансов сервиса
// TTL ограничивает время жизни ключа, если процесс упал, не освободив блокировку
type RedisLocker struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	logger Logger
}

func NewRedisLocker(rdb redis.Cmdable, ttl time.Duration, logger Logger) *RedisLocker {
	return &RedisLocker{rdb: rdb, ttl: ttl, logger: logger}
}

// Lock захватывает key, повторяя попытки до истечения wait
func (l *RedisLocker) Lock(ctx context.Context, key string, wait time.Duration) (Unlock, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: SETNX %s: %v", ErrLockBackend, key, err)
		}
		if ok {
			return l.unlockFunc(key, token), nil
		}

		if !time.Now().Add(redisRetryInterval).Before(deadline) {
			return nil, fmt.Errorf("%w: key=%s", ErrLockTimeout, key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(redisRetryInterval):
		}
	}
}

func (l *RedisLocker) unlockFunc(key, token string) Unlock {
	var once sync.Once
	return func() {
		once.Do(func() {
			// Контекст запроса может быть уже отменён, освобождаем независимо от него
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err()
			if err != nil && !errors.Is(err, redis.Nil) && l.logger != nil {
				l.logger.Warn("Locker: failed to release %s: %v", key, err)
			}
		})
	}
}
