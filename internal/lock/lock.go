// Package lock даёт рекомендательные блокировки на владельца и дату,
// которые держатся между проверкой конфликтов и записью визита.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrNotAcquired — ключ уже держит другой вызов.
var ErrNotAcquired = errors.New("lock not acquired")

// Release снимает все ключи, взятые одним Acquire, в обратном порядке.
type Release func(ctx context.Context) error

type Locker interface {
	// Acquire берёт все ключи или ни одного.
	Acquire(ctx context.Context, keys ...string) (Release, error)
}

// Key строит ключ блокировки владельца на дату.
func Key(ownerKind, ownerID, date string) string {
	return fmt.Sprintf("care:lock:%s:%s:%s", ownerKind, ownerID, date)
}

// Снимает ключ, только если в нём наш токен.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewRedisLocker(client *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		log:    log.With().Str("component", "redis_locker").Logger(),
	}
}

type heldKey struct {
	key, token string
}

func (l *RedisLocker) Acquire(ctx context.Context, keys ...string) (Release, error) {
	held := make([]heldKey, 0, len(keys))

	for _, key := range keys {
		token := uuid.NewString()
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			l.rollback(ctx, held)
			return nil, fmt.Errorf("redis setnx %s: %w", key, err)
		}
		if !ok {
			l.log.Debug().Str("key", key).Msg("lock busy")
			l.rollback(ctx, held)
			return nil, fmt.Errorf("%w: %s", ErrNotAcquired, key)
		}
		held = append(held, heldKey{key: key, token: token})
	}

	return func(ctx context.Context) error {
		return l.release(ctx, held)
	}, nil
}

func (l *RedisLocker) rollback(ctx context.Context, held []heldKey) {
	if err := l.release(ctx, held); err != nil {
		l.log.Warn().Err(err).Msg("lock rollback failed")
	}
}

func (l *RedisLocker) release(ctx context.Context, held []heldKey) error {
	var errs []error
	for i := len(held) - 1; i >= 0; i-- {
		h := held[i]
		n, err := unlockScript.Run(ctx, l.client, []string{h.key}, h.token).Int()
		if err != nil {
			errs = append(errs, fmt.Errorf("redis unlock %s: %w", h.key, err))
			continue
		}
		if n == 0 {
			// истёк TTL или ключ перехвачен
			l.log.Warn().Str("key", h.key).Msg("lock already released")
		}
	}
	return errors.Join(errs...)
}

// LocalLocker — блокировки в памяти процесса, когда redis не настроен.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

func (l *LocalLocker) Acquire(_ context.Context, keys ...string) (Release, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, key := range keys {
		if _, busy := l.held[key]; busy {
			return nil, fmt.Errorf("%w: %s", ErrNotAcquired, key)
		}
	}
	for _, key := range keys {
		l.held[key] = struct{}{}
	}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i := len(keys) - 1; i >= 0; i-- {
			delete(l.held, keys[i])
		}
		return nil
	}, nil
}
