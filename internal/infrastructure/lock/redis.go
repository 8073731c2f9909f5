package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultLease bounds how long a crashed holder can block waiters.
	DefaultLease = 10 * time.Second

	retryInterval = 20 * time.Millisecond
)

// compare-and-delete so an expired holder cannot release a successor's token
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisSemaphore — lease-based binary semaphore on a single redis key.
// SET NX PX takes the token; waiters poll until the key is free or the
// lease expires.
type RedisSemaphore struct {
	rdb   *redis.Client
	key   string
	lease time.Duration
}

func NewRedisSemaphore(rdb *redis.Client, key string, lease time.Duration) *RedisSemaphore {
	if lease <= 0 {
		lease = DefaultLease
	}
	return &RedisSemaphore{rdb: rdb, key: key, lease: lease}
}

func (s *RedisSemaphore) Acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	for {
		ok, err := s.rdb.SetNX(ctx, s.key, token, s.lease).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			var once sync.Once
			return func() {
				once.Do(func() {
					releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
					defer cancel()
					releaseScript.Run(releaseCtx, s.rdb, []string{s.key}, token)
				})
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

// RedisProvider builds lease-keyed semaphores on a shared client.
type RedisProvider struct {
	rdb   *redis.Client
	lease time.Duration
}

func NewRedisProvider(rdb *redis.Client, lease time.Duration) *RedisProvider {
	return &RedisProvider{rdb: rdb, lease: lease}
}

func (p *RedisProvider) Selection() Semaphore {
	return NewRedisSemaphore(p.rdb, selectionKey, p.lease)
}

func (p *RedisProvider) Join(room string) Semaphore {
	return NewRedisSemaphore(p.rdb, joinKey(room), p.lease)
}
