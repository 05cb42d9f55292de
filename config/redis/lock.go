package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrLockNotAcquired is returned when the key stays held for longer than the wait budget.
var ErrLockNotAcquired = errors.New("lock not acquired")

const retryInterval = 25 * time.Millisecond

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out short-lived exclusive locks backed by SET NX PX.
type Locker struct {
	rdb  *redis.Client
	ttl  time.Duration
	wait time.Duration
}

func NewLocker(rdb *redis.Client, ttl, wait time.Duration) *Locker {
	return &Locker{rdb: rdb, ttl: ttl, wait: wait}
}

/*
* Try SET key token NX PX ttl
* Retry every 25ms until the wait budget or ctx runs out
* The release func deletes the key only while it still holds our token
 */
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

func (l *Locker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Error while releasing lock")
	}
}
