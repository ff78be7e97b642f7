package expiry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"parkly/internal/pkg/errs"
)

const lockKey = "lock:parkly:expiry-sweep"

// releaseScript deletes the key only while it still holds our token.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// Locker lets a single replica run a sweep tick.
type Locker interface {
	Acquire(ctx context.Context) (release func(context.Context), ok bool, err error)
}

// RedisLocker takes a SET NX lease on a fixed key.
type RedisLocker struct {
	client   *redis.Client
	ttl      time.Duration
	log      *zap.Logger
	newToken func() string
}

func NewRedisLocker(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, log: log, newToken: uuid.NewString}
}

func (l *RedisLocker) Acquire(ctx context.Context) (func(context.Context), bool, error) {
	token := l.newToken()
	ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
	if err != nil {
		return nil, false, errs.Wrap(err, "acquire sweep lock")
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) {
		n, err := l.client.Eval(ctx, releaseScript, []string{lockKey}, token).Int()
		switch {
		case err != nil:
			l.log.Warn("release sweep lock failed", zap.Error(err))
		case n == 0:
			l.log.Warn("sweep lock expired before release", zap.Duration("ttl", l.ttl))
		}
	}
	return release, true, nil
}
