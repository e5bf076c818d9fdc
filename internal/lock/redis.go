package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/controlpanel/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "controlpanel:show-lock:"

// releaseScript deletes the lock only if it still holds our token, so an
// expired lock that was re-acquired by someone else is left alone.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// RedisLocker serializes writers of one show across processes.
//
// The lock is a plain SET NX PX with a random owner token. TTL bounds how
// long a crashed holder can block the show. Wait is how long Lock polls
// before giving up with repository.ErrLocked.
type RedisLocker struct {
	client *redis.Client
	logger *zap.Logger

	TTL  time.Duration
	Wait time.Duration
	Poll time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{
		client: client,
		logger: logger,
		TTL:    ttl,
		Wait:   2 * time.Second,
		Poll:   50 * time.Millisecond,
	}
}

// NewRedisClient parses a redis:// URL. It does not connect; call Ping to
// check the server is reachable.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func Key(showToken string) string {
	return keyPrefix + showToken
}

func (l *RedisLocker) Lock(ctx context.Context, showToken string) (func(), error) {
	key := Key(showToken)
	owner := uuid.NewString()
	deadline := time.Now().Add(l.Wait)

	for {
		ok, err := l.client.SetNX(ctx, key, owner, l.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if ok {
			return l.unlockFunc(key, owner), nil
		}
		if !time.Now().Before(deadline) {
			return nil, repository.ErrLocked
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.Poll):
		}
	}
}

func (l *RedisLocker) unlockFunc(key, owner string) func() {
	return func() {
		// The caller's ctx may already be cancelled; release must still run.
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := releaseScript.Run(ctx, l.client, []string{key}, owner).Err(); err != nil {
			l.logger.Warn("failed to release show lock",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
}
