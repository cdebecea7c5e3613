package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Lock is a best-effort mutex on a single redis key (SET NX + owner token).
// Release only deletes the key if this holder still owns it.
type Lock struct {
	rdb   *redis.Client
	key   string
	token string
}

var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
end
return 0
`)

// Acquire returns (nil, false, nil) when the lock is already held.
func Acquire(ctx context.Context, rdb *redis.Client, key string, ttl time.Duration) (*Lock, bool, error) {
	token := uuid.NewString()
	ok, err := rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &Lock{rdb: rdb, key: key, token: token}, true, nil
}

func (l *Lock) Release(ctx context.Context) {
	_ = unlockScript.Run(ctx, l.rdb, []string{l.key}, l.token).Err()
}
