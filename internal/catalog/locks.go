package catalog

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/arielhotels/roomstock/internal/redisx"
)

// PassLocker serializes sync passes across processes so the periodic daemon
// and an admin-triggered pass never mutate the mirror concurrently.
type PassLocker interface {
	Acquire(ctx context.Context) (release func(), ok bool, err error)
}

type RedisPassLock struct{ RDB *redis.Client }

func (l *RedisPassLock) Acquire(ctx context.Context) (func(), bool, error) {
	lock, ok, err := redisx.Acquire(ctx, l.RDB, redisx.KeyCatalogSyncLock, redisx.TTLSyncLock)
	if err != nil || !ok {
		return nil, ok, err
	}
	return func() { lock.Release(context.Background()) }, true, nil
}
