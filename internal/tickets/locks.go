package tickets

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/arielhotels/roomstock/internal/redisx"
)

// RoomLocker serializes ticket creation per room so two concurrent creates
// cannot both observe "no open ticket" and both call the POS.
type RoomLocker interface {
	Acquire(ctx context.Context, room string) (release func(), ok bool, err error)
}

type RedisRoomLocks struct{ RDB *redis.Client }

func (l *RedisRoomLocks) Acquire(ctx context.Context, room string) (func(), bool, error) {
	lock, ok, err := redisx.Acquire(ctx, l.RDB, fmt.Sprintf(redisx.KeyRoomLock, room), redisx.TTLRoomLock)
	if err != nil || !ok {
		return nil, ok, err
	}
	return func() { lock.Release(context.Background()) }, true, nil
}
