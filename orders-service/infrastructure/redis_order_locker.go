package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/draftea/order-system/orders-service/domain"
	"github.com/draftea/order-system/shared/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ domain.OrderLocker = (*RedisOrderLocker)(nil)

const (
	lockKeyPrefix      = "orders:lock:"
	defaultLockTTL     = 30 * time.Second
	defaultLockWait    = 5 * time.Second
	defaultLockBackoff = 50 * time.Millisecond
)

// releaseScript deletes the lock only while it still holds our token
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// RedisOrderLocker serializes work on an order across service instances
// with a SET NX lease per order.
type RedisOrderLocker struct {
	client  redis.Cmdable
	ttl     time.Duration
	wait    time.Duration
	backoff time.Duration
	token   func() string
	logger  *zap.Logger
}

// NewRedisOrderLocker creates a locker whose leases expire after ttl
func NewRedisOrderLocker(client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *RedisOrderLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisOrderLocker{
		client:  client,
		ttl:     ttl,
		wait:    defaultLockWait,
		backoff: defaultLockBackoff,
		token:   func() string { return uuid.NewString() },
		logger:  logger,
	}
}

func lockKey(orderID models.ID) string {
	return lockKeyPrefix + orderID.String()
}

// Lock blocks until the order lease is taken, ctx is done or the wait elapses
func (l *RedisOrderLocker) Lock(ctx context.Context, orderID models.ID) (domain.ReleaseFunc, error) {
	key := lockKey(orderID)
	token := l.token()
	deadline := time.Now().Add(l.wait)

	for {
		acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, errors.Wrap(err, "failed to acquire order lock")
		}
		if acquired {
			return l.releaser(key, token, orderID), nil
		}

		if time.Now().After(deadline) {
			return nil, domain.NewError(domain.KindUnexpected, fmt.Sprintf("order %s is locked", orderID))
		}

		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "failed to acquire order lock")
		case <-time.After(l.backoff):
		}
	}
}

func (l *RedisOrderLocker) releaser(key, token string, orderID models.ID) domain.ReleaseFunc {
	return func() {
		// released with a fresh context so a cancelled caller still frees the lease
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := l.client.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
			l.logger.Warn("failed to release order lock",
				zap.String("order_id", orderID.String()),
				zap.Error(err),
			)
		}
	}
}
