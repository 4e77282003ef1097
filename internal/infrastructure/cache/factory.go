package cache

import (
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewIdempotencyStore returns a Redis backed store when a client is
// available and an in-memory one otherwise. Event handler marks and
// confirm-wizard Idempotency-Key marks use separate prefixes.
func NewIdempotencyStore(client redis.UniversalClient, keyPrefix string, logger *zap.Logger) shared.IdempotencyStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client != nil {
		logger.Info("Using Redis idempotency store", zap.String("prefix", keyPrefix))
		return NewRedisIdempotencyStore(client, keyPrefix)
	}
	logger.Warn("Redis not configured, using in-memory idempotency store. "+
		"Duplicates are only detected within this instance.",
		zap.String("prefix", keyPrefix),
	)
	return NewInMemoryIdempotencyStore(0)
}
