package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DRSN-tech/wardrobe-backend/internal/cfg"
	"github.com/DRSN-tech/wardrobe-backend/internal/domain"
	"github.com/DRSN-tech/wardrobe-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/wardrobe-backend/pkg/clients"
	"github.com/DRSN-tech/wardrobe-backend/pkg/e"
	"github.com/DRSN-tech/wardrobe-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/redis/go-redis/v9"
)

// CacheRepo кэширует гардероб владельца целиком одним JSON-значением.
type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.WardrobeItemConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.WardrobeItemConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetItems возвращает закэшированный гардероб владельца.
// Второй результат — попадание; битое значение считается промахом и удаляется.
func (r *CacheRepo) GetItems(ctx context.Context, ownerID string) ([]domain.WardrobeItem, bool, error) {
	key := r.wardrobeKey(ownerID)

	data, err := r.client.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil // cache miss
		}

		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}

	var models []converter.ItemRedisModel
	if err := json.Unmarshal(data, &models); err != nil {
		r.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		if err := r.client.Client.Del(context.Background(), key).Err(); err != nil {
			r.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
		}

		return nil, false, nil
	}

	return r.conv.ToArrEntity(models), true, nil
}

// SetItems кэширует гардероб владельца с заданным TTL.
func (r *CacheRepo) SetItems(ctx context.Context, ownerID string, items []domain.WardrobeItem) error {
	models := r.conv.ToArrRedisModel(items)

	data, err := json.Marshal(models)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := r.client.Client.Set(ctx, r.wardrobeKey(ownerID), data, r.cfg.WardrobeTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// DeleteItems убирает гардероб владельца из кэша. Ошибки не фатальны.
func (r *CacheRepo) DeleteItems(ctx context.Context, ownerID string) error {
	if err := r.client.Client.Del(ctx, r.wardrobeKey(ownerID)).Err(); err != nil {
		r.logger.Warnf("Redis DEL failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// wardrobeKey возвращает Redis-ключ гардероба владельца
func (r *CacheRepo) wardrobeKey(ownerID string) string {
	return fmt.Sprintf("wardrobe:%s", ownerID)
}
