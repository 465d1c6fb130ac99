package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/DRSN-tech/catalog-api/internal/cfg"
	"github.com/DRSN-tech/catalog-api/internal/repository/redis/converter"
	"github.com/DRSN-tech/catalog-api/pkg/e"
	"github.com/DRSN-tech/catalog-api/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

const categoryKeyPrefix = "category:"

type CategoryCache struct {
	client *r.Client
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCategoryCache(client *r.Client, cfg *cfg.RedisCfg, logger logger.Logger) *CategoryCache {
	return &CategoryCache{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Get возвращает id категории по имени или e.ErrCacheMiss
func (c *CategoryCache) Get(ctx context.Context, name string) (int64, error) {
	key := categoryKey(name)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return 0, e.ErrCacheMiss
		}
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	var model converter.CategoryRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		c.drop(ctx, key)
		return 0, e.ErrCacheMiss
	}

	if model.Name != name || model.ID <= 0 {
		c.logger.Warnf("Cache entry mismatch: key_name: %q, model_name: %q, model_id: %d", name, model.Name, model.ID)
		c.drop(ctx, key)
		return 0, e.ErrCacheMiss
	}

	return model.ID, nil
}

// Set кэширует категорию с TTL из конфигурации. Нулевой TTL означает запись без срока жизни.
func (c *CategoryCache) Set(ctx context.Context, name string, id int64) error {
	data, err := json.Marshal(converter.NewCategoryRedisModel(id, name))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.Set(ctx, categoryKey(name), data, c.cfg.CategoryTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CategoryCache) drop(ctx context.Context, key string) {
	if err := c.client.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
		c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}
}

// categoryKey возвращает Redis-ключ категории; имена чувствительны к регистру
func categoryKey(name string) string {
	return categoryKeyPrefix + name
}
