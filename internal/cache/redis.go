// Package cache реализует хранилище журнала ошибок поверх Redis.
// Журнал лежит в одном ключе как JSON-массив записей и перезаписывается
// целиком при каждом добавлении и очистке.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cardshowhub/subscription-engine/internal/config"
	"github.com/cardshowhub/subscription-engine/internal/models"
)

const errorLogKey = "errorlog:records"

// Cache инкапсулирует клиент Redis.
type Cache struct {
	Db *redis.Client
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// Append добавляет запись в журнал ошибок, обрезая историю до max записей.
// Самые старые записи вытесняются первыми.
func (c *Cache) Append(ctx context.Context, rec models.ErrorRecord, max int) error {
	const op = "cache.Append"

	records, err := c.List(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	records = append(records, rec)
	if max > 0 && len(records) > max {
		records = records[len(records)-max:]
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.Db.Set(ctx, errorLogKey, data, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// List возвращает журнал ошибок от старых записей к новым.
func (c *Cache) List(ctx context.Context) ([]models.ErrorRecord, error) {
	const op = "cache.List"

	val, err := c.Db.Get(ctx, errorLogKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var records []models.ErrorRecord
	if err := json.Unmarshal([]byte(val), &records); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}

// Clear удаляет журнал ошибок.
func (c *Cache) Clear(ctx context.Context) error {
	const op = "cache.Clear"
	if err := c.Db.Del(ctx, errorLogKey).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Healthcheck проверяет доступность Redis с коротким таймаутом.
func (c *Cache) Healthcheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return c.Db.Ping(ctx).Err()
}
