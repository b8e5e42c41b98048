package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Кеш доступности слотов. Живет не дольше нескольких секунд: допустимое
// окно устаревания чтения, корректность бронирования обеспечивает
// повторная проверка в сериализуемой транзакции.
const DefaultTTL = 2 * time.Second

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// Cache Redis-кеш ответов калькулятора доступности
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log Logger
}

// New создает кеш с указанным TTL (0 = DefaultTTL)
func New(rdb *redis.Client, ttl time.Duration, log Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{rdb: rdb, ttl: ttl, log: log}
}

// Key строит ключ кеша для пары (порт, дата)
func Key(portID int64, date string) string {
	return fmt.Sprintf("slots:%d:%s", portID, date)
}

// Get читает закешированное значение в dest.
// Промах кеша и ошибки Redis неразличимы для вызывающего: и то и другое - miss.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("availability cache: get %s failed: %v", key, err)
		}
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.Warn("availability cache: unmarshal %s failed: %v", key, err)
		return false
	}

	return true
}

// Set кладет значение в кеш. Ошибка записи не фатальна - кеш best effort.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("availability cache: marshal %s failed: %v", key, err)
		return
	}

	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("availability cache: set %s failed: %v", key, err)
	}
}

// Invalidate удаляет ключ. Вызывается после успешного бронирования или
// отмены, чтобы следующий запрос доступности увидел свежие данные.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		c.log.Warn("availability cache: invalidate %s failed: %v", key, err)
	}
}
