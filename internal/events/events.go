// Package events публикует изменения статуса заказов для внешних подписчиков.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"backoffice/internal/domain"
	"backoffice/internal/logger"
)

// OrderEvent переход заказа из одного статуса в другой
type OrderEvent struct {
	OrderID string             `json:"order_id"`
	From    domain.OrderStatus `json:"from"`
	To      domain.OrderStatus `json:"to"`
	// SKUs затронутые переходом: списанные при отгрузке, возвращённые при отмене
	SKUs []string  `json:"skus,omitempty"`
	At   time.Time `json:"at"`
}

// Publisher доставляет события; ошибка публикации не откатывает операцию
type Publisher interface {
	PublishOrderEvent(ctx context.Context, ev OrderEvent) error
}

// LogPublisher пишет события в лог (используется, когда redis выключен)
type LogPublisher struct {
	log logger.Logger
}

func NewLogPublisher(log logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) PublishOrderEvent(ctx context.Context, ev OrderEvent) error {
	p.log.Infof(ctx, "[Events] order %s: %s -> %s", ev.OrderID, ev.From, ev.To)
	return nil
}

// RedisPublisher публикует события в канал Redis Pub/Sub
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

// NewRedisPublisher подключается к Redis и проверяет соединение
func NewRedisPublisher(ctx context.Context, addr, password string, db int, channel string) (*RedisPublisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &RedisPublisher{rdb: rdb, channel: channel}, nil
}

// NewRedisPublisherWithClient оборачивает готовый клиент
func NewRedisPublisherWithClient(rdb *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) PublishOrderEvent(ctx context.Context, ev OrderEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel, payload).Err()
}

// Close закрывает соединение
func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}
