package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"backoffice/internal/domain"
	"backoffice/internal/events"
	"backoffice/internal/logger"
	"backoffice/internal/metrics"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidState = domain.ErrInvalidState
)

type options struct {
	log        logger.Logger
	publisher  events.Publisher
	metrics    *metrics.Metrics
	now        func() time.Time
	newOrderID func(now time.Time) string
	settle     bool
	bcryptCost int
	lowStock   int
}

// Option настраивает сервис
type Option func(*options)

func defaultOptions() options {
	return options{
		log:        logger.NewNop(),
		now:        func() time.Time { return time.Now().UTC() },
		newOrderID: NewOrderID,
		settle:     true,
		bcryptCost: bcrypt.DefaultCost,
		lowStock:   5,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.publisher == nil {
		o.publisher = events.NewLogPublisher(o.log)
	}
	return o
}

func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithPublisher(p events.Publisher) Option {
	return func(o *options) { o.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock подменяет источник времени (тесты)
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithOrderIDGenerator подменяет генератор номеров заказов
func WithOrderIDGenerator(gen func(now time.Time) string) Option {
	return func(o *options) { o.newOrderID = gen }
}

// WithSettlePaymentOnCompletion включает перевод оплаты в Paid при завершении заказа
func WithSettlePaymentOnCompletion(v bool) Option {
	return func(o *options) { o.settle = v }
}

func WithBcryptCost(cost int) Option {
	return func(o *options) { o.bcryptCost = cost }
}

// WithLowStockThreshold порог «критического» остатка для дашборда
func WithLowStockThreshold(n int) Option {
	return func(o *options) { o.lowStock = n }
}

// publish отправляет событие; ошибка только логируется
func (o *options) publish(ctx context.Context, ev events.OrderEvent) {
	if err := o.publisher.PublishOrderEvent(ctx, ev); err != nil {
		o.metrics.EventPublishFailed()
		o.log.Warnf(ctx, "[Events] publish %s %s->%s failed: %v", ev.OrderID, ev.From, ev.To, err)
	}
}
