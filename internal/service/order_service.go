package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"backoffice/internal/domain"
	"backoffice/internal/events"
	"backoffice/internal/logger"
	"backoffice/internal/repository"
)

const orderIDAttempts = 3

// OrderService ведёт заказ по цепочке выполнения и списывает SKU при отгрузке
type OrderService struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	stock    repository.StockRepository
	tx       repository.TxManager
	opts     options
}

func NewOrderService(products repository.ProductRepository, orders repository.OrderRepository, stock repository.StockRepository, tx repository.TxManager, opts ...Option) *OrderService {
	return &OrderService{products: products, orders: orders, stock: stock, tx: tx, opts: buildOptions(opts)}
}

// NewOrderID формирует номер вида OID + yy + 5 последних цифр unix-миллисекунд + 5 случайных цифр
func NewOrderID(now time.Time) string {
	return fmt.Sprintf("OID%02d%05d%05d", now.Year()%100, now.UnixMilli()%100000, rand.Intn(100000))
}

// CreateOrderInput данные нового заказа
type CreateOrderInput struct {
	// OrderID может прийти от клиента; если пусто, сгенерируем
	OrderID         string
	CustomerID      string
	Mode            domain.OrderMode
	Items           []LineInput
	ShippingCost    float64
	Discount        float64
	Payment         domain.Payment
	ShippingAddress domain.ShippingAddress
}

// ReviseInput замена позиций и корректировок заказа в статусе Pending
type ReviseInput struct {
	Items        []LineInput
	ShippingCost float64
	Discount     float64
}

// OrderUpdate изменение заказа: переход статуса и/или статуса оплаты
type OrderUpdate struct {
	Status        domain.OrderStatus
	Assignments   []domain.SKUAssignment
	PaymentStatus domain.PaymentStatus
}

// NextAction что можно сделать с заказом дальше
type NextAction struct {
	OrderID   string             `json:"order_id"`
	Current   domain.OrderStatus `json:"current"`
	Next      domain.OrderStatus `json:"next,omitempty"`
	Terminal  bool               `json:"terminal"`
	CanCancel bool               `json:"can_cancel"`
	// NeedsSKUs переход в Shipped требует SKU на каждую позицию
	NeedsSKUs bool `json:"needs_skus"`
}

func validateAddress(a domain.ShippingAddress) error {
	if strings.TrimSpace(a.RecipientName) == "" || strings.TrimSpace(a.Phone) == "" || strings.TrimSpace(a.AddressLine1) == "" {
		return fmt.Errorf("%w: recipient name, phone and address are required", ErrInvalidInput)
	}
	return nil
}

func normalizePayment(p domain.Payment) (domain.Payment, error) {
	if p.Method == "" {
		p.Method = domain.PaymentMethodCOD
	}
	if p.Status == "" {
		p.Status = domain.PaymentStatusPending
	}
	if !domain.ValidPaymentMethod(p.Method) {
		return p, fmt.Errorf("%w: method %q", domain.ErrInvalidPayment, p.Method)
	}
	if p.Status != domain.PaymentStatusPending && p.Status != domain.PaymentStatusPaid {
		return p, fmt.Errorf("%w: status %q", domain.ErrInvalidPayment, p.Status)
	}
	return p, nil
}

// LineInput позиция заказа от клиента. UnitPrice nil означает цену из каталога;
// явный 0 сохраняется как бесплатная позиция.
type LineInput struct {
	ProductID   string
	ProductName string
	UnitPrice   *float64
	Quantity    int64
	Comment     string
}

// priceItems подставляет название и цену из каталога, если клиент их не прислал
func (s *OrderService) priceItems(ctx context.Context, lines []LineInput) ([]domain.OrderItem, error) {
	out := make([]domain.OrderItem, len(lines))
	for i, ln := range lines {
		it := domain.OrderItem{
			ProductID:   strings.TrimSpace(ln.ProductID),
			ProductName: ln.ProductName,
			Quantity:    ln.Quantity,
			Comment:     ln.Comment,
		}
		if ln.UnitPrice != nil {
			it.UnitPrice = *ln.UnitPrice
		}
		if err := domain.ValidateItem(it); err != nil {
			return nil, err
		}
		p, err := s.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", it.ProductID, err)
		}
		if it.ProductName == "" {
			it.ProductName = p.Name
		}
		if ln.UnitPrice == nil {
			it.UnitPrice = p.Price.Effective()
		}
		out[i] = it
	}
	return out, nil
}

// CreateOrder создаёт заказ в статусе Pending
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if err := validateAddress(in.ShippingAddress); err != nil {
		return nil, err
	}
	payment, err := normalizePayment(in.Payment)
	if err != nil {
		return nil, err
	}
	mode := in.Mode
	if mode == "" {
		mode = domain.OrderModeOnline
	}
	if mode != domain.OrderModeOnline && mode != domain.OrderModeOffline {
		return nil, fmt.Errorf("%w: mode %q", ErrInvalidInput, mode)
	}
	if len(in.Items) == 0 {
		return nil, domain.ErrNoItems
	}

	var created *domain.Order
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		items, err := s.priceItems(ctx, in.Items)
		if err != nil {
			return err
		}
		now := s.opts.now()
		for attempt := 0; ; attempt++ {
			id := strings.TrimSpace(in.OrderID)
			if id == "" {
				id = s.opts.newOrderID(now)
			}
			o, err := domain.NewOrder(id, items, in.ShippingCost, in.Discount)
			if err != nil {
				return err
			}
			o.CustomerID = in.CustomerID
			o.Mode = mode
			o.Payment = payment
			o.ShippingAddress = in.ShippingAddress
			o.OrderDate = now

			err = s.orders.Create(ctx, o)
			if errors.Is(err, repository.ErrAlreadyExists) && in.OrderID == "" && attempt+1 < orderIDAttempts {
				continue
			}
			if err != nil {
				return err
			}
			created = o
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	s.opts.log.Infof(logger.WithOrderID(ctx, created.ID), "[Orders] created, %d items, total %.2f", len(created.Items), created.TotalAmount)
	return created, nil
}

// GetOrder возвращает заказ по id
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.orders.GetByID(ctx, id)
}

// ListOrders возвращает заказы, новые первыми
func (s *OrderService) ListOrders(ctx context.Context, f repository.OrderFilter) ([]domain.Order, error) {
	return s.orders.List(ctx, f)
}

// NextAction подсказывает следующий шаг для заказа
func (s *OrderService) NextAction(ctx context.Context, id string) (*NextAction, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	na := &NextAction{OrderID: o.ID, Current: o.Status, Terminal: o.Status.Terminal()}
	if next, ok := domain.NextStatus(o.Status); ok {
		na.Next = next
		na.CanCancel = true
		na.NeedsSKUs = next == domain.OrderStatusShipped
	}
	return na, nil
}

// ReviseOrder заменяет позиции, доставку и скидку у заказа в статусе Pending
func (s *OrderService) ReviseOrder(ctx context.Context, id string, in ReviseInput) (*domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	if len(in.Items) == 0 {
		return nil, domain.ErrNoItems
	}
	var updated *domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		items, err := s.priceItems(ctx, in.Items)
		if err != nil {
			return err
		}
		if err := o.Revise(items, in.ShippingCost, in.Discount); err != nil {
			return err
		}
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateOrder применяет переход статуса и/или статус оплаты в одной транзакции.
// Все проверки выполняются до первой записи.
func (s *OrderService) UpdateOrder(ctx context.Context, id string, upd OrderUpdate) (*domain.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidInput
	}
	if upd.Status == "" && upd.PaymentStatus == "" {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if upd.Status != "" {
		if _, ok := domain.ParseOrderStatus(string(upd.Status)); !ok {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, upd.Status)
		}
	}
	ctx = logger.WithOrderID(ctx, id)

	var (
		updated *domain.Order
		from    domain.OrderStatus
		touched []string
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		from = o.Status

		var units []domain.SKU
		if upd.Status != "" {
			if !domain.CanTransition(o.Status, upd.Status) {
				return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, o.Status, upd.Status)
			}
			switch upd.Status {
			case domain.OrderStatusConfirmed:
				err = o.Confirm()
			case domain.OrderStatusShipped:
				units, err = s.ship(ctx, o, upd.Assignments)
			case domain.OrderStatusDelivered:
				err = o.Deliver()
			case domain.OrderStatusCompleted:
				err = o.Complete(s.opts.settle)
			case domain.OrderStatusCancelled:
				units, err = s.cancel(ctx, o)
			}
			if err != nil {
				return err
			}
		}
		if upd.PaymentStatus != "" {
			if err := o.SetPaymentStatus(upd.PaymentStatus); err != nil {
				return err
			}
		}

		for i := range units {
			if err := s.stock.Update(ctx, &units[i]); err != nil {
				return err
			}
			touched = append(touched, units[i].SKUID)
		}
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if updated.Status != from {
		s.opts.metrics.OrderTransition(string(from), string(updated.Status))
		s.opts.log.Infof(ctx, "[Orders] %s -> %s", from, updated.Status)
		s.opts.publish(ctx, events.OrderEvent{
			OrderID: updated.ID,
			From:    from,
			To:      updated.Status,
			SKUs:    touched,
			At:      s.opts.now(),
		})
	}
	return updated, nil
}

// ship проверяет каждую SKU (существует, от того же товара, свободна) и только потом
// помечает их проданными. Возвращает изменённые единицы для записи.
func (s *OrderService) ship(ctx context.Context, o *domain.Order, assignments []domain.SKUAssignment) ([]domain.SKU, error) {
	skuIDs, err := o.ResolveSKUs(assignments)
	if err != nil {
		return nil, err
	}
	units := make([]domain.SKU, len(skuIDs))
	for i, skuID := range skuIDs {
		u, err := s.stock.GetBySKU(ctx, skuID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s is not in stock", domain.ErrSKUUnavailable, skuID)
		}
		if err != nil {
			return nil, err
		}
		if u.ProductID != o.Items[i].ProductID {
			return nil, fmt.Errorf("%w: %s belongs to %s, not %s", domain.ErrSKUMismatch, skuID, u.ProductID, o.Items[i].ProductID)
		}
		if err := u.Consume(o.ID); err != nil {
			return nil, err
		}
		units[i] = *u
	}
	if err := o.Ship(skuIDs); err != nil {
		return nil, err
	}
	return units, nil
}

// cancel возвращает на склад все SKU, привязанные к заказу
func (s *OrderService) cancel(ctx context.Context, o *domain.Order) ([]domain.SKU, error) {
	if _, err := o.Cancel(); err != nil {
		return nil, err
	}
	linked, err := s.stock.ListByOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	for i := range linked {
		linked[i].Release()
	}
	return linked, nil
}
