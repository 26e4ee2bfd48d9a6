package domain

import (
	"fmt"
	"strings"
)

// fulfillment chain; Cancelled is reachable from every non-terminal state separately
var nextStatus = map[OrderStatus]OrderStatus{
	OrderStatusPending:   OrderStatusConfirmed,
	OrderStatusConfirmed: OrderStatusShipped,
	OrderStatusShipped:   OrderStatusDelivered,
	OrderStatusDelivered: OrderStatusCompleted,
}

// ParseOrderStatus accepts the exact status labels
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(strings.TrimSpace(s))
	switch st {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCompleted, OrderStatusCancelled:
		return st, true
	}
	return "", false
}

// Terminal reports whether no further transition exists
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// NextStatus returns the single status offered after current, false for terminal states
func NextStatus(current OrderStatus) (OrderStatus, bool) {
	next, ok := nextStatus[current]
	return next, ok
}

// CanTransition reports whether from -> to is legal. Besides the chain, a Shipped
// order may be completed directly: the dashboard records delivery and completion
// in one update.
func CanTransition(from, to OrderStatus) bool {
	if to == OrderStatusCancelled {
		_, ok := nextStatus[from]
		return ok
	}
	if from == OrderStatusShipped && to == OrderStatusCompleted {
		return true
	}
	next, ok := nextStatus[from]
	return ok && next == to
}

func (o *Order) advance(to OrderStatus) error {
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}
	o.Status = to
	return nil
}

// Confirm moves Pending -> Confirmed
func (o *Order) Confirm() error {
	return o.advance(OrderStatusConfirmed)
}

// SKUAssignment pairs a product line with the physical unit shipped for it
type SKUAssignment struct {
	ProductID string `json:"product_id"`
	SKUID     string `json:"skuID"`
}

// ResolveSKUs maps assignments onto the order lines, in line order. Blank SKUs are
// dropped first; every line must then receive exactly one SKU, otherwise the whole
// assignment fails with ErrMissingSKU. The order is not modified.
func (o *Order) ResolveSKUs(assignments []SKUAssignment) ([]string, error) {
	queues := make(map[string][]string)
	seen := make(map[string]bool)
	for _, a := range assignments {
		sku := strings.TrimSpace(a.SKUID)
		if sku == "" {
			continue
		}
		if seen[sku] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSKU, sku)
		}
		seen[sku] = true
		pid := strings.TrimSpace(a.ProductID)
		queues[pid] = append(queues[pid], sku)
	}

	out := make([]string, len(o.Items))
	for i, it := range o.Items {
		q := queues[it.ProductID]
		if len(q) == 0 {
			return nil, fmt.Errorf("%w: product %s", ErrMissingSKU, it.ProductID)
		}
		out[i] = q[0]
		queues[it.ProductID] = q[1:]
	}
	for pid, q := range queues {
		if len(q) > 0 {
			return nil, fmt.Errorf("%w: SKU %s assigned to product %s which has no open line", ErrInvalidItem, q[0], pid)
		}
	}
	return out, nil
}

// Ship moves Confirmed -> Shipped and stamps each line with its SKU.
// skuIDs must come from ResolveSKUs.
func (o *Order) Ship(skuIDs []string) error {
	if !CanTransition(o.Status, OrderStatusShipped) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, OrderStatusShipped)
	}
	if len(skuIDs) != len(o.Items) {
		return ErrMissingSKU
	}
	for _, id := range skuIDs {
		if strings.TrimSpace(id) == "" {
			return ErrMissingSKU
		}
	}
	for i := range o.Items {
		o.Items[i].SKUID = skuIDs[i]
	}
	o.Status = OrderStatusShipped
	return nil
}

// Deliver moves Shipped -> Delivered
func (o *Order) Deliver() error {
	return o.advance(OrderStatusDelivered)
}

// Complete moves Delivered or Shipped -> Completed. settlePayment marks the payment Paid in the
// same step (cash collected at the door).
func (o *Order) Complete(settlePayment bool) error {
	if err := o.advance(OrderStatusCompleted); err != nil {
		return err
	}
	if settlePayment {
		o.Payment.Status = PaymentStatusPaid
	}
	return nil
}

// Cancel moves any non-terminal order to Cancelled, clears the line SKUs and
// returns the SKUs that were attached so the caller can release them.
func (o *Order) Cancel() ([]string, error) {
	if err := o.advance(OrderStatusCancelled); err != nil {
		return nil, err
	}
	var released []string
	for i := range o.Items {
		if o.Items[i].SKUID != "" {
			released = append(released, o.Items[i].SKUID)
			o.Items[i].SKUID = ""
		}
	}
	return released, nil
}

// SetPaymentStatus updates settlement independently of the order status
func (o *Order) SetPaymentStatus(ps PaymentStatus) error {
	if ps != PaymentStatusPending && ps != PaymentStatusPaid {
		return fmt.Errorf("%w: status %q", ErrInvalidPayment, ps)
	}
	if o.Status == OrderStatusCancelled {
		return fmt.Errorf("%w: order is cancelled", ErrInvalidState)
	}
	o.Payment.Status = ps
	return nil
}

// ValidPaymentMethod reports whether m is one of the accepted methods
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodCash, PaymentMethodCard, PaymentMethodBKash, PaymentMethodNagad:
		return true
	}
	return false
}
