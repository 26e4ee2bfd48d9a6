package domain

import (
	"fmt"
	"strings"
)

// Subtotal sums unit price times quantity over all items
func Subtotal(items []OrderItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.UnitPrice * float64(it.Quantity)
	}
	return sum
}

// Total is subtotal plus shipping minus discount
func Total(subtotal, shippingCost, discount float64) float64 {
	return subtotal + shippingCost - discount
}

// Recalculate refreshes Subtotal and TotalAmount from the current items and adjustments
func (o *Order) Recalculate() {
	o.Subtotal = Subtotal(o.Items)
	o.TotalAmount = Total(o.Subtotal, o.ShippingCost, o.Discount)
}

// ValidateItem checks a single line before it enters an order
func ValidateItem(it OrderItem) error {
	if strings.TrimSpace(it.ProductID) == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalidItem)
	}
	if it.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidItem)
	}
	if it.UnitPrice < 0 {
		return fmt.Errorf("%w: unit price must not be negative", ErrInvalidItem)
	}
	return nil
}

func checkAmounts(items []OrderItem, shippingCost, discount float64) error {
	if len(items) == 0 {
		return ErrNoItems
	}
	for _, it := range items {
		if err := ValidateItem(it); err != nil {
			return err
		}
	}
	if shippingCost < 0 || discount < 0 {
		return ErrInvalidAmount
	}
	if Total(Subtotal(items), shippingCost, discount) < 0 {
		return ErrNegativeTotal
	}
	return nil
}

// NewOrder builds a Pending order with COD/Pending payment and consistent totals
func NewOrder(id string, items []OrderItem, shippingCost, discount float64) (*Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: order id is required", ErrInvalidItem)
	}
	if err := checkAmounts(items, shippingCost, discount); err != nil {
		return nil, err
	}
	o := &Order{
		ID:           id,
		Status:       OrderStatusPending,
		Mode:         OrderModeOnline,
		Items:        append([]OrderItem(nil), items...),
		ShippingCost: shippingCost,
		Discount:     discount,
		Payment:      Payment{Method: PaymentMethodCOD, Status: PaymentStatusPending},
	}
	for i := range o.Items {
		o.Items[i].SKUID = ""
	}
	o.Recalculate()
	return o, nil
}

// AddItem appends a line and recomputes totals
func (o *Order) AddItem(it OrderItem) error {
	if err := ValidateItem(it); err != nil {
		return err
	}
	o.Items = append(o.Items, it)
	o.Recalculate()
	return nil
}

// RemoveItem drops the line at idx. The last line cannot be removed, and removal
// is refused when the remaining subtotal would not cover the discount.
func (o *Order) RemoveItem(idx int) error {
	if idx < 0 || idx >= len(o.Items) {
		return fmt.Errorf("%w: no line %d", ErrInvalidItem, idx)
	}
	items := make([]OrderItem, 0, len(o.Items)-1)
	items = append(items, o.Items[:idx]...)
	items = append(items, o.Items[idx+1:]...)
	if err := checkAmounts(items, o.ShippingCost, o.Discount); err != nil {
		return err
	}
	o.Items = items
	o.Recalculate()
	return nil
}

// UpdateItem edits quantity and unit price of the line at idx
func (o *Order) UpdateItem(idx int, quantity int64, unitPrice float64) error {
	if idx < 0 || idx >= len(o.Items) {
		return fmt.Errorf("%w: no line %d", ErrInvalidItem, idx)
	}
	items := append([]OrderItem(nil), o.Items...)
	items[idx].Quantity = quantity
	items[idx].UnitPrice = unitPrice
	if err := checkAmounts(items, o.ShippingCost, o.Discount); err != nil {
		return err
	}
	o.Items = items
	o.Recalculate()
	return nil
}

// SetShippingCost changes the delivery fee and recomputes the total
func (o *Order) SetShippingCost(v float64) error {
	if err := checkAmounts(o.Items, v, o.Discount); err != nil {
		return err
	}
	o.ShippingCost = v
	o.Recalculate()
	return nil
}

// SetDiscount changes the discount and recomputes the total
func (o *Order) SetDiscount(v float64) error {
	if err := checkAmounts(o.Items, o.ShippingCost, v); err != nil {
		return err
	}
	o.Discount = v
	o.Recalculate()
	return nil
}

// Revise replaces items and adjustments in one step. Only Pending orders can be revised.
func (o *Order) Revise(items []OrderItem, shippingCost, discount float64) error {
	if o.Status != OrderStatusPending {
		return fmt.Errorf("%w: %s order cannot be revised", ErrInvalidTransition, o.Status)
	}
	if err := checkAmounts(items, shippingCost, discount); err != nil {
		return err
	}
	o.Items = append([]OrderItem(nil), items...)
	for i := range o.Items {
		o.Items[i].SKUID = ""
	}
	o.ShippingCost = shippingCost
	o.Discount = discount
	o.Recalculate()
	return nil
}
