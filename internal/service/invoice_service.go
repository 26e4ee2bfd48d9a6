package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain"
	"backoffice/internal/repository"
)

const (
	invoiceNoSKU   = "N/A"
	invoiceNoEmail = "Not Provided"
)

// InvoiceService собирает документ счёта по заказу
type InvoiceService struct {
	orders repository.OrderRepository
}

func NewInvoiceService(orders repository.OrderRepository) *InvoiceService {
	return &InvoiceService{orders: orders}
}

// BillTo получатель счёта
type BillTo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Email   string `json:"email"`
}

// InvoiceLine строка счёта; суммы хранятся строками с двумя знаками после запятой
type InvoiceLine struct {
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

// Invoice документ счёта
type Invoice struct {
	OrderID       string        `json:"order_id"`
	Date          string        `json:"date"`
	Status        string        `json:"status"`
	PaymentMethod string        `json:"payment_method"`
	PaymentStatus string        `json:"payment_status"`
	BillTo        BillTo        `json:"bill_to"`
	Lines         []InvoiceLine `json:"lines"`
	Subtotal      string        `json:"subtotal"`
	DeliveryFee   string        `json:"delivery_fee"`
	Discount      string        `json:"discount"`
	Total         string        `json:"total"`
}

func money(v decimal.Decimal) string {
	return v.StringFixed(2)
}

// Build формирует счёт. Суммы пересчитываются в decimal, чтобы строки и итог сходились.
func (s *InvoiceService) Build(ctx context.Context, orderID string) (*Invoice, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, ErrInvalidInput
	}
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return BuildInvoice(o), nil
}

// BuildInvoice чистая функция над заказом
func BuildInvoice(o *domain.Order) *Invoice {
	inv := &Invoice{
		OrderID:       o.ID,
		Date:          o.OrderDate.Format("2006-01-02"),
		Status:        string(o.Status),
		PaymentMethod: string(o.Payment.Method),
		PaymentStatus: string(o.Payment.Status),
		BillTo: BillTo{
			Name:    o.ShippingAddress.RecipientName,
			Phone:   o.ShippingAddress.Phone,
			Address: o.ShippingAddress.AddressLine1,
			Email:   o.ShippingAddress.Email,
		},
		Lines: make([]InvoiceLine, 0, len(o.Items)),
	}
	if strings.TrimSpace(inv.BillTo.Email) == "" {
		inv.BillTo.Email = invoiceNoEmail
	}

	subtotal := decimal.Zero
	for _, it := range o.Items {
		price := decimal.NewFromFloat(it.UnitPrice)
		line := price.Mul(decimal.NewFromInt(it.Quantity))
		subtotal = subtotal.Add(line)
		sku := it.SKUID
		if sku == "" {
			sku = invoiceNoSKU
		}
		inv.Lines = append(inv.Lines, InvoiceLine{
			Name:      it.ProductName,
			SKU:       sku,
			Quantity:  it.Quantity,
			UnitPrice: money(price),
			LineTotal: money(line),
		})
	}
	shipping := decimal.NewFromFloat(o.ShippingCost)
	discount := decimal.NewFromFloat(o.Discount)
	inv.Subtotal = money(subtotal)
	inv.DeliveryFee = money(shipping)
	inv.Discount = money(discount)
	inv.Total = money(subtotal.Add(shipping).Sub(discount))
	return inv
}
