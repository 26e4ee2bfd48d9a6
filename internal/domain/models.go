package domain

import "time"

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// OrderMode distinguishes web orders from counter sales
type OrderMode string

const (
	OrderModeOnline  OrderMode = "Online"
	OrderModeOffline OrderMode = "Offline"
)

// PaymentMethod how the customer pays
type PaymentMethod string

const (
	PaymentMethodCOD   PaymentMethod = "COD"
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodCard  PaymentMethod = "card"
	PaymentMethodBKash PaymentMethod = "bkash"
	PaymentMethodNagad PaymentMethod = "nagad"
)

// PaymentStatus settlement state of an order's payment
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
)

// Payment method and settlement of an order
type Payment struct {
	Method PaymentMethod `json:"method" bson:"method"`
	Status PaymentStatus `json:"status" bson:"status"`
}

// ShippingAddress recipient of an order
type ShippingAddress struct {
	RecipientName string `json:"recipient_name" bson:"recipientName"`
	Phone         string `json:"phone" bson:"phone"`
	AddressLine1  string `json:"address_line1" bson:"addressLine1"`
	Email         string `json:"email,omitempty" bson:"email,omitempty"`
}

// OrderItem one product line of an order. SKUID stays empty until the order ships.
type OrderItem struct {
	ProductID   string  `json:"product_id" bson:"productId"`
	ProductName string  `json:"product_name" bson:"productName"`
	UnitPrice   float64 `json:"product_price" bson:"unitPrice"`
	Quantity    int64   `json:"quantity" bson:"quantity"`
	Comment     string  `json:"product_comments,omitempty" bson:"comment,omitempty"`
	SKUID       string  `json:"skuID,omitempty" bson:"skuId,omitempty"`
}

// Order aggregate. Subtotal and TotalAmount are derived: they are only written by
// Recalculate, which every mutating method calls.
type Order struct {
	ID              string          `json:"order_id" bson:"_id"`
	CustomerID      string          `json:"customer_id,omitempty" bson:"customerId,omitempty"`
	OrderDate       time.Time       `json:"order_date" bson:"orderDate"`
	Status          OrderStatus     `json:"status" bson:"status"`
	Mode            OrderMode       `json:"mode" bson:"mode"`
	Items           []OrderItem     `json:"items" bson:"items"`
	Subtotal        float64         `json:"subtotal" bson:"subtotal"`
	ShippingCost    float64         `json:"shipping_cost" bson:"shippingCost"`
	Discount        float64         `json:"discount" bson:"discount"`
	TotalAmount     float64         `json:"total_amount" bson:"totalAmount"`
	Payment         Payment         `json:"payment" bson:"payment"`
	ShippingAddress ShippingAddress `json:"shipping_address" bson:"shippingAddress"`
	CreatedAt       time.Time       `json:"created_at" bson:"createdAt"`
	UpdatedAt       time.Time       `json:"updated_at" bson:"updatedAt"`
}

// Clone returns a deep copy so callers never share the items slice
func (o Order) Clone() Order {
	cp := o
	cp.Items = append([]OrderItem(nil), o.Items...)
	return cp
}
