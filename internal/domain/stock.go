package domain

import (
	"fmt"
	"time"
)

// SKU one physical unit of a product. Available flips to false exactly once, when
// the unit ships with an order.
type SKU struct {
	SKUID         string    `json:"skuID" bson:"_id"`
	ProductID     string    `json:"pID" bson:"productId"`
	Available     bool      `json:"status" bson:"status"`
	LinkedOrderID string    `json:"OID,omitempty" bson:"linkedOrderId,omitempty"`
	Comment       string    `json:"comment" bson:"comment"`
	CreatedAt     time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updatedAt"`
}

// Consume marks the unit sold to orderID
func (s *SKU) Consume(orderID string) error {
	if !s.Available {
		return fmt.Errorf("%w: %s already linked to %s", ErrSKUUnavailable, s.SKUID, s.LinkedOrderID)
	}
	s.Available = false
	s.LinkedOrderID = orderID
	return nil
}

// Release puts a consumed unit back on the shelf
func (s *SKU) Release() {
	s.Available = true
	s.LinkedOrderID = ""
}

// StockSummary counters derived from a product's SKU list
type StockSummary struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Sold      int `json:"sold"`
}

// Summarize counts units; sold is total minus available
func Summarize(units []SKU) StockSummary {
	s := StockSummary{Total: len(units)}
	for _, u := range units {
		if u.Available {
			s.Available++
		}
	}
	s.Sold = s.Total - s.Available
	return s
}
