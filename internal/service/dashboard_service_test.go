package service

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestDashboardSummary(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	f := setup(t, WithClock(clock))

	f.addStock(t, "P1", "SN-1", "SN-2", "SN-3")
	f.addStock(t, "P2", "SN-4")
	o := f.confirmed(t)
	f.update(t, o.ID, shipTo("P1", "SN-1", "P2", "SN-4"))

	// last month's order must not count
	now = time.Date(2025, 5, 31, 23, 0, 0, 0, time.UTC)
	f.createOrder(t)
	now = time.Date(2025, 6, 20, 9, 0, 0, 0, time.UTC)

	admins := NewAdminService(f.store.Admins, f.store.Tx, WithBcryptCost(bcrypt.MinCost))
	inactive := false
	admins.Create(ctx, AdminInput{FullName: "A", UserName: "a", Email: "a@shop.com", Password: "password1"})
	admins.Create(ctx, AdminInput{FullName: "B", UserName: "b", Email: "b@shop.com", Password: "password1", Active: &inactive})

	dash := NewDashboardService(f.store, WithClock(clock), WithLowStockThreshold(2))
	sum, err := dash.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.AvailableInventory != 2 {
		t.Fatalf("available inventory = %d", sum.AvailableInventory)
	}
	if sum.OrdersThisMonth != 1 {
		t.Fatalf("orders this month = %d", sum.OrdersThisMonth)
	}
	if sum.ActiveAdmins != 1 {
		t.Fatalf("active admins = %d", sum.ActiveAdmins)
	}
	// P1 has 2 free units, P2 none
	if sum.CriticalStock != 1 || sum.CriticalProducts[0] != "P2" {
		t.Fatalf("critical stock: %+v", sum)
	}
}
