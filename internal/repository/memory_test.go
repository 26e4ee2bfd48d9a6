package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"backoffice/internal/domain"
)

func TestMemoryStore_ProductCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	p := domain.Product{PID: "P1", Name: "Phone", Price: domain.Pricing{Selling: 10}, Images: []string{"a.png"}}
	if err := store.Create(ctx, &p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(ctx, &p); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	got, err := store.GetByID(ctx, "P1")
	if err != nil || got.PID != "P1" {
		t.Fatalf("get: %v", err)
	}
	got.Images[0] = "mutated"
	again, _ := store.GetByID(ctx, "P1")
	if again.Images[0] != "a.png" {
		t.Fatalf("store leaked its slice")
	}

	p.Price.Selling = 12
	if err := store.Update(ctx, &p); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := store.GetByID(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found")
	}
	if err := store.Update(ctx, &domain.Product{PID: "nope"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on update")
	}
}

func TestMemoryTx_TransactionalUpdate(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBundle()

	if err := b.Stock.Create(ctx, &domain.SKU{SKUID: "SN-1", ProductID: "P1", Available: true}); err != nil {
		t.Fatal(err)
	}
	o := domain.Order{ID: "OID1", Status: domain.OrderStatusConfirmed, Items: []domain.OrderItem{{ProductID: "P1", Quantity: 1}}}
	if err := b.Orders.Create(ctx, &o); err != nil {
		t.Fatal(err)
	}

	// consume the unit and ship the order atomically
	err := b.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		s, err := b.Stock.GetBySKU(ctx, "SN-1")
		if err != nil {
			return err
		}
		if err := s.Consume("OID1"); err != nil {
			return err
		}
		if err := b.Stock.Update(ctx, s); err != nil {
			return err
		}
		oo, err := b.Orders.GetByID(ctx, "OID1")
		if err != nil {
			return err
		}
		oo.Status = domain.OrderStatusShipped
		oo.Items[0].SKUID = "SN-1"
		return b.Orders.Update(ctx, oo)
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	s, _ := b.Stock.GetBySKU(ctx, "SN-1")
	if s.Available || s.LinkedOrderID != "OID1" {
		t.Fatalf("unit not consumed: %+v", s)
	}
	linked, _ := b.Stock.ListByOrder(ctx, "OID1")
	if len(linked) != 1 {
		t.Fatalf("expected 1 linked unit, got %d", len(linked))
	}
}

func TestMemoryStock_CreateIfAbsentConcurrent(t *testing.T) {
	ctx := context.Background()
	stock := NewMemoryStock(NewMemoryStore())

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := stock.Create(ctx, &domain.SKU{SKUID: "SN-9", ProductID: "P1", Available: true}); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if created != 1 {
		t.Fatalf("expected exactly one create, got %d", created)
	}
}

func TestList_Filtering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	add := func(id, n, cat string, featured bool) {
		p := domain.Product{PID: id, Name: n, Category: cat, Status: domain.ProductFlags{IsFeatured: featured}}
		if err := store.Create(ctx, &p); err != nil {
			t.Fatal(err)
		}
	}
	add("P1", "Galaxy Phone", "phones", true)
	add("P2", "Laptop Pro", "laptops", false)
	add("P3", "Pixel Phone", "phones", false)

	list, _ := store.List(ctx, ProductFilter{NameSubstring: "phone"})
	if len(list) != 2 || list[0].PID != "P1" || list[1].PID != "P3" {
		t.Fatalf("name filter: %+v", list)
	}
	list, _ = store.List(ctx, ProductFilter{Category: "laptops"})
	if len(list) != 1 || list[0].PID != "P2" {
		t.Fatalf("category filter: %+v", list)
	}
	list, _ = store.List(ctx, ProductFilter{Flag: domain.FlagFeatured})
	if len(list) != 1 || list[0].PID != "P1" {
		t.Fatalf("flag filter: %+v", list)
	}
}

func TestMemoryOrders_ListFilters(t *testing.T) {
	ctx := context.Background()
	orders := NewMemoryOrders(NewMemoryStore())
	day := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	mk := func(id string, st domain.OrderStatus, date time.Time, pid string) {
		o := domain.Order{ID: id, Status: st, OrderDate: date, Items: []domain.OrderItem{{ProductID: pid, Quantity: 1}}}
		if err := orders.Create(ctx, &o); err != nil {
			t.Fatal(err)
		}
	}
	mk("OID2503100001", domain.OrderStatusPending, day, "P1")
	mk("OID2503100002", domain.OrderStatusShipped, day.Add(2*time.Hour), "P2")
	mk("OID2503110003", domain.OrderStatusPending, day.Add(24*time.Hour), "P1")

	list, _ := orders.List(ctx, OrderFilter{})
	if len(list) != 3 || list[0].ID != "OID2503110003" {
		t.Fatalf("expected newest first: %+v", list)
	}
	list, _ = orders.List(ctx, OrderFilter{Status: domain.OrderStatusPending})
	if len(list) != 2 {
		t.Fatalf("status filter: %d", len(list))
	}
	list, _ = orders.List(ctx, OrderFilter{Date: &day})
	if len(list) != 2 {
		t.Fatalf("date filter: %d", len(list))
	}
	list, _ = orders.List(ctx, OrderFilter{IDSubstring: "0002"})
	if len(list) != 1 || list[0].ID != "OID2503100002" {
		t.Fatalf("id filter: %+v", list)
	}
	list, _ = orders.List(ctx, OrderFilter{ProductID: "P1"})
	if len(list) != 2 {
		t.Fatalf("product filter: %d", len(list))
	}
	if err := orders.Create(ctx, &domain.Order{ID: "OID2503100001"}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected duplicate id rejected, got %v", err)
	}
}

func TestMemoryAdmins_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	admins := NewMemoryAdmins(NewMemoryStore())
	a := domain.Admin{ID: "A1", FullName: "Rahim", Email: "rahim@shop.test", Active: true}
	if err := admins.Create(ctx, &a); err != nil {
		t.Fatal(err)
	}
	b := domain.Admin{ID: "A2", FullName: "Karim", Email: "RAHIM@shop.test"}
	if err := admins.Create(ctx, &b); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected duplicate email rejected, got %v", err)
	}
	b.Email = "karim@shop.test"
	if err := admins.Create(ctx, &b); err != nil {
		t.Fatal(err)
	}
	b.Email = "rahim@shop.test"
	if err := admins.Update(ctx, &b); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected duplicate email on update, got %v", err)
	}
	got, err := admins.GetByEmail(ctx, "Karim@Shop.test")
	if err != nil || got.ID != "A2" {
		t.Fatalf("get by email: %v", err)
	}
	list, _ := admins.List(ctx, AdminFilter{ActiveOnly: true})
	if len(list) != 1 {
		t.Fatalf("active filter: %d", len(list))
	}
}
