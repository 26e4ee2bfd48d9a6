package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"backoffice/internal/domain"
	"backoffice/internal/metrics"
	"backoffice/internal/repository"
)

func TestAddStock_AndLookup(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	unit, err := f.stock.AddStock(ctx, StockIntake{ProductID: "P1", SKUID: " SN-9 ", Comment: "box 4"})
	if err != nil {
		t.Fatalf("add stock: %v", err)
	}
	if unit.SKUID != "SN-9" || !unit.Available || unit.LinkedOrderID != "" {
		t.Fatalf("unexpected unit: %+v", unit)
	}

	byProduct, err := f.stock.Lookup(ctx, "P1")
	if err != nil {
		t.Fatalf("lookup product: %v", err)
	}
	if byProduct.Product.PID != "P1" || byProduct.Selected != nil || len(byProduct.Units) != 1 {
		t.Fatalf("lookup by product: %+v", byProduct)
	}

	bySKU, err := f.stock.Lookup(ctx, "SN-9")
	if err != nil {
		t.Fatalf("lookup sku: %v", err)
	}
	if bySKU.Product.PID != "P1" || bySKU.Selected == nil || bySKU.Selected.SKUID != "SN-9" {
		t.Fatalf("lookup by sku: %+v", bySKU)
	}
	if bySKU.Summary != (domain.StockSummary{Total: 1, Available: 1}) {
		t.Fatalf("summary: %+v", bySKU.Summary)
	}

	if _, err := f.stock.Lookup(ctx, "nothing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("unknown identifier: %v", err)
	}
	if _, err := f.stock.Lookup(ctx, " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank identifier: %v", err)
	}
}

func TestAddStock_Rejections(t *testing.T) {
	ctx := context.Background()
	m := metrics.New()
	f := setup(t, WithMetrics(m))

	f.addStock(t, "P1", "SN-1")
	if _, err := f.stock.AddStock(ctx, StockIntake{ProductID: "P2", SKUID: "SN-1"}); !errors.Is(err, repository.ErrAlreadyExists) {
		t.Fatalf("duplicate across products: %v", err)
	}
	if _, err := f.stock.AddStock(ctx, StockIntake{ProductID: "P9", SKUID: "SN-2"}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("unknown product: %v", err)
	}
	if _, err := f.stock.AddStock(ctx, StockIntake{ProductID: "P1"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank sku: %v", err)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, line := range []string{
		`backoffice_stock_intake_total{result="created"} 1`,
		`backoffice_stock_intake_total{result="duplicate"} 1`,
		`backoffice_stock_intake_total{result="rejected"} 2`,
	} {
		if !strings.Contains(body, line) {
			t.Fatalf("metrics missing %q", line)
		}
	}

	units, _ := f.store.Stock.List(ctx, repository.StockFilter{})
	if len(units) != 1 {
		t.Fatalf("expected a single stored unit, got %d", len(units))
	}
}

func TestProductStock_Summary(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.addStock(t, "P1", "SN-1", "SN-3", "SN-4")
	f.addStock(t, "P2", "SN-2")
	o := f.confirmed(t)
	f.update(t, o.ID, shipTo("P1", "SN-3", "P2", "SN-2"))

	res, err := f.stock.ProductStock(ctx, "P1")
	if err != nil {
		t.Fatalf("product stock: %v", err)
	}
	if res.Summary != (domain.StockSummary{Total: 3, Available: 2, Sold: 1}) {
		t.Fatalf("summary: %+v", res.Summary)
	}
	if _, err := f.stock.ProductStock(ctx, "P9"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing product: %v", err)
	}
}
