package service

import (
	"context"
	"sort"
	"time"

	"backoffice/internal/repository"
)

// DashboardService счётчики для верхней панели дашборда
type DashboardService struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	stock    repository.StockRepository
	admins   repository.AdminRepository
	opts     options
}

func NewDashboardService(store repository.Store, opts ...Option) *DashboardService {
	return &DashboardService{
		products: store.Products,
		orders:   store.Orders,
		stock:    store.Stock,
		admins:   store.Admins,
		opts:     buildOptions(opts),
	}
}

// DashboardSummary KPI
type DashboardSummary struct {
	AvailableInventory int `json:"available_inventory"`
	OrdersThisMonth    int `json:"orders_this_month"`
	ActiveAdmins       int `json:"active_admins"`
	CriticalStock      int `json:"critical_stock"`
	// CriticalProducts товары, у которых свободных единиц меньше порога
	CriticalProducts []string `json:"critical_products"`
}

func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	units, err := s.stock.List(ctx, repository.StockFilter{AvailableOnly: true})
	if err != nil {
		return nil, err
	}
	availableByProduct := make(map[string]int)
	for _, u := range units {
		availableByProduct[u.ProductID]++
	}

	now := s.opts.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	orders, err := s.orders.List(ctx, repository.OrderFilter{Since: &monthStart})
	if err != nil {
		return nil, err
	}

	admins, err := s.admins.List(ctx, repository.AdminFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	products, err := s.products.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	critical := make([]string, 0)
	for _, p := range products {
		if availableByProduct[p.PID] < s.opts.lowStock {
			critical = append(critical, p.PID)
		}
	}
	sort.Strings(critical)

	return &DashboardSummary{
		AvailableInventory: len(units),
		OrdersThisMonth:    len(orders),
		ActiveAdmins:       len(admins),
		CriticalStock:      len(critical),
		CriticalProducts:   critical,
	}, nil
}
