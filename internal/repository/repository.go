package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"backoffice/internal/domain"
)

var (
	// ErrNotFound возвращается, когда сущность не найдена
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists возвращается при нарушении уникальности ключа
	ErrAlreadyExists = errors.New("already exists")
)

// OrderFilter параметры фильтрации списка заказов
type OrderFilter struct {
	Status      domain.OrderStatus
	IDSubstring string
	// Date ограничивает выборку заказами за один календарный день (UTC)
	Date      *time.Time
	ProductID string
	Since     *time.Time
}

// ProductFilter параметры фильтрации списка товаров
type ProductFilter struct {
	NameSubstring string
	IDSubstring   string
	Category      string
	Flag          domain.Flag
}

// StockFilter параметры фильтрации единиц склада
type StockFilter struct {
	ProductID     string
	AvailableOnly bool
}

// AdminFilter параметры фильтрации администраторов
type AdminFilter struct {
	// Query ищет по имени, логину, email и телефону
	Query      string
	ActiveOnly bool
}

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
	List(ctx context.Context, f OrderFilter) ([]domain.Order, error)
}

// ProductRepository интерфейс репозитория товаров
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	List(ctx context.Context, f ProductFilter) ([]domain.Product, error)
}

// StockRepository интерфейс репозитория складских единиц (SKU).
// Create атомарно создаёт запись только если такого SKU ещё нет.
type StockRepository interface {
	Create(ctx context.Context, s *domain.SKU) error
	GetBySKU(ctx context.Context, skuID string) (*domain.SKU, error)
	ListByOrder(ctx context.Context, orderID string) ([]domain.SKU, error)
	Update(ctx context.Context, s *domain.SKU) error
	List(ctx context.Context, f StockFilter) ([]domain.SKU, error)
}

// CategoryRepository интерфейс репозитория категорий
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	Update(ctx context.Context, c *domain.Category) error
	List(ctx context.Context) ([]domain.Category, error)
}

// AdminRepository интерфейс репозитория администраторов. Email уникален.
type AdminRepository interface {
	Create(ctx context.Context, a *domain.Admin) error
	GetByID(ctx context.Context, id string) (*domain.Admin, error)
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	Update(ctx context.Context, a *domain.Admin) error
	List(ctx context.Context, f AdminFilter) ([]domain.Admin, error)
}

// TxManager абстракция транзакции. In-memory держит глобальную блокировку записи, sql и mongo открывают настоящую транзакцию.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store набор репозиториев одного бэкенда
type Store struct {
	Orders     OrderRepository
	Products   ProductRepository
	Stock      StockRepository
	Categories CategoryRepository
	Admins     AdminRepository
	Tx         TxManager
	// Close освобождает соединения; может быть nil
	Close func(ctx context.Context) error
}

// helper: case-insensitive contains
func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// MatchOrder проверяет заказ на соответствие фильтру
func MatchOrder(o domain.Order, f OrderFilter) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if !containsIgnoreCase(o.ID, f.IDSubstring) {
		return false
	}
	if f.Date != nil && !sameDay(o.OrderDate, *f.Date) {
		return false
	}
	if f.Since != nil && o.OrderDate.Before(*f.Since) {
		return false
	}
	if f.ProductID != "" {
		found := false
		for _, it := range o.Items {
			if it.ProductID == f.ProductID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// MatchAdmin проверяет администратора на соответствие фильтру
func MatchAdmin(a domain.Admin, f AdminFilter) bool {
	if f.ActiveOnly && !a.Active {
		return false
	}
	if f.Query == "" {
		return true
	}
	return containsIgnoreCase(a.FullName, f.Query) ||
		containsIgnoreCase(a.UserName, f.Query) ||
		containsIgnoreCase(a.Email, f.Query) ||
		containsIgnoreCase(a.Phone, f.Query)
}

// MatchProduct проверяет товар на соответствие фильтру
func MatchProduct(p domain.Product, f ProductFilter) bool {
	if !containsIgnoreCase(p.Name, f.NameSubstring) {
		return false
	}
	if !containsIgnoreCase(p.PID, f.IDSubstring) {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Flag != 0 && !p.Status.Get(f.Flag) {
		return false
	}
	return true
}
