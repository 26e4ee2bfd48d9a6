package service

import (
	"context"
	"fmt"
	"strings"

	"backoffice/internal/domain"
	"backoffice/internal/repository"
)

// CatalogService товары, флаги кампаний, скидки и категории
type CatalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	tx         repository.TxManager
	opts       options
}

func NewCatalogService(products repository.ProductRepository, categories repository.CategoryRepository, tx repository.TxManager, opts ...Option) *CatalogService {
	return &CatalogService{products: products, categories: categories, tx: tx, opts: buildOptions(opts)}
}

// DiscountKey ключ PATCH-запроса для изменения скидки
const DiscountKey = "discount"

func validatePricing(p domain.Pricing) error {
	if p.Selling < 0 || p.Discount < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if p.Discount > p.Selling {
		return fmt.Errorf("%w: discount exceeds selling price", ErrInvalidInput)
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	p.PID = strings.TrimSpace(p.PID)
	p.Name = strings.TrimSpace(p.Name)
	if p.PID == "" || p.Name == "" {
		return nil, fmt.Errorf("%w: pID and name are required", ErrInvalidInput)
	}
	if err := validatePricing(p.Price); err != nil {
		return nil, err
	}
	cp := p.Clone()
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if cp.Category != "" {
			if _, err := s.categories.GetByID(ctx, cp.Category); err != nil {
				return fmt.Errorf("%w: category %s: %v", ErrInvalidInput, cp.Category, err)
			}
		}
		return s.products.Create(ctx, &cp)
	})
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, pid string) (*domain.Product, error) {
	pid = strings.TrimSpace(pid)
	if pid == "" {
		return nil, ErrInvalidInput
	}
	return s.products.GetByID(ctx, pid)
}

func (s *CatalogService) ListProducts(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	return s.products.List(ctx, f)
}

// modifyProduct читает, меняет и сохраняет товар в одной транзакции
func (s *CatalogService) modifyProduct(ctx context.Context, pid string, fn func(p *domain.Product) error) (*domain.Product, error) {
	pid = strings.TrimSpace(pid)
	if pid == "" {
		return nil, ErrInvalidInput
	}
	var updated *domain.Product
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		p, err := s.products.GetByID(ctx, pid)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		if err := s.products.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetFlag включает или выключает один флаг кампании
func (s *CatalogService) SetFlag(ctx context.Context, pid string, flag domain.Flag, value bool) (*domain.Product, error) {
	return s.modifyProduct(ctx, pid, func(p *domain.Product) error {
		return p.Status.Set(flag, value)
	})
}

// SetDiscount задаёт скидку: не меньше нуля и не больше цены продажи
func (s *CatalogService) SetDiscount(ctx context.Context, pid string, amount float64) (*domain.Product, error) {
	return s.modifyProduct(ctx, pid, func(p *domain.Product) error {
		price := p.Price
		price.Discount = amount
		if err := validatePricing(price); err != nil {
			return err
		}
		p.Price = price
		return nil
	})
}

// PatchProduct разбирает пару key/value из запроса: флаг с bool или discount с числом
func (s *CatalogService) PatchProduct(ctx context.Context, pid, key string, value interface{}) (*domain.Product, error) {
	if key == DiscountKey {
		amount, ok := value.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: discount must be a number", ErrInvalidInput)
		}
		return s.SetDiscount(ctx, pid, amount)
	}
	flag, err := domain.ParseFlag(key)
	if err != nil {
		return nil, err
	}
	v, ok := value.(bool)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a boolean", ErrInvalidInput, key)
	}
	return s.SetFlag(ctx, pid, flag, v)
}

func (s *CatalogService) CreateCategory(ctx context.Context, c domain.Category) (*domain.Category, error) {
	c.CatID = strings.TrimSpace(c.CatID)
	c.CatName = strings.TrimSpace(c.CatName)
	if c.CatID == "" || c.CatName == "" {
		return nil, fmt.Errorf("%w: catID and catName are required", ErrInvalidInput)
	}
	specs := make([]string, 0, len(c.Specifications))
	for _, sp := range c.Specifications {
		if sp = strings.TrimSpace(sp); sp != "" {
			specs = append(specs, sp)
		}
	}
	c.Specifications = specs
	if err := s.categories.Create(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCategories фильтрует по подстроке в id или названии
func (s *CatalogService) ListCategories(ctx context.Context, q string) ([]domain.Category, error) {
	all, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return all, nil
	}
	out := make([]domain.Category, 0, len(all))
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.CatID), q) || strings.Contains(strings.ToLower(c.CatName), q) {
			out = append(out, c)
		}
	}
	return out, nil
}

// SetTopCategory action: add или remove
func (s *CatalogService) SetTopCategory(ctx context.Context, catID, action string) (*domain.Category, error) {
	catID = strings.TrimSpace(catID)
	if catID == "" {
		return nil, ErrInvalidInput
	}
	var top bool
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "add":
		top = true
	case "remove":
		top = false
	default:
		return nil, fmt.Errorf("%w: action must be add or remove", ErrInvalidInput)
	}
	var updated *domain.Category
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		c, err := s.categories.GetByID(ctx, catID)
		if err != nil {
			return err
		}
		c.TopCategory = top
		if err := s.categories.Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
