package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"backoffice/internal/domain"
	"backoffice/internal/repository"
)

// StockService приёмка и поиск складских единиц
type StockService struct {
	products repository.ProductRepository
	stock    repository.StockRepository
	tx       repository.TxManager
	opts     options
}

func NewStockService(products repository.ProductRepository, stock repository.StockRepository, tx repository.TxManager, opts ...Option) *StockService {
	return &StockService{products: products, stock: stock, tx: tx, opts: buildOptions(opts)}
}

// StockIntake одна принимаемая единица
type StockIntake struct {
	ProductID string
	SKUID     string
	Comment   string
}

// StockLookup результат поиска: товар, его единицы, совпавшая SKU и счётчики
type StockLookup struct {
	Product  *domain.Product     `json:"product"`
	Units    []domain.SKU        `json:"skus"`
	Selected *domain.SKU         `json:"selected,omitempty"`
	Summary  domain.StockSummary `json:"summary"`
}

// AddStock регистрирует новую SKU; при повторе SKU в любом товаре вернёт ErrAlreadyExists
func (s *StockService) AddStock(ctx context.Context, in StockIntake) (*domain.SKU, error) {
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.SKUID = strings.TrimSpace(in.SKUID)
	if in.ProductID == "" || in.SKUID == "" {
		s.opts.metrics.StockIntake("rejected")
		return nil, fmt.Errorf("%w: product id and SKU are required", ErrInvalidInput)
	}

	unit := &domain.SKU{
		SKUID:     in.SKUID,
		ProductID: in.ProductID,
		Available: true,
		Comment:   strings.TrimSpace(in.Comment),
	}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.products.GetByID(ctx, in.ProductID); err != nil {
			return fmt.Errorf("product %s: %w", in.ProductID, err)
		}
		return s.stock.Create(ctx, unit)
	})
	switch {
	case errors.Is(err, repository.ErrAlreadyExists):
		s.opts.metrics.StockIntake("duplicate")
		return nil, fmt.Errorf("SKU %s: %w", in.SKUID, err)
	case err != nil:
		s.opts.metrics.StockIntake("rejected")
		return nil, err
	}
	s.opts.metrics.StockIntake("created")
	s.opts.log.Infof(ctx, "[Stock] intake %s for %s", unit.SKUID, unit.ProductID)
	return unit, nil
}

// Lookup ищет сначала товар по id, затем SKU по id
func (s *StockService) Lookup(ctx context.Context, identifier string) (*StockLookup, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrInvalidInput
	}

	p, err := s.products.GetByID(ctx, identifier)
	if err == nil {
		return s.summarize(ctx, p, nil)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	unit, err := s.stock.GetBySKU(ctx, identifier)
	if err != nil {
		return nil, err
	}
	p, err = s.products.GetByID(ctx, unit.ProductID)
	if err != nil {
		return nil, fmt.Errorf("product %s of SKU %s: %w", unit.ProductID, unit.SKUID, err)
	}
	return s.summarize(ctx, p, unit)
}

// ProductStock единицы и счётчики одного товара
func (s *StockService) ProductStock(ctx context.Context, productID string) (*StockLookup, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, ErrInvalidInput
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, p, nil)
}

func (s *StockService) summarize(ctx context.Context, p *domain.Product, selected *domain.SKU) (*StockLookup, error) {
	units, err := s.stock.List(ctx, repository.StockFilter{ProductID: p.PID})
	if err != nil {
		return nil, err
	}
	return &StockLookup{
		Product:  p,
		Units:    units,
		Selected: selected,
		Summary:  domain.Summarize(units),
	}, nil
}
