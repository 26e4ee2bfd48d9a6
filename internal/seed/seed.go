// Package seed загружает стартовые данные (категории, товары, SKU, администраторов)
// из YAML-файла через сервисы, чтобы действовали те же проверки, что и в API.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"backoffice/internal/domain"
	"backoffice/internal/logger"
	"backoffice/internal/repository"
	"backoffice/internal/service"
)

type Fixture struct {
	Categories []Category `yaml:"categories"`
	Products   []Product  `yaml:"products"`
	Stock      []Unit     `yaml:"stock"`
	Admins     []Admin    `yaml:"admins"`
}

type Category struct {
	CatID          string   `yaml:"catID"`
	CatName        string   `yaml:"catName"`
	Specifications []string `yaml:"specifications"`
	TopCategory    bool     `yaml:"topCategory"`
}

type Product struct {
	PID      string   `yaml:"pID"`
	Name     string   `yaml:"name"`
	Category string   `yaml:"category"`
	Selling  float64  `yaml:"selling"`
	Discount float64  `yaml:"discount"`
	Images   []string `yaml:"images"`
	// Flags ключи isFeatured, isFlashSale, isBestSelling, isNewArrival
	Flags []string `yaml:"flags"`
}

type Unit struct {
	PID     string `yaml:"pID"`
	SKUID   string `yaml:"skuID"`
	Comment string `yaml:"comment"`
}

type Admin struct {
	FullName string `yaml:"fullName"`
	UserName string `yaml:"userName"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Phone    string `yaml:"phone"`
	Role     string `yaml:"role"`
}

// Result сколько записей создано и сколько пропущено как уже существующие
type Result struct {
	Created int
	Skipped int
}

// Target сервисы, через которые применяется фикстура
type Target struct {
	Catalog *service.CatalogService
	Stock   *service.StockService
	Admins  *service.AdminService
}

func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &f, nil
}

func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	return Parse(data)
}

// Apply создаёт записи по порядку: категории, товары, SKU, администраторы.
// Уже существующие записи пропускаются, поэтому повторный запуск безопасен.
func Apply(ctx context.Context, f *Fixture, t Target, log logger.Logger) (Result, error) {
	var res Result
	count := func(what, id string, err error) error {
		switch {
		case err == nil:
			res.Created++
			return nil
		case errors.Is(err, repository.ErrAlreadyExists):
			res.Skipped++
			log.Debugf(ctx, "[Seed] %s %s already exists", what, id)
			return nil
		default:
			return fmt.Errorf("seed %s %s: %w", what, id, err)
		}
	}

	for _, c := range f.Categories {
		_, err := t.Catalog.CreateCategory(ctx, domain.Category{CatID: c.CatID, CatName: c.CatName, Specifications: c.Specifications})
		if err := count("category", c.CatID, err); err != nil {
			return res, err
		}
		if c.TopCategory {
			if _, err := t.Catalog.SetTopCategory(ctx, c.CatID, "add"); err != nil {
				return res, fmt.Errorf("seed top category %s: %w", c.CatID, err)
			}
		}
	}

	for _, p := range f.Products {
		flags := make([]domain.Flag, 0, len(p.Flags))
		for _, key := range p.Flags {
			flag, err := domain.ParseFlag(key)
			if err != nil {
				return res, fmt.Errorf("seed product %s: %w", p.PID, err)
			}
			flags = append(flags, flag)
		}
		_, err := t.Catalog.CreateProduct(ctx, domain.Product{
			PID:      p.PID,
			Name:     p.Name,
			Category: p.Category,
			Price:    domain.Pricing{Selling: p.Selling, Discount: p.Discount},
			Images:   p.Images,
		})
		created := err == nil
		if err := count("product", p.PID, err); err != nil {
			return res, err
		}
		if !created {
			continue
		}
		for _, flag := range flags {
			if _, err := t.Catalog.SetFlag(ctx, p.PID, flag, true); err != nil {
				return res, fmt.Errorf("seed product %s flag %s: %w", p.PID, flag, err)
			}
		}
	}

	for _, u := range f.Stock {
		_, err := t.Stock.AddStock(ctx, service.StockIntake{ProductID: u.PID, SKUID: u.SKUID, Comment: u.Comment})
		if err := count("sku", u.SKUID, err); err != nil {
			return res, err
		}
	}

	for _, a := range f.Admins {
		_, err := t.Admins.Create(ctx, service.AdminInput{
			FullName: a.FullName,
			UserName: a.UserName,
			Email:    a.Email,
			Password: a.Password,
			Phone:    a.Phone,
			Role:     domain.AdminRole(a.Role),
		})
		if err := count("admin", a.Email, err); err != nil {
			return res, err
		}
	}

	log.Infof(ctx, "[Seed] created %d, skipped %d", res.Created, res.Skipped)
	return res, nil
}
