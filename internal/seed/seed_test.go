package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"backoffice/internal/domain"
	"backoffice/internal/logger"
	"backoffice/internal/repository"
	"backoffice/internal/service"
)

const fixture = `
categories:
  - catID: C1
    catName: Phones
    specifications: [RAM]
    topCategory: true
products:
  - pID: P1
    name: Phone
    category: C1
    selling: 500
    discount: 20
    flags: [isFeatured]
stock:
  - {pID: P1, skuID: SN-1}
  - {pID: P1, skuID: SN-2, comment: shelf A}
admins:
  - fullName: Owner
    userName: owner
    email: owner@example.com
    password: change-me-now
    role: SuperAdmin
`

func target(store repository.Store) Target {
	return Target{
		Catalog: service.NewCatalogService(store.Products, store.Categories, store.Tx),
		Stock:   service.NewStockService(store.Products, store.Stock, store.Tx),
		Admins:  service.NewAdminService(store.Admins, store.Tx, service.WithBcryptCost(bcrypt.MinCost)),
	}
}

func TestApply_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryBundle()
	f, err := Parse([]byte(fixture))
	require.NoError(t, err)

	res, err := Apply(ctx, f, target(store), logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 5}, res)

	p, err := store.Products.GetByID(ctx, "P1")
	require.NoError(t, err)
	assert.True(t, p.Status.IsFeatured)
	assert.Equal(t, 480.0, p.Price.Effective())

	c, err := store.Categories.GetByID(ctx, "C1")
	require.NoError(t, err)
	assert.True(t, c.TopCategory)

	a, err := store.Admins.GetByEmail(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.AdminRoleSuperAdmin, a.Role)

	res, err = Apply(ctx, f, target(store), logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 5}, res)
}

func TestApply_UnknownFlag(t *testing.T) {
	f, err := Parse([]byte("products:\n  - {pID: P1, name: Phone, selling: 1, flags: [isHot]}\n"))
	require.NoError(t, err)
	_, err = Apply(context.Background(), f, target(repository.NewMemoryBundle()), logger.NewNop())
	assert.ErrorIs(t, err, domain.ErrUnknownFlag)
}

func TestApply_StockForMissingProduct(t *testing.T) {
	f, err := Parse([]byte("stock:\n  - {pID: P404, skuID: SN-1}\n"))
	require.NoError(t, err)
	_, err = Apply(context.Background(), f, target(repository.NewMemoryBundle()), logger.NewNop())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("products: [oops"))
	assert.Error(t, err)

	_, err = Load("testdata/missing.yaml")
	assert.Error(t, err)
}

func TestLoad_SampleFixture(t *testing.T) {
	f, err := Load("../../config/seed.yaml")
	require.NoError(t, err)
	assert.NotEmpty(t, f.Products)

	res, err := Apply(context.Background(), f, target(repository.NewMemoryBundle()), logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, len(f.Categories)+len(f.Products)+len(f.Stock)+len(f.Admins), res.Created)
}
