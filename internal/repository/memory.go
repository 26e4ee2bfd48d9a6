package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"backoffice/internal/domain"
)

// MemoryStore объединённое in-memory хранилище. Порядок вставки сохраняется,
// чтобы списки выдавались детерминированно.
type MemoryStore struct {
	mu sync.RWMutex

	products     map[string]domain.Product
	productOrder []string
	orders       map[string]domain.Order
	orderOrder   []string
	skus         map[string]domain.SKU
	skuOrder     []string
	categories   map[string]domain.Category
	catOrder     []string
	admins       map[string]domain.Admin
	adminOrder   []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:   make(map[string]domain.Product),
		orders:     make(map[string]domain.Order),
		skus:       make(map[string]domain.SKU),
		categories: make(map[string]domain.Category),
		admins:     make(map[string]domain.Admin),
	}
}

// NewMemoryBundle собирает Store поверх одного MemoryStore
func NewMemoryBundle() Store {
	m := NewMemoryStore()
	return Store{
		Orders:     NewMemoryOrders(m),
		Products:   m,
		Stock:      NewMemoryStock(m),
		Categories: NewMemoryCategories(m),
		Admins:     NewMemoryAdmins(m),
		Tx:         NewMemoryTx(m),
	}
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

// Ensure interfaces
var (
	_ ProductRepository  = (*MemoryStore)(nil)
	_ OrderRepository    = (*MemoryOrders)(nil)
	_ StockRepository    = (*MemoryStock)(nil)
	_ CategoryRepository = (*MemoryCategories)(nil)
	_ AdminRepository    = (*MemoryAdmins)(nil)
	_ TxManager          = (*MemoryTx)(nil)
)

// ProductRepository implementation
func (m *MemoryStore) Create(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.products[p.PID]; ok {
		return ErrAlreadyExists
	}
	m.products[p.PID] = p.Clone()
	m.productOrder = append(m.productOrder, p.PID)
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	// return copy
	cp := p.Clone()
	return &cp, nil
}

func (m *MemoryStore) Update(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.products[p.PID]; !ok {
		return ErrNotFound
	}
	m.products[p.PID] = p.Clone()
	return nil
}

func (m *MemoryStore) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]domain.Product, 0)
	for _, id := range m.productOrder {
		p := m.products[id]
		if MatchProduct(p, f) {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

// OrderRepository implementation on wrapper type
type MemoryOrders struct{ store *MemoryStore }

func NewMemoryOrders(store *MemoryStore) *MemoryOrders { return &MemoryOrders{store: store} }

func (mo *MemoryOrders) Create(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	if _, ok := mo.store.orders[o.ID]; ok {
		return ErrAlreadyExists
	}
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	mo.store.orders[o.ID] = o.Clone()
	mo.store.orderOrder = append(mo.store.orderOrder, o.ID)
	return nil
}

func (mo *MemoryOrders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	o, ok := mo.store.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := o.Clone()
	return &cp, nil
}

func (mo *MemoryOrders) Update(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	if _, ok := mo.store.orders[o.ID]; !ok {
		return ErrNotFound
	}
	o.UpdatedAt = time.Now().UTC()
	mo.store.orders[o.ID] = o.Clone()
	return nil
}

// List returns newest first
func (mo *MemoryOrders) List(ctx context.Context, f OrderFilter) ([]domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	out := make([]domain.Order, 0)
	for i := len(mo.store.orderOrder) - 1; i >= 0; i-- {
		o := mo.store.orders[mo.store.orderOrder[i]]
		if MatchOrder(o, f) {
			out = append(out, o.Clone())
		}
	}
	return out, nil
}

// StockRepository implementation on wrapper type
type MemoryStock struct{ store *MemoryStore }

func NewMemoryStock(store *MemoryStore) *MemoryStock { return &MemoryStock{store: store} }

func (ms *MemoryStock) Create(ctx context.Context, s *domain.SKU) error {
	ms.store.wlock(ctx)
	defer ms.store.wunlock(ctx)
	if _, ok := ms.store.skus[s.SKUID]; ok {
		return ErrAlreadyExists
	}
	s.CreatedAt = time.Now().UTC()
	s.UpdatedAt = s.CreatedAt
	ms.store.skus[s.SKUID] = *s
	ms.store.skuOrder = append(ms.store.skuOrder, s.SKUID)
	return nil
}

func (ms *MemoryStock) GetBySKU(ctx context.Context, skuID string) (*domain.SKU, error) {
	ms.store.rlock(ctx)
	defer ms.store.runlock(ctx)
	s, ok := ms.store.skus[skuID]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (ms *MemoryStock) ListByOrder(ctx context.Context, orderID string) ([]domain.SKU, error) {
	ms.store.rlock(ctx)
	defer ms.store.runlock(ctx)
	out := make([]domain.SKU, 0)
	for _, id := range ms.store.skuOrder {
		if s := ms.store.skus[id]; s.LinkedOrderID == orderID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (ms *MemoryStock) Update(ctx context.Context, s *domain.SKU) error {
	ms.store.wlock(ctx)
	defer ms.store.wunlock(ctx)
	if _, ok := ms.store.skus[s.SKUID]; !ok {
		return ErrNotFound
	}
	s.UpdatedAt = time.Now().UTC()
	ms.store.skus[s.SKUID] = *s
	return nil
}

func (ms *MemoryStock) List(ctx context.Context, f StockFilter) ([]domain.SKU, error) {
	ms.store.rlock(ctx)
	defer ms.store.runlock(ctx)
	out := make([]domain.SKU, 0)
	for _, id := range ms.store.skuOrder {
		s := ms.store.skus[id]
		if f.ProductID != "" && s.ProductID != f.ProductID {
			continue
		}
		if f.AvailableOnly && !s.Available {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// CategoryRepository implementation on wrapper type
type MemoryCategories struct{ store *MemoryStore }

func NewMemoryCategories(store *MemoryStore) *MemoryCategories {
	return &MemoryCategories{store: store}
}

func (mc *MemoryCategories) Create(ctx context.Context, c *domain.Category) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	if _, ok := mc.store.categories[c.CatID]; ok {
		return ErrAlreadyExists
	}
	mc.store.categories[c.CatID] = c.Clone()
	mc.store.catOrder = append(mc.store.catOrder, c.CatID)
	return nil
}

func (mc *MemoryCategories) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	c, ok := mc.store.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := c.Clone()
	return &cp, nil
}

func (mc *MemoryCategories) Update(ctx context.Context, c *domain.Category) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	if _, ok := mc.store.categories[c.CatID]; !ok {
		return ErrNotFound
	}
	mc.store.categories[c.CatID] = c.Clone()
	return nil
}

func (mc *MemoryCategories) List(ctx context.Context) ([]domain.Category, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	out := make([]domain.Category, 0, len(mc.store.catOrder))
	for _, id := range mc.store.catOrder {
		out = append(out, mc.store.categories[id].Clone())
	}
	return out, nil
}

// AdminRepository implementation on wrapper type
type MemoryAdmins struct{ store *MemoryStore }

func NewMemoryAdmins(store *MemoryStore) *MemoryAdmins { return &MemoryAdmins{store: store} }

func (ma *MemoryAdmins) emailTaken(email, exceptID string) bool {
	for id, a := range ma.store.admins {
		if id != exceptID && strings.EqualFold(a.Email, email) {
			return true
		}
	}
	return false
}

func (ma *MemoryAdmins) Create(ctx context.Context, a *domain.Admin) error {
	ma.store.wlock(ctx)
	defer ma.store.wunlock(ctx)
	if _, ok := ma.store.admins[a.ID]; ok || ma.emailTaken(a.Email, "") {
		return ErrAlreadyExists
	}
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	ma.store.admins[a.ID] = *a
	ma.store.adminOrder = append(ma.store.adminOrder, a.ID)
	return nil
}

func (ma *MemoryAdmins) GetByID(ctx context.Context, id string) (*domain.Admin, error) {
	ma.store.rlock(ctx)
	defer ma.store.runlock(ctx)
	a, ok := ma.store.admins[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (ma *MemoryAdmins) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	ma.store.rlock(ctx)
	defer ma.store.runlock(ctx)
	for _, id := range ma.store.adminOrder {
		if a := ma.store.admins[id]; strings.EqualFold(a.Email, email) {
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (ma *MemoryAdmins) Update(ctx context.Context, a *domain.Admin) error {
	ma.store.wlock(ctx)
	defer ma.store.wunlock(ctx)
	if _, ok := ma.store.admins[a.ID]; !ok {
		return ErrNotFound
	}
	if ma.emailTaken(a.Email, a.ID) {
		return ErrAlreadyExists
	}
	a.UpdatedAt = time.Now().UTC()
	ma.store.admins[a.ID] = *a
	return nil
}

func (ma *MemoryAdmins) List(ctx context.Context, f AdminFilter) ([]domain.Admin, error) {
	ma.store.rlock(ctx)
	defer ma.store.runlock(ctx)
	out := make([]domain.Admin, 0)
	for _, id := range ma.store.adminOrder {
		if a := ma.store.admins[id]; MatchAdmin(a, f) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Tx manager using write lock to emulate transaction boundary
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

// WithTransaction не откатывает изменения: сервисы валидируют всё до первой записи
func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if isTx(ctx) {
		return fn(ctx)
	}
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	ctx = context.WithValue(ctx, txKey{}, true)
	return fn(ctx)
}
