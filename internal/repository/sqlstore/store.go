// Package sqlstore реализует репозитории поверх MySQL через GORM.
package sqlstore

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"backoffice/internal/domain"
	"backoffice/internal/repository"
)

const mysqlDuplicateEntry = 1062

// DB общий хэндл и менеджер транзакций
type DB struct {
	db *gorm.DB
}

// Open подключается к MySQL по DSN
func Open(dsn string) (*DB, error) {
	db, err := gorm.Open(gormmysql.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	return &DB{db: db}, nil
}

// New оборачивает готовое соединение GORM
func New(db *gorm.DB) *DB {
	return &DB{db: db}
}

// Migrate создаёт или обновляет таблицы
func (d *DB) Migrate(ctx context.Context) error {
	return d.db.WithContext(ctx).AutoMigrate(&orderRow{}, &productRow{}, &skuRow{}, &categoryRow{}, &adminRow{})
}

// Close закрывает пул соединений
func (d *DB) Close(_ context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Bundle собирает repository.Store поверх одного соединения
func (d *DB) Bundle() repository.Store {
	return repository.Store{
		Orders:     &Orders{d},
		Products:   &Products{d},
		Stock:      &Stock{d},
		Categories: &Categories{d},
		Admins:     &Admins{d},
		Tx:         d,
		Close:      d.Close,
	}
}

type txKey struct{}

// conn возвращает транзакцию из контекста, если она открыта
func (d *DB) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return d.db.WithContext(ctx)
}

// forUpdate читает строку с блокировкой, если запрос идёт внутри транзакции. Так
// параллельная транзакция ждёт коммита и видит уже изменённую строку.
func (d *DB) forUpdate(ctx context.Context) *gorm.DB {
	q := d.conn(ctx)
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

// WithTransaction выполняет fn в одной транзакции; вложенные вызовы переиспользуют её
func (d *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// mapErr приводит ошибки драйвера к ошибкам репозитория
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repository.ErrAlreadyExists
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return repository.ErrAlreadyExists
	}
	return err
}

func (d *DB) exists(ctx context.Context, model interface{}, column, id string) error {
	var n int64
	if err := d.conn(ctx).Model(model).Where(column+" = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var (
	_ repository.OrderRepository    = (*Orders)(nil)
	_ repository.ProductRepository  = (*Products)(nil)
	_ repository.StockRepository    = (*Stock)(nil)
	_ repository.CategoryRepository = (*Categories)(nil)
	_ repository.AdminRepository    = (*Admins)(nil)
	_ repository.TxManager          = (*DB)(nil)
)

// Orders репозиторий заказов
type Orders struct{ d *DB }

func (r *Orders) Create(ctx context.Context, o *domain.Order) error {
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	row, err := toOrderRow(o)
	if err != nil {
		return err
	}
	return mapErr(r.d.conn(ctx).Create(row).Error)
}

func (r *Orders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var row orderRow
	if err := r.d.forUpdate(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, mapErr(err)
	}
	return row.toDomain()
}

func (r *Orders) Update(ctx context.Context, o *domain.Order) error {
	if err := r.d.exists(ctx, &orderRow{}, "id", o.ID); err != nil {
		return err
	}
	o.UpdatedAt = time.Now().UTC()
	row, err := toOrderRow(o)
	if err != nil {
		return err
	}
	return mapErr(r.d.conn(ctx).Save(row).Error)
}

// List returns newest first
func (r *Orders) List(ctx context.Context, f repository.OrderFilter) ([]domain.Order, error) {
	q := r.d.conn(ctx).Model(&orderRow{})
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.IDSubstring != "" {
		q = q.Where("id LIKE ?", "%"+f.IDSubstring+"%")
	}
	if f.Date != nil {
		y, m, dd := f.Date.UTC().Date()
		start := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
		q = q.Where("order_date >= ? AND order_date < ?", start, start.AddDate(0, 0, 1))
	}
	if f.Since != nil {
		q = q.Where("order_date >= ?", *f.Since)
	}
	if f.ProductID != "" {
		q = q.Where("JSON_CONTAINS(items, JSON_OBJECT('product_id', ?))", f.ProductID)
	}
	var rows []orderRow
	if err := q.Order("order_date DESC").Find(&rows).Error; err != nil {
		return nil, mapErr(err)
	}
	out := make([]domain.Order, 0, len(rows))
	for i := range rows {
		o, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, nil
}

// Products репозиторий товаров
type Products struct{ d *DB }

func (r *Products) Create(ctx context.Context, p *domain.Product) error {
	row, err := toProductRow(p)
	if err != nil {
		return err
	}
	return mapErr(r.d.conn(ctx).Create(row).Error)
}

func (r *Products) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var row productRow
	if err := r.d.conn(ctx).Where("pid = ?", id).First(&row).Error; err != nil {
		return nil, mapErr(err)
	}
	return row.toDomain()
}

func (r *Products) Update(ctx context.Context, p *domain.Product) error {
	if err := r.d.exists(ctx, &productRow{}, "pid", p.PID); err != nil {
		return err
	}
	row, err := toProductRow(p)
	if err != nil {
		return err
	}
	return mapErr(r.d.conn(ctx).Save(row).Error)
}

func (r *Products) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	q := r.d.conn(ctx).Model(&productRow{})
	if f.NameSubstring != "" {
		q = q.Where("name LIKE ?", "%"+f.NameSubstring+"%")
	}
	if f.IDSubstring != "" {
		q = q.Where("pid LIKE ?", "%"+f.IDSubstring+"%")
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if col, ok := flagColumns[f.Flag]; ok {
		q = q.Where(col+" = ?", true)
	}
	var rows []productRow
	if err := q.Order("pid").Find(&rows).Error; err != nil {
		return nil, mapErr(err)
	}
	out := make([]domain.Product, 0, len(rows))
	for i := range rows {
		p, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// Stock репозиторий складских единиц; первичный ключ sku_id обеспечивает create-if-absent
type Stock struct{ d *DB }

func (r *Stock) Create(ctx context.Context, s *domain.SKU) error {
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	return mapErr(r.d.conn(ctx).Create(toSKURow(s)).Error)
}

func (r *Stock) GetBySKU(ctx context.Context, skuID string) (*domain.SKU, error) {
	var row skuRow
	if err := r.d.forUpdate(ctx).Where("sku_id = ?", skuID).First(&row).Error; err != nil {
		return nil, mapErr(err)
	}
	s := row.toDomain()
	return &s, nil
}

func (r *Stock) ListByOrder(ctx context.Context, orderID string) ([]domain.SKU, error) {
	var rows []skuRow
	if err := r.d.conn(ctx).Where("linked_order_id = ?", orderID).Order("created_at").Find(&rows).Error; err != nil {
		return nil, mapErr(err)
	}
	return skuRows(rows), nil
}

func (r *Stock) Update(ctx context.Context, s *domain.SKU) error {
	if err := r.d.exists(ctx, &skuRow{}, "sku_id", s.SKUID); err != nil {
		return err
	}
	s.UpdatedAt = time.Now().UTC()
	return mapErr(r.d.conn(ctx).Save(toSKURow(s)).Error)
}

func (r *Stock) List(ctx context.Context, f repository.StockFilter) ([]domain.SKU, error) {
	q := r.d.conn(ctx).Model(&skuRow{})
	if f.ProductID != "" {
		q = q.Where("product_id = ?", f.ProductID)
	}
	if f.AvailableOnly {
		q = q.Where("available = ?", true)
	}
	var rows []skuRow
	if err := q.Order("created_at").Find(&rows).Error; err != nil {
		return nil, mapErr(err)
	}
	return skuRows(rows), nil
}

func skuRows(rows []skuRow) []domain.SKU {
	out := make([]domain.SKU, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out
}

// Categories репозиторий категорий
type Categories struct{ d *DB }

func (r *Categories) Create(ctx context.Context, c *domain.Category) error {
	row, err := toCategoryRow(c)
	if err != nil {
		return err
	}
	return mapErr(r.d.conn(ctx).Create(row).Error)
}

func (r *Categories) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	var row categoryRow
	if err := r.d.conn(ctx).Where("cat_id = ?", id).First(&row).Error; err != nil {
		return nil, mapErr(err)
	}
	return row.toDomain()
}

func (r *Categories) Update(ctx context.Context, c *domain.Category) error {
	if err := r.d.exists(ctx, &categoryRow{}, "cat_id", c.CatID); err != nil {
		return err
	}
	row, err := toCategoryRow(c)
	if err != nil {
		return err
	}
	return mapErr(r.d.conn(ctx).Save(row).Error)
}

func (r *Categories) List(ctx context.Context) ([]domain.Category, error) {
	var rows []categoryRow
	if err := r.d.conn(ctx).Order("cat_id").Find(&rows).Error; err != nil {
		return nil, mapErr(err)
	}
	out := make([]domain.Category, 0, len(rows))
	for i := range rows {
		c, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

// Admins репозиторий администраторов; уникальность email держит индекс uk_email
type Admins struct{ d *DB }

func (r *Admins) Create(ctx context.Context, a *domain.Admin) error {
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	return mapErr(r.d.conn(ctx).Create(toAdminRow(a)).Error)
}

func (r *Admins) GetByID(ctx context.Context, id string) (*domain.Admin, error) {
	var row adminRow
	if err := r.d.conn(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, mapErr(err)
	}
	a := row.toDomain()
	return &a, nil
}

func (r *Admins) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	var row adminRow
	if err := r.d.conn(ctx).Where("email = ?", email).First(&row).Error; err != nil {
		return nil, mapErr(err)
	}
	a := row.toDomain()
	return &a, nil
}

func (r *Admins) Update(ctx context.Context, a *domain.Admin) error {
	if err := r.d.exists(ctx, &adminRow{}, "id", a.ID); err != nil {
		return err
	}
	a.UpdatedAt = time.Now().UTC()
	return mapErr(r.d.conn(ctx).Save(toAdminRow(a)).Error)
}

func (r *Admins) List(ctx context.Context, f repository.AdminFilter) ([]domain.Admin, error) {
	q := r.d.conn(ctx).Model(&adminRow{})
	if f.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		q = q.Where("full_name LIKE ? OR user_name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like, like)
	}
	var rows []adminRow
	if err := q.Order("created_at").Find(&rows).Error; err != nil {
		return nil, mapErr(err)
	}
	out := make([]domain.Admin, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}
