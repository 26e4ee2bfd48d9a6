// Package mongostore реализует репозитории поверх MongoDB.
package mongostore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backoffice/internal/domain"
	"backoffice/internal/repository"
)

const (
	colOrders     = "orders"
	colProducts   = "products"
	colStock      = "stock"
	colCategories = "categories"
	colAdmins     = "admins"
)

// Store клиент и база данных
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect подключается и проверяет соединение пингом
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

// EnsureIndexes создаёт индексы, на которых держатся инварианты уникальности и выборки
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		colAdmins: {{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		colStock: {
			{Keys: bson.D{{Key: "productId", Value: 1}}},
			{Keys: bson.D{{Key: "linkedOrderId", Value: 1}}},
		},
		colOrders: {
			{Keys: bson.D{{Key: "orderDate", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
	}
	for col, models := range specs {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}

// Close отключает клиента
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Bundle собирает repository.Store поверх одной базы
func (s *Store) Bundle() repository.Store {
	return repository.Store{
		Orders:     &Orders{c: s.db.Collection(colOrders)},
		Products:   &Products{c: s.db.Collection(colProducts)},
		Stock:      &Stock{c: s.db.Collection(colStock)},
		Categories: &Categories{c: s.db.Collection(colCategories)},
		Admins:     &Admins{c: s.db.Collection(colAdmins)},
		Tx:         s,
		Close:      s.Close,
	}
}

// WithTransaction открывает сессию с транзакцией (нужен replica set). Операции
// репозиториев подхватывают сессию из контекста.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}
	sess, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrAlreadyExists
	}
	return err
}

func contains(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func insert(ctx context.Context, c *mongo.Collection, doc interface{}) error {
	_, err := c.InsertOne(ctx, doc)
	return mapErr(err)
}

func replace(ctx context.Context, c *mongo.Collection, id string, doc interface{}) error {
	res, err := c.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func findOne[T any](ctx context.Context, c *mongo.Collection, filter bson.M) (*T, error) {
	var out T
	if err := c.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, c *mongo.Collection, filter bson.M, opts *options.FindOptions) ([]T, error) {
	cur, err := c.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapErr(err)
	}
	defer cur.Close(ctx)
	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var (
	_ repository.OrderRepository    = (*Orders)(nil)
	_ repository.ProductRepository  = (*Products)(nil)
	_ repository.StockRepository    = (*Stock)(nil)
	_ repository.CategoryRepository = (*Categories)(nil)
	_ repository.AdminRepository    = (*Admins)(nil)
	_ repository.TxManager          = (*Store)(nil)
)

// Orders коллекция заказов
type Orders struct{ c *mongo.Collection }

func (r *Orders) Create(ctx context.Context, o *domain.Order) error {
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	return insert(ctx, r.c, o)
}

func (r *Orders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return findOne[domain.Order](ctx, r.c, bson.M{"_id": id})
}

func (r *Orders) Update(ctx context.Context, o *domain.Order) error {
	o.UpdatedAt = time.Now().UTC()
	return replace(ctx, r.c, o.ID, o)
}

func (r *Orders) List(ctx context.Context, f repository.OrderFilter) ([]domain.Order, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.IDSubstring != "" {
		filter["_id"] = contains(f.IDSubstring)
	}
	date := bson.M{}
	if f.Date != nil {
		y, m, d := f.Date.UTC().Date()
		start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		date["$gte"] = start
		date["$lt"] = start.AddDate(0, 0, 1)
	}
	if f.Since != nil {
		if cur, ok := date["$gte"].(time.Time); !ok || f.Since.After(cur) {
			date["$gte"] = *f.Since
		}
	}
	if len(date) > 0 {
		filter["orderDate"] = date
	}
	if f.ProductID != "" {
		filter["items.productId"] = f.ProductID
	}
	return findAll[domain.Order](ctx, r.c, filter, options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}}))
}

// Products коллекция товаров
type Products struct{ c *mongo.Collection }

func (r *Products) Create(ctx context.Context, p *domain.Product) error {
	return insert(ctx, r.c, p)
}

func (r *Products) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return findOne[domain.Product](ctx, r.c, bson.M{"_id": id})
}

func (r *Products) Update(ctx context.Context, p *domain.Product) error {
	return replace(ctx, r.c, p.PID, p)
}

func (r *Products) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	filter := bson.M{}
	if f.NameSubstring != "" {
		filter["name"] = contains(f.NameSubstring)
	}
	if f.IDSubstring != "" {
		filter["_id"] = contains(f.IDSubstring)
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Flag != 0 {
		filter["status."+f.Flag.String()] = true
	}
	return findAll[domain.Product](ctx, r.c, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

// Stock коллекция складских единиц; _id = SKU, поэтому InsertOne и есть create-if-absent
type Stock struct{ c *mongo.Collection }

func (r *Stock) Create(ctx context.Context, s *domain.SKU) error {
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	return insert(ctx, r.c, s)
}

func (r *Stock) GetBySKU(ctx context.Context, skuID string) (*domain.SKU, error) {
	return findOne[domain.SKU](ctx, r.c, bson.M{"_id": skuID})
}

func (r *Stock) ListByOrder(ctx context.Context, orderID string) ([]domain.SKU, error) {
	return findAll[domain.SKU](ctx, r.c, bson.M{"linkedOrderId": orderID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

func (r *Stock) Update(ctx context.Context, s *domain.SKU) error {
	s.UpdatedAt = time.Now().UTC()
	return replace(ctx, r.c, s.SKUID, s)
}

func (r *Stock) List(ctx context.Context, f repository.StockFilter) ([]domain.SKU, error) {
	filter := bson.M{}
	if f.ProductID != "" {
		filter["productId"] = f.ProductID
	}
	if f.AvailableOnly {
		filter["status"] = true
	}
	return findAll[domain.SKU](ctx, r.c, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

// Categories коллекция категорий
type Categories struct{ c *mongo.Collection }

func (r *Categories) Create(ctx context.Context, c *domain.Category) error {
	return insert(ctx, r.c, c)
}

func (r *Categories) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	return findOne[domain.Category](ctx, r.c, bson.M{"_id": id})
}

// Update меняет только признак top-категории и описательные поля
func (r *Categories) Update(ctx context.Context, c *domain.Category) error {
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": c.CatID}, bson.M{"$set": bson.M{
		"catName":        c.CatName,
		"specifications": c.Specifications,
		"topCategory":    c.TopCategory,
	}})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *Categories) List(ctx context.Context) ([]domain.Category, error) {
	return findAll[domain.Category](ctx, r.c, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

// Admins коллекция администраторов; уникальный индекс по email
type Admins struct{ c *mongo.Collection }

func (r *Admins) Create(ctx context.Context, a *domain.Admin) error {
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	return insert(ctx, r.c, a)
}

func (r *Admins) GetByID(ctx context.Context, id string) (*domain.Admin, error) {
	return findOne[domain.Admin](ctx, r.c, bson.M{"_id": id})
}

func (r *Admins) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	return findOne[domain.Admin](ctx, r.c, bson.M{"email": email})
}

func (r *Admins) Update(ctx context.Context, a *domain.Admin) error {
	a.UpdatedAt = time.Now().UTC()
	return replace(ctx, r.c, a.ID, a)
}

func (r *Admins) List(ctx context.Context, f repository.AdminFilter) ([]domain.Admin, error) {
	filter := bson.M{}
	if f.ActiveOnly {
		filter["active"] = true
	}
	if f.Query != "" {
		filter["$or"] = bson.A{
			bson.M{"fullName": contains(f.Query)},
			bson.M{"userName": contains(f.Query)},
			bson.M{"email": contains(f.Query)},
			bson.M{"phone": contains(f.Query)},
		}
	}
	return findAll[domain.Admin](ctx, r.c, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}
