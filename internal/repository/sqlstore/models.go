package sqlstore

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"backoffice/internal/domain"
)

// orderRow таблица orders; позиции и адрес хранятся как JSON
type orderRow struct {
	ID            string         `gorm:"column:id;primaryKey;type:varchar(32)"`
	CustomerID    string         `gorm:"column:customer_id;type:varchar(64)"`
	OrderDate     time.Time      `gorm:"column:order_date;not null;index:idx_order_date"`
	Status        string         `gorm:"column:status;type:varchar(16);not null;index:idx_status"`
	Mode          string         `gorm:"column:mode;type:varchar(16);not null"`
	Items         datatypes.JSON `gorm:"column:items;type:json;not null"`
	Subtotal      float64        `gorm:"column:subtotal;not null"`
	ShippingCost  float64        `gorm:"column:shipping_cost;not null"`
	Discount      float64        `gorm:"column:discount;not null"`
	TotalAmount   float64        `gorm:"column:total_amount;not null"`
	PaymentMethod string         `gorm:"column:payment_method;type:varchar(16);not null"`
	PaymentStatus string         `gorm:"column:payment_status;type:varchar(16);not null"`
	Shipping      datatypes.JSON `gorm:"column:shipping_address;type:json"`
	CreatedAt     time.Time      `gorm:"column:created_at;not null"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;not null"`
}

func (orderRow) TableName() string { return "orders" }

type productRow struct {
	PID           string         `gorm:"column:pid;primaryKey;type:varchar(64)"`
	Name          string         `gorm:"column:name;type:varchar(255);not null"`
	Category      string         `gorm:"column:category;type:varchar(64);index:idx_category"`
	Selling       float64        `gorm:"column:price_selling;not null"`
	PriceDiscount float64        `gorm:"column:price_discount;not null"`
	IsFeatured    bool           `gorm:"column:is_featured"`
	IsFlashSale   bool           `gorm:"column:is_flash_sale"`
	IsBestSelling bool           `gorm:"column:is_best_selling"`
	IsNewArrival  bool           `gorm:"column:is_new_arrival"`
	Images        datatypes.JSON `gorm:"column:images;type:json"`
	Comments      string         `gorm:"column:comments;type:text"`
}

func (productRow) TableName() string { return "products" }

var flagColumns = map[domain.Flag]string{
	domain.FlagFeatured:    "is_featured",
	domain.FlagFlashSale:   "is_flash_sale",
	domain.FlagBestSelling: "is_best_selling",
	domain.FlagNewArrival:  "is_new_arrival",
}

type skuRow struct {
	SKUID         string    `gorm:"column:sku_id;primaryKey;type:varchar(64)"`
	ProductID     string    `gorm:"column:product_id;type:varchar(64);not null;index:idx_product"`
	Available     bool      `gorm:"column:available;not null"`
	LinkedOrderID string    `gorm:"column:linked_order_id;type:varchar(32);index:idx_linked_order"`
	Comment       string    `gorm:"column:comment;type:text"`
	CreatedAt     time.Time `gorm:"column:created_at;not null"`
	UpdatedAt     time.Time `gorm:"column:updated_at;not null"`
}

func (skuRow) TableName() string { return "stock_units" }

type categoryRow struct {
	CatID          string         `gorm:"column:cat_id;primaryKey;type:varchar(64)"`
	CatName        string         `gorm:"column:cat_name;type:varchar(255);not null"`
	Specifications datatypes.JSON `gorm:"column:specifications;type:json"`
	TopCategory    bool           `gorm:"column:top_category"`
}

func (categoryRow) TableName() string { return "categories" }

type adminRow struct {
	ID           string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	FullName     string    `gorm:"column:full_name;type:varchar(255)"`
	UserName     string    `gorm:"column:user_name;type:varchar(128)"`
	Email        string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex:uk_email"`
	Images       string    `gorm:"column:images;type:varchar(512)"`
	Phone        string    `gorm:"column:phone;type:varchar(32)"`
	Role         string    `gorm:"column:role;type:varchar(16);not null"`
	Active       bool      `gorm:"column:active;not null"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(128);not null"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null"`
}

func (adminRow) TableName() string { return "admins" }

func toOrderRow(o *domain.Order) (*orderRow, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, err
	}
	addr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return nil, err
	}
	return &orderRow{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		OrderDate:     o.OrderDate,
		Status:        string(o.Status),
		Mode:          string(o.Mode),
		Items:         items,
		Subtotal:      o.Subtotal,
		ShippingCost:  o.ShippingCost,
		Discount:      o.Discount,
		TotalAmount:   o.TotalAmount,
		PaymentMethod: string(o.Payment.Method),
		PaymentStatus: string(o.Payment.Status),
		Shipping:      addr,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}, nil
}

func (r *orderRow) toDomain() (*domain.Order, error) {
	o := &domain.Order{
		ID:           r.ID,
		CustomerID:   r.CustomerID,
		OrderDate:    r.OrderDate,
		Status:       domain.OrderStatus(r.Status),
		Mode:         domain.OrderMode(r.Mode),
		Subtotal:     r.Subtotal,
		ShippingCost: r.ShippingCost,
		Discount:     r.Discount,
		TotalAmount:  r.TotalAmount,
		Payment: domain.Payment{
			Method: domain.PaymentMethod(r.PaymentMethod),
			Status: domain.PaymentStatus(r.PaymentStatus),
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if len(r.Items) > 0 {
		if err := json.Unmarshal(r.Items, &o.Items); err != nil {
			return nil, err
		}
	}
	if len(r.Shipping) > 0 {
		if err := json.Unmarshal(r.Shipping, &o.ShippingAddress); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func toProductRow(p *domain.Product) (*productRow, error) {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return nil, err
	}
	return &productRow{
		PID:           p.PID,
		Name:          p.Name,
		Category:      p.Category,
		Selling:       p.Price.Selling,
		PriceDiscount: p.Price.Discount,
		IsFeatured:    p.Status.IsFeatured,
		IsFlashSale:   p.Status.IsFlashSale,
		IsBestSelling: p.Status.IsBestSelling,
		IsNewArrival:  p.Status.IsNewArrival,
		Images:        images,
		Comments:      p.Comments,
	}, nil
}

func (r *productRow) toDomain() (*domain.Product, error) {
	p := &domain.Product{
		PID:      r.PID,
		Name:     r.Name,
		Category: r.Category,
		Price:    domain.Pricing{Selling: r.Selling, Discount: r.PriceDiscount},
		Status: domain.ProductFlags{
			IsFeatured:    r.IsFeatured,
			IsFlashSale:   r.IsFlashSale,
			IsBestSelling: r.IsBestSelling,
			IsNewArrival:  r.IsNewArrival,
		},
		Comments: r.Comments,
	}
	if len(r.Images) > 0 {
		if err := json.Unmarshal(r.Images, &p.Images); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func toSKURow(s *domain.SKU) *skuRow {
	return &skuRow{
		SKUID:         s.SKUID,
		ProductID:     s.ProductID,
		Available:     s.Available,
		LinkedOrderID: s.LinkedOrderID,
		Comment:       s.Comment,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func (r *skuRow) toDomain() domain.SKU {
	return domain.SKU{
		SKUID:         r.SKUID,
		ProductID:     r.ProductID,
		Available:     r.Available,
		LinkedOrderID: r.LinkedOrderID,
		Comment:       r.Comment,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toCategoryRow(c *domain.Category) (*categoryRow, error) {
	specs, err := json.Marshal(c.Specifications)
	if err != nil {
		return nil, err
	}
	return &categoryRow{CatID: c.CatID, CatName: c.CatName, Specifications: specs, TopCategory: c.TopCategory}, nil
}

func (r *categoryRow) toDomain() (*domain.Category, error) {
	c := &domain.Category{CatID: r.CatID, CatName: r.CatName, TopCategory: r.TopCategory}
	if len(r.Specifications) > 0 {
		if err := json.Unmarshal(r.Specifications, &c.Specifications); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func toAdminRow(a *domain.Admin) *adminRow {
	return &adminRow{
		ID:           a.ID,
		FullName:     a.FullName,
		UserName:     a.UserName,
		Email:        a.Email,
		Images:       a.Images,
		Phone:        a.Phone,
		Role:         string(a.Role),
		Active:       a.Active,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (r *adminRow) toDomain() domain.Admin {
	return domain.Admin{
		ID:           r.ID,
		FullName:     r.FullName,
		UserName:     r.UserName,
		Email:        r.Email,
		Images:       r.Images,
		Phone:        r.Phone,
		Role:         domain.AdminRole(r.Role),
		Active:       r.Active,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
