package domain

import "fmt"

// Pricing selling price and flat discount of a product
type Pricing struct {
	Selling  float64 `json:"selling" bson:"selling"`
	Discount float64 `json:"discount" bson:"discount"`
}

// Effective price after discount
func (p Pricing) Effective() float64 {
	return p.Selling - p.Discount
}

// ProductFlags campaign attributes, one field per flag
type ProductFlags struct {
	IsFeatured    bool `json:"isFeatured" bson:"isFeatured"`
	IsFlashSale   bool `json:"isFlashSale" bson:"isFlashSale"`
	IsBestSelling bool `json:"isBestSelling" bson:"isBestSelling"`
	IsNewArrival  bool `json:"isNewArrival" bson:"isNewArrival"`
}

// Flag names one campaign flag
type Flag int

const (
	FlagFeatured Flag = iota + 1
	FlagFlashSale
	FlagBestSelling
	FlagNewArrival
)

var flagKeys = map[string]Flag{
	"isFeatured":    FlagFeatured,
	"isFlashSale":   FlagFlashSale,
	"isBestSelling": FlagBestSelling,
	"isNewArrival":  FlagNewArrival,
}

// ParseFlag maps the wire key (isFeatured, ...) to a Flag
func ParseFlag(key string) (Flag, error) {
	f, ok := flagKeys[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFlag, key)
	}
	return f, nil
}

func (f Flag) String() string {
	for k, v := range flagKeys {
		if v == f {
			return k
		}
	}
	return fmt.Sprintf("Flag(%d)", int(f))
}

// Get returns the value of flag f
func (pf ProductFlags) Get(f Flag) bool {
	switch f {
	case FlagFeatured:
		return pf.IsFeatured
	case FlagFlashSale:
		return pf.IsFlashSale
	case FlagBestSelling:
		return pf.IsBestSelling
	case FlagNewArrival:
		return pf.IsNewArrival
	}
	return false
}

// Set assigns flag f
func (pf *ProductFlags) Set(f Flag, v bool) error {
	switch f {
	case FlagFeatured:
		pf.IsFeatured = v
	case FlagFlashSale:
		pf.IsFlashSale = v
	case FlagBestSelling:
		pf.IsBestSelling = v
	case FlagNewArrival:
		pf.IsNewArrival = v
	default:
		return fmt.Errorf("%w: %d", ErrUnknownFlag, int(f))
	}
	return nil
}

// Product catalog entry
type Product struct {
	PID      string       `json:"pID" bson:"_id"`
	Name     string       `json:"name" bson:"name"`
	Category string       `json:"category" bson:"category"`
	Price    Pricing      `json:"price" bson:"price"`
	Status   ProductFlags `json:"status" bson:"status"`
	Images   []string     `json:"images" bson:"images"`
	Comments string       `json:"comments,omitempty" bson:"comments,omitempty"`
}

// Clone deep-copies the images slice
func (p Product) Clone() Product {
	cp := p
	cp.Images = append([]string(nil), p.Images...)
	return cp
}

// Category groups products; top categories are promoted on the storefront
type Category struct {
	CatID          string   `json:"catID" bson:"_id"`
	CatName        string   `json:"catName" bson:"catName"`
	Specifications []string `json:"specifications" bson:"specifications"`
	TopCategory    bool     `json:"topCategory" bson:"topCategory"`
}

// Clone deep-copies the specifications slice
func (c Category) Clone() Category {
	cp := c
	cp.Specifications = append([]string(nil), c.Specifications...)
	return cp
}
