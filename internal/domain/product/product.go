package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item. A product without a price is listed but
// cannot be bought.
type Product struct {
	ID          string
	Title       string
	Description string
	Image       string
	Category    string
	Price       decimal.NullDecimal
}

// Purchasable reports whether the product carries a price.
func (p Product) Purchasable() bool {
	return p.Price.Valid
}

// Priced returns a product price that is set to v.
func Priced(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

// Priceless is the price of a product that is not for sale.
var Priceless = decimal.NullDecimal{}

// Sum returns the total price of the purchasable products in ps.
func Sum(ps []Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range ps {
		if p.Price.Valid {
			total = total.Add(p.Price.Decimal)
		}
	}
	return total
}

// IDs returns the identifiers of ps in order.
func IDs(ps []Product) []string {
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
	}
	return ids
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
}
