// Package catalog holds the product list fetched once per session.
package catalog

import (
	"context"
	"slices"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/event"
)

// Catalog is the read-only product snapshot of the session. Count always
// equals the length of the held sequence.
type Catalog struct {
	events *event.Broker
	items  []product.Product
	byID   map[string]int
	count  int
}

// New creates an empty Catalog that publishes on events.
func New(events *event.Broker) *Catalog {
	return &Catalog{
		events: events,
		byID:   make(map[string]int),
	}
}

// Load replaces the held products, recomputes the count and publishes
// catalog:changed. Subscribers re-read through All or ByID.
func (c *Catalog) Load(ctx context.Context, products []product.Product) error {
	c.items = slices.Clone(products)
	c.count = len(c.items)
	c.byID = make(map[string]int, c.count)
	for i, p := range c.items {
		if _, ok := c.byID[p.ID]; !ok {
			c.byID[p.ID] = i
		}
	}

	if err := c.events.Publish(ctx, event.CatalogChanged{}); err != nil {
		return errors.Wrap(err, "publish catalog changed")
	}
	return nil
}

// All returns the products in feed order.
func (c *Catalog) All() []product.Product {
	return slices.Clone(c.items)
}

// Count returns the number of products.
func (c *Catalog) Count() int {
	return c.count
}

// ByID returns the product with the given id. The boolean is false when the
// catalog has no such product.
func (c *Catalog) ByID(id string) (product.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return product.Product{}, false
	}
	return c.items[i], true
}
