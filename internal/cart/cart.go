// Package cart holds the products the buyer intends to purchase.
package cart

import (
	"context"
	"slices"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/event"
)

// Cart is the buyer's working set. Every product appears at most once, only
// priced products are admitted, and the total is recomputed from the entries
// after every mutation.
//
// Count and price change events are published together after every mutation,
// including removals of ids that are not in the cart, so views always render
// the current state.
type Cart struct {
	events *event.Broker
	lg     *zap.Logger
	items  []product.Product
	total  decimal.Decimal
}

// New creates an empty Cart that publishes on events.
func New(events *event.Broker, lg *zap.Logger) *Cart {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Cart{
		events: events,
		lg:     lg,
		total:  decimal.Zero,
	}
}

// Add appends p. A priceless product or one already in the cart is ignored
// without publishing anything.
func (c *Cart) Add(ctx context.Context, p product.Product) error {
	if !p.Purchasable() {
		c.lg.Debug("Skip priceless product", zap.String("product_id", p.ID))
		return nil
	}
	if c.Contains(p.ID) {
		return nil
	}

	c.items = append(c.items, p)
	c.recompute()

	return c.publish(ctx,
		event.CartCountChanged{Count: len(c.items)},
		event.CartPriceChanged{Price: c.total},
	)
}

// Remove drops the product with the given id. It publishes the new count,
// the removed product when there was one, and the new total.
func (c *Cart) Remove(ctx context.Context, productID string) error {
	i := slices.IndexFunc(c.items, func(p product.Product) bool {
		return p.ID == productID
	})

	evs := make([]event.Event, 0, 3)
	if i < 0 {
		evs = append(evs, event.CartCountChanged{Count: len(c.items)})
	} else {
		removed := c.items[i]
		c.items = slices.Delete(c.items, i, i+1)
		evs = append(evs,
			event.CartCountChanged{Count: len(c.items)},
			event.CartItemRemoved{Product: removed},
		)
	}
	c.recompute()
	evs = append(evs, event.CartPriceChanged{Price: c.total})

	return c.publish(ctx, evs...)
}

// Clear empties the cart and publishes cart:cleared followed by a zero count
// and a zero total.
func (c *Cart) Clear(ctx context.Context) error {
	c.items = nil
	c.recompute()

	return c.publish(ctx,
		event.CartCleared{},
		event.CartCountChanged{Count: 0},
		event.CartPriceChanged{Price: c.total},
	)
}

// Items returns a copy of the cart entries in insertion order.
func (c *Cart) Items() []product.Product {
	return slices.Clone(c.items)
}

// ItemIDs returns the ids of the cart entries in insertion order.
func (c *Cart) ItemIDs() []string {
	return product.IDs(c.items)
}

// Total returns the sum of the entry prices.
func (c *Cart) Total() decimal.Decimal {
	return c.total
}

// Count returns the number of entries.
func (c *Cart) Count() int {
	return len(c.items)
}

// Contains reports whether a product with the given id is in the cart.
func (c *Cart) Contains(productID string) bool {
	return slices.ContainsFunc(c.items, func(p product.Product) bool {
		return p.ID == productID
	})
}

// recompute resums the total from scratch.
func (c *Cart) recompute() {
	c.total = product.Sum(c.items)
}

// publish delivers evs in order. A failing subscriber does not prevent the
// remaining events from being published.
func (c *Cart) publish(ctx context.Context, evs ...event.Event) error {
	var errs error
	for _, ev := range evs {
		if err := c.events.Publish(ctx, ev); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "publish %s", ev.Name()))
		}
	}
	return errs
}
