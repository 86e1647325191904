// Package flow wires the storefront models to the event vocabulary. The
// Controller is the application context: it owns the catalog, the cart and the
// order draft and is the only place that maps intent events to model
// operations.
package flow

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/cart"
	"github.com/xenking/storefront/internal/catalog"
	"github.com/xenking/storefront/internal/checkout"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/event"
)

// CatalogSource fetches the product catalog.
type CatalogSource interface {
	ListProducts(ctx context.Context) ([]product.Product, error)
}

// Controller routes intent events to the storefront models.
//
//	cart:add               -> Cart.Add
//	cart:remove            -> Cart.Remove
//	cartView:open          -> read only
//	previewModal:open      -> read only
//	deliveryForm:open      -> Draft.Reset (fresh checkout attempt)
//	deliveryForm:submitted -> Draft.CaptureDelivery
//	contactForm:submitted  -> Draft.CaptureContact + Draft.Submit
//	order:confirmed        -> Cart.Clear
//
// Like the models it owns, a Controller must be driven from one goroutine.
type Controller struct {
	lg      *zap.Logger
	events  *event.Broker
	catalog *catalog.Catalog
	cart    *cart.Cart
	draft   *checkout.Draft

	unsubscribe []func()
}

// New creates the storefront models on events and registers the routing
// table. Orders are submitted through orders.
func New(events *event.Broker, orders checkout.Submitter, lg *zap.Logger, opts ...checkout.Option) *Controller {
	if lg == nil {
		lg = zap.NewNop()
	}
	c := &Controller{
		lg:      lg,
		events:  events,
		catalog: catalog.New(events),
		cart:    cart.New(events, lg.Named("cart")),
		draft:   checkout.NewDraft(events, orders, lg.Named("checkout"), opts...),
	}
	c.unsubscribe = []func(){
		event.On(events, c.onCartAdd),
		event.On(events, c.onCartRemove),
		event.On(events, c.onCartViewOpen),
		event.On(events, c.onPreviewOpen),
		event.On(events, c.onDeliveryFormOpen),
		event.On(events, c.onDeliverySubmitted),
		event.On(events, c.onContactSubmitted),
		event.On(events, c.onOrderConfirmed),
	}
	return c
}

// Start fetches the catalog once and loads it. On failure the catalog stays
// empty and the error is returned for the view layer to report.
func (c *Controller) Start(ctx context.Context, src CatalogSource) error {
	products, err := src.ListProducts(ctx)
	if err != nil {
		c.lg.Error("Catalog fetch failed", zap.Error(err))
		return errors.Wrap(err, "fetch catalog")
	}
	if err := c.catalog.Load(ctx, products); err != nil {
		return errors.Wrap(err, "load catalog")
	}
	c.lg.Info("Catalog loaded", zap.Int("products", c.catalog.Count()))
	return nil
}

// Close removes every subscription made by New.
func (c *Controller) Close() {
	for _, unsubscribe := range c.unsubscribe {
		unsubscribe()
	}
	c.unsubscribe = nil
}

// Events returns the broker views publish intents on.
func (c *Controller) Events() *event.Broker { return c.events }

// Catalog returns the session catalog.
func (c *Controller) Catalog() *catalog.Catalog { return c.catalog }

// Cart returns the session cart.
func (c *Controller) Cart() *cart.Cart { return c.cart }

// Draft returns the order draft.
func (c *Controller) Draft() *checkout.Draft { return c.draft }

func (c *Controller) onCartAdd(ctx context.Context, ev event.CartAdd) error {
	return c.cart.Add(ctx, ev.Product)
}

func (c *Controller) onCartRemove(ctx context.Context, ev event.CartRemove) error {
	return c.cart.Remove(ctx, ev.ProductID)
}

func (c *Controller) onCartViewOpen(context.Context, event.CartViewOpen) error {
	c.lg.Debug("Cart view opened", zap.Int("items", c.cart.Count()))
	return nil
}

func (c *Controller) onPreviewOpen(_ context.Context, ev event.PreviewModalOpen) error {
	c.lg.Debug("Preview opened",
		zap.String("product_id", ev.Product.ID),
		zap.Bool("in_cart", c.cart.Contains(ev.Product.ID)),
	)
	return nil
}

func (c *Controller) onDeliveryFormOpen(context.Context, event.DeliveryFormOpen) error {
	if c.cart.Count() == 0 {
		return checkout.ErrEmptyCart
	}
	return c.draft.Reset()
}

func (c *Controller) onDeliverySubmitted(ctx context.Context, ev event.DeliveryFormSubmitted) error {
	return c.draft.CaptureDelivery(ctx, checkout.DeliveryForm{
		Address: ev.Address,
		Payment: order.Payment(ev.Payment),
	})
}

func (c *Controller) onContactSubmitted(ctx context.Context, ev event.ContactFormSubmitted) error {
	snap := checkout.Snapshot{
		Items: c.cart.ItemIDs(),
		Total: c.cart.Total(),
	}
	form := checkout.ContactForm{Email: ev.Email, Phone: ev.Phone}
	if err := c.draft.CaptureContact(ctx, form, snap); err != nil {
		return err
	}
	return c.draft.Submit(ctx)
}

func (c *Controller) onOrderConfirmed(ctx context.Context, _ event.OrderConfirmed) error {
	return c.cart.Clear(ctx)
}
