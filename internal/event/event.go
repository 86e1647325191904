package event

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/product"
)

// Name is an event tag from the fixed storefront vocabulary.
type Name string

// Event vocabulary shared between the core and the view layer.
const (
	CatalogChangedName        Name = "catalog:changed"
	CartAddName               Name = "cart:add"
	CartRemoveName            Name = "cart:remove"
	CartCountChangedName      Name = "cart:countChanged"
	CartPriceChangedName      Name = "cart:priceChanged"
	CartItemRemovedName       Name = "cart:itemRemoved"
	CartClearedName           Name = "cart:cleared"
	CartViewOpenName          Name = "cartView:open"
	PreviewModalOpenName      Name = "previewModal:open"
	DeliveryFormOpenName      Name = "deliveryForm:open"
	DeliveryFormSubmittedName Name = "deliveryForm:submitted"
	ContactFormOpenName       Name = "contactForm:open"
	ContactFormSubmittedName  Name = "contactForm:submitted"
	OrderConfirmedName        Name = "order:confirmed"
	OrderFailedName           Name = "order:failed"
)

// Event is implemented by every payload type. Each type answers exactly one
// Name, so a handler registered for a name always receives that type.
type Event interface {
	Name() Name
}

// CatalogChanged is published after the catalog was replaced.
type CatalogChanged struct{}

// CartAdd asks the cart to add a product.
type CartAdd struct {
	Product product.Product
}

// CartRemove asks the cart to drop a product by id.
type CartRemove struct {
	ProductID string
}

// CartCountChanged carries the number of products in the cart.
type CartCountChanged struct {
	Count int
}

// CartPriceChanged carries the cart total.
type CartPriceChanged struct {
	Price decimal.Decimal
}

// CartItemRemoved carries the product that left the cart.
type CartItemRemoved struct {
	Product product.Product
}

// CartCleared is published after the cart was emptied.
type CartCleared struct{}

// CartViewOpen asks the view layer to show the cart.
type CartViewOpen struct{}

// PreviewModalOpen asks the view layer to preview a product.
type PreviewModalOpen struct {
	Product product.Product
}

// DeliveryFormOpen starts the checkout.
type DeliveryFormOpen struct{}

// DeliveryFormSubmitted carries the first checkout form.
type DeliveryFormSubmitted struct {
	Address string
	Payment string
}

// ContactFormOpen asks the view layer to show the contact form.
type ContactFormOpen struct{}

// ContactFormSubmitted carries the second checkout form.
type ContactFormSubmitted struct {
	Email string
	Phone string
}

// OrderConfirmed is published once per accepted order.
type OrderConfirmed struct {
	ID    string
	Total decimal.Decimal
}

// OrderFailed is published when the order API rejected or failed a submission.
type OrderFailed struct {
	Err error
}

func (CatalogChanged) Name() Name        { return CatalogChangedName }
func (CartAdd) Name() Name               { return CartAddName }
func (CartRemove) Name() Name            { return CartRemoveName }
func (CartCountChanged) Name() Name      { return CartCountChangedName }
func (CartPriceChanged) Name() Name      { return CartPriceChangedName }
func (CartItemRemoved) Name() Name       { return CartItemRemovedName }
func (CartCleared) Name() Name           { return CartClearedName }
func (CartViewOpen) Name() Name          { return CartViewOpenName }
func (PreviewModalOpen) Name() Name      { return PreviewModalOpenName }
func (DeliveryFormOpen) Name() Name      { return DeliveryFormOpenName }
func (DeliveryFormSubmitted) Name() Name { return DeliveryFormSubmittedName }
func (ContactFormOpen) Name() Name       { return ContactFormOpenName }
func (ContactFormSubmitted) Name() Name  { return ContactFormSubmittedName }
func (OrderConfirmed) Name() Name        { return OrderConfirmedName }
func (OrderFailed) Name() Name           { return OrderFailedName }
