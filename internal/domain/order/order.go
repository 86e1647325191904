package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Payment is the payment method chosen on the delivery form.
type Payment string

const (
	// PaymentCard is an online card payment.
	PaymentCard Payment = "card"
	// PaymentCash is cash on delivery.
	PaymentCash Payment = "cash"
)

// Payments lists the payment methods offered to the buyer, in display order.
var Payments = []Payment{PaymentCard, PaymentCash}

// Valid reports whether p is one of the offered payment methods.
func (p Payment) Valid() bool {
	for _, v := range Payments {
		if p == v {
			return true
		}
	}
	return false
}

// Request is the body of an order submission.
type Request struct {
	Payment Payment
	Email   string
	Phone   string
	Address string
	Total   decimal.Decimal
	Items   []string
}

// Confirmation is returned by the order API for an accepted order.
type Confirmation struct {
	ID    string
	Total decimal.Decimal
}

// Order represents a placed order.
type Order struct {
	ID        string
	Payment   Payment
	Email     string
	Phone     string
	Address   string
	Total     decimal.Decimal
	Items     []string
	CreatedAt time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, order *Order) error
}
