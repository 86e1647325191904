package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/product"
)

// Sentinel errors for order validation.
var (
	ErrEmptyItems     = fmt.Errorf("items required")
	ErrInvalidPayment = fmt.Errorf("unknown payment method")
)

// MissingFieldError indicates a required buyer field was left empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("field %s is required", e.Field)
}

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// NotPurchasableError indicates an order references a product without a price.
type NotPurchasableError struct {
	ProductID string
}

func (e *NotPurchasableError) Error() string {
	return fmt.Sprintf("product %s is not for sale", e.ProductID)
}

// DuplicateItemError indicates the same product was listed twice.
type DuplicateItemError struct {
	ProductID string
}

func (e *DuplicateItemError) Error() string {
	return fmt.Sprintf("product %s listed more than once", e.ProductID)
}

// TotalMismatchError indicates the submitted total differs from the catalog sum.
type TotalMismatchError struct {
	Submitted decimal.Decimal
	Expected  decimal.Decimal
}

func (e *TotalMismatchError) Error() string {
	return fmt.Sprintf("total %s does not match order sum %s", e.Submitted, e.Expected)
}

// Service encapsulates order placement on the API side.
type Service struct {
	products product.Repository
	orders   Repository
	now      func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(products product.Repository, orders Repository) *Service {
	return &Service{
		products: products,
		orders:   orders,
		now:      time.Now,
	}
}

// PlaceOrder validates buyer fields and items against the catalog, checks the
// submitted total, persists the order and returns its confirmation.
func (s *Service) PlaceOrder(ctx context.Context, req Request) (*Confirmation, error) {
	if err := validateFields(req); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	seen := make(map[string]struct{}, len(req.Items))
	for _, id := range req.Items {
		if _, ok := seen[id]; ok {
			return nil, &DuplicateItemError{ProductID: id}
		}
		seen[id] = struct{}{}
	}

	// Batch fetch all products in a single query.
	fetched, err := s.products.GetByIDs(ctx, req.Items)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	expected := decimal.Zero
	for _, id := range req.Items {
		p, ok := byID[id]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: id}
		}
		if !p.Purchasable() {
			return nil, &NotPurchasableError{ProductID: id}
		}
		expected = expected.Add(p.Price.Decimal)
	}
	if !expected.Equal(req.Total) {
		return nil, &TotalMismatchError{Submitted: req.Total, Expected: expected}
	}

	o := &Order{
		ID:        uuid.New().String(),
		Payment:   req.Payment,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Total:     expected,
		Items:     req.Items,
		CreatedAt: s.now(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	return &Confirmation{ID: o.ID, Total: o.Total}, nil
}

func validateFields(req Request) error {
	for _, f := range []struct {
		name  string
		value string
	}{
		{"payment", string(req.Payment)},
		{"email", req.Email},
		{"phone", req.Phone},
		{"address", req.Address},
	} {
		if strings.TrimSpace(f.value) == "" {
			return &MissingFieldError{Field: f.name}
		}
	}
	if !req.Payment.Valid() {
		return ErrInvalidPayment
	}
	return nil
}
