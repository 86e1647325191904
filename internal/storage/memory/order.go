package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/order"
)

// ErrDuplicateOrder is returned when an order id is stored twice.
var ErrDuplicateOrder = errors.New("order already exists")

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository keeps placed orders in memory.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]order.Order
}

// NewOrderRepository returns an empty OrderRepository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]order.Order)}
}

// Create stores o.
func (r *OrderRepository) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; ok {
		return errors.Wrapf(ErrDuplicateOrder, "create order %s", o.ID)
	}
	stored := *o
	stored.Items = slices.Clone(o.Items)
	r.orders[o.ID] = stored
	return nil
}
