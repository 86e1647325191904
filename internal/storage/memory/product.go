// Package memory implements in-memory product and order repositories for the
// development API server.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/xenking/storefront/internal/domain/product"
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository is a product.Repository over a fixed catalog.
type ProductRepository struct {
	mu    sync.RWMutex
	items []product.Product
	byID  map[string]int
}

// NewProductRepository returns a repository holding products.
func NewProductRepository(products []product.Product) *ProductRepository {
	r := &ProductRepository{}
	r.Replace(products)
	return r
}

// Replace swaps the whole catalog.
func (r *ProductRepository) Replace(products []product.Product) {
	items := slices.Clone(products)
	slices.SortFunc(items, func(a, b product.Product) int {
		return strings.Compare(a.ID, b.ID)
	})
	byID := make(map[string]int, len(items))
	for i, p := range items {
		byID[p.ID] = i
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = items
	r.byID = byID
}

// List returns all products ordered by ID.
func (r *ProductRepository) List(context.Context) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.items), nil
}

// GetByID returns a single product.
func (r *ProductRepository) GetByID(_ context.Context, id string) (*product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	p := r.items[i]
	return &p, nil
}

// GetByIDs returns the products matching ids. Unknown ids are skipped.
func (r *ProductRepository) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if i, ok := r.byID[id]; ok {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}
