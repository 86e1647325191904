package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

func catalog() []product.Product {
	return []product.Product{
		{ID: "c", Title: "Cube", Price: product.Priced(300)},
		{ID: "a", Title: "Arrow", Price: product.Priced(100)},
		{ID: "b", Title: "Ball", Price: product.Priceless},
	}
}

func TestProductRepository(t *testing.T) {
	ctx := context.Background()
	src := catalog()
	repo := NewProductRepository(src)

	t.Run("list is sorted by id", func(t *testing.T) {
		items, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, product.IDs(items))
	})

	t.Run("get by id", func(t *testing.T) {
		p, err := repo.GetByID(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, "Cube", p.Title)

		_, err = repo.GetByID(ctx, "missing")
		require.ErrorIs(t, err, product.ErrNotFound)
	})

	t.Run("get by ids skips unknown", func(t *testing.T) {
		items, err := repo.GetByIDs(ctx, []string{"c", "x", "a"})
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a"}, product.IDs(items))
	})

	t.Run("source slice is not retained", func(t *testing.T) {
		src[0].Title = "changed"
		p, err := repo.GetByID(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, "Cube", p.Title)
	})

	t.Run("replace", func(t *testing.T) {
		repo.Replace([]product.Product{{ID: "z", Price: product.Priced(1)}})
		items, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"z"}, product.IDs(items))
	})
}

func TestOrderRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	o := &order.Order{
		ID:      "o1",
		Payment: order.PaymentCash,
		Total:   decimal.NewFromInt(400),
		Items:   []string{"a", "c"},
	}
	require.NoError(t, repo.Create(ctx, o))
	o.Items[0] = "mutated"

	got, ok := repo.orders["o1"]
	require.True(t, ok)
	assert.Equal(t, []string{"a", "c"}, got.Items)
	assert.Len(t, repo.orders, 1)

	err := repo.Create(ctx, &order.Order{ID: "o1"})
	require.ErrorIs(t, err, ErrDuplicateOrder)

	assert.Equal(t, []string{"a", "c"}, repo.orders["o1"].Items)
}
