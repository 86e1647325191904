package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/event"
	"github.com/xenking/storefront/internal/flow"
)

// --- Mock implementations ---

type fakeAPI struct {
	requests []order.Request
	err      error
}

func (f *fakeAPI) ListProducts(context.Context) ([]product.Product, error) {
	return []product.Product{
		{ID: "a", Title: "Widget", Category: "софт-скил", Price: product.Priced(750)},
		{ID: "b", Title: "Artifact", Category: "другое", Price: product.Priceless},
		{ID: "c", Title: "Pill", Category: "unknown", Price: product.Priced(250)},
	}, nil
}

func (f *fakeAPI) PlaceOrder(_ context.Context, req order.Request) (*order.Confirmation, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &order.Confirmation{ID: "o1", Total: req.Total}, nil
}

// --- Helpers ---

func newView(t *testing.T, api *fakeAPI) (*View, *bytes.Buffer) {
	t.Helper()
	lg := zaptest.NewLogger(t)
	ctl := flow.New(event.NewBroker(lg), api, lg)
	t.Cleanup(ctl.Close)

	var out bytes.Buffer
	v := New(ctl, &out)
	t.Cleanup(v.Close)

	require.NoError(t, ctl.Start(context.Background(), api))
	return v, &out
}

// --- Tests ---

func TestFormatting(t *testing.T) {
	assert.Equal(t, "Бесценно", FormatPrice(product.Priceless))
	assert.Equal(t, "750 синапсов", FormatPrice(product.Priced(750)))
	assert.Equal(t, "soft", CategoryTag("софт-скил"))
	assert.Equal(t, "unknown", CategoryTag("unknown"))
}

func TestRun_Checkout(t *testing.T) {
	api := &fakeAPI{}
	v, out := newView(t, api)
	assert.Contains(t, out.String(), "Catalog: 3 products")

	script := strings.Join([]string{
		"list",
		"add 1",
		"add 3",
		"cart",
		"checkout",
		"delivery card Moscow, Red Square 1",
		"contact y@z.com +71234567890",
		"quit",
		"list",
	}, "\n")
	require.NoError(t, v.Run(context.Background(), strings.NewReader(script)))

	text := out.String()
	assert.Contains(t, text, " 1. [soft] Widget - 750 синапсов")
	assert.Contains(t, text, " 2. [other] Artifact - Бесценно")
	assert.Contains(t, text, "Cart: 2 items")
	assert.Contains(t, text, "Total: 1000 синапсов")
	assert.Contains(t, text, "Contacts: contact <email> <phone>")
	assert.Contains(t, text, "Order o1 placed. Списано 1000 синапсов")
	assert.Contains(t, text, "Cart cleared")

	require.Len(t, api.requests, 1)
	req := api.requests[0]
	assert.Equal(t, []string{"a", "c"}, req.Items)
	assert.Equal(t, "Moscow, Red Square 1", req.Address)
	assert.True(t, decimal.NewFromInt(1000).Equal(req.Total))
}

func TestRun_EOF(t *testing.T) {
	v, out := newView(t, &fakeAPI{})

	require.NoError(t, v.Run(context.Background(), strings.NewReader("help\n")))
	assert.Contains(t, out.String(), "commands:")
}

func TestExec_Errors(t *testing.T) {
	ctx := context.Background()
	v, out := newView(t, &fakeAPI{})

	require.ErrorContains(t, v.Exec(ctx, "add 2"), "not for sale")
	require.ErrorContains(t, v.Exec(ctx, "add 9"), "no product")
	require.ErrorContains(t, v.Exec(ctx, "frobnicate"), "unknown command")
	require.ErrorIs(t, v.Exec(ctx, "quit"), ErrQuit)
	require.NoError(t, v.Exec(ctx, "   "))

	// Checkout cannot start with an empty cart.
	require.Error(t, v.Exec(ctx, "checkout"))

	require.NoError(t, v.Exec(ctx, "add 1"))
	require.NoError(t, v.Exec(ctx, "checkout"))

	out.Reset()
	err := v.Exec(ctx, "delivery barter X")
	require.Error(t, err)
	v.printError(err)
	assert.Contains(t, out.String(), "payment:")
}

func TestExec_OrderFailure(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{err: errors.New("503 Service Unavailable")}
	v, out := newView(t, api)

	for _, line := range []string{"add 1", "checkout", "delivery cash X"} {
		require.NoError(t, v.Exec(ctx, line), line)
	}
	require.Error(t, v.Exec(ctx, "contact y@z.com 123"))
	assert.Contains(t, out.String(), "Order was not accepted")

	api.err = nil
	require.NoError(t, v.Exec(ctx, "contact y@z.com 123"))
	assert.Contains(t, out.String(), "Order o1 placed")
}

func TestExec_RemoveAndShow(t *testing.T) {
	ctx := context.Background()
	v, out := newView(t, &fakeAPI{})

	require.NoError(t, v.Exec(ctx, "add 1"))
	require.NoError(t, v.Exec(ctx, "show 1"))
	assert.Contains(t, out.String(), "In cart")

	require.NoError(t, v.Exec(ctx, "remove 1"))
	assert.Contains(t, out.String(), "Removed Widget")

	out.Reset()
	require.NoError(t, v.Exec(ctx, "cart"))
	assert.Equal(t, "Cart is empty\n", out.String())

	require.NoError(t, v.Exec(ctx, "show 2"))
	assert.Contains(t, out.String(), "Not for sale")
}
