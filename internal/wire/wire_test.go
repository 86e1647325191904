package wire

import (
	"testing"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

const catalogBody = `{
	"total": 2,
	"items": [
		{
			"id": "854cef69-976d-4c2a-a18c-2aa45046c390",
			"description": "Если планируете решать задачи в тренажёре, берите два.",
			"image": "/5_Dots.svg",
			"title": "+1 час в сутках",
			"category": "софт-скил",
			"price": 750
		},
		{
			"id": "b06cde61-912f-4663-9751-09956c0eed67",
			"description": "Будет стоять над душой и не давать прокрастинировать.",
			"image": "/Asterisk_2.svg",
			"title": "Мамка-таймер",
			"category": "софт-скил",
			"price": null,
			"rating": 5
		}
	]
}`

func TestDecodeProductList(t *testing.T) {
	list, err := DecodeProductList(jx.DecodeStr(catalogBody))
	require.NoError(t, err)

	assert.Equal(t, 2, list.Total)
	require.Len(t, list.Items, 2)

	first := list.Items[0]
	assert.Equal(t, "854cef69-976d-4c2a-a18c-2aa45046c390", first.ID)
	assert.Equal(t, "+1 час в сутках", first.Title)
	assert.Equal(t, "/5_Dots.svg", first.Image)
	require.True(t, first.Purchasable())
	assert.True(t, decimal.NewFromInt(750).Equal(first.Price.Decimal))

	assert.False(t, list.Items[1].Purchasable())
}

func TestDecodeProduct_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing id", body: `{"title":"x","price":1}`},
		{name: "price is text", body: `{"id":"a","price":"cheap"}`},
		{name: "not an object", body: `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeProduct(jx.DecodeStr(tt.body))
			require.Error(t, err)
		})
	}
}

func TestProductList_Encode(t *testing.T) {
	var e jx.Encoder
	EncodeProductList(&e, []product.Product{
		{ID: "a", Title: "Widget", Price: product.Priced(750)},
		{ID: "b", Title: "Artifact", Price: product.Priceless},
	})

	assert.JSONEq(t, `{"total":2,"items":[
		{"id":"a","title":"Widget","description":"","image":"","category":"","price":750},
		{"id":"b","title":"Artifact","description":"","image":"","category":"","price":null}
	]}`, e.String())
}

func TestOrderRequest(t *testing.T) {
	req := order.Request{
		Payment: order.PaymentCard,
		Email:   "y@z.com",
		Phone:   "123",
		Address: "X",
		Total:   decimal.NewFromInt(750),
		Items:   []string{"a"},
	}

	var e jx.Encoder
	EncodeOrderRequest(&e, req)
	assert.JSONEq(t, `{"payment":"card","email":"y@z.com","phone":"123","address":"X","total":750,"items":["a"]}`, e.String())

	got, err := DecodeOrderRequest(jx.DecodeBytes(e.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, req.Items, got.Items)
	assert.Equal(t, req.Payment, got.Payment)
	assert.True(t, req.Total.Equal(got.Total))
}

func TestDecodeConfirmation(t *testing.T) {
	c, err := DecodeConfirmation(jx.DecodeStr(`{"id":"o1","total":750}`))
	require.NoError(t, err)
	assert.Equal(t, "o1", c.ID)
	assert.True(t, decimal.NewFromInt(750).Equal(c.Total))

	_, err = DecodeConfirmation(jx.DecodeStr(`{"total":750}`))
	require.Error(t, err)
}

func TestErrorBody(t *testing.T) {
	var e jx.Encoder
	EncodeError(&e, "Неверная сумма заказа")
	assert.JSONEq(t, `{"error":"Неверная сумма заказа"}`, e.String())

	msg, err := DecodeError(jx.DecodeBytes(e.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "Неверная сумма заказа", msg)

	msg, err = DecodeError(jx.DecodeStr(`{"message":"other"}`))
	require.NoError(t, err)
	assert.Empty(t, msg)
}

func TestDecodeProduct_Minimal(t *testing.T) {
	p, err := DecodeProduct(jx.DecodeStr(`{"id":"a","price":750}`))
	require.NoError(t, err)
	assert.Equal(t, "a", p.ID)
	assert.True(t, decimal.NewFromInt(750).Equal(p.Price.Decimal))
}

func TestDecodeDecimal_Quoted(t *testing.T) {
	p, err := DecodeProduct(jx.DecodeStr(`{"id":"a","price":"750.50"}`))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("750.5").Equal(p.Price.Decimal))

	conf, err := DecodeConfirmation(jx.DecodeStr(`{"id":"o1","total":"750"}`))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(750).Equal(conf.Total))

	_, err = DecodeProduct(jx.DecodeStr(`{"id":"a","price":"cheap"}`))
	require.Error(t, err)
}
