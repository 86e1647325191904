package server

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/wire"
)

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return
	}
	req, err := wire.DecodeOrderRequest(jx.DecodeBytes(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order body")
		return
	}

	conf, err := h.orders.PlaceOrder(r.Context(), req)
	if err != nil {
		if status, ok := orderErrorStatus(err); ok {
			zctx.From(r.Context()).Info("Order rejected", zap.Error(err))
			writeError(w, status, err.Error())
			return
		}
		internalError(w, r, errors.Wrap(err, "place order"))
		return
	}

	zctx.From(r.Context()).Info("Order placed",
		zap.String("order_id", conf.ID),
		zap.Stringer("total", conf.Total),
		zap.Int("items", len(req.Items)),
	)

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	wire.EncodeConfirmation(e, *conf)
	writeJSON(w, http.StatusOK, e)
}

// orderErrorStatus maps order validation errors to client error statuses.
// Problems with the request shape are 400; items the catalog cannot sell are
// 422.
func orderErrorStatus(err error) (int, bool) {
	var (
		missing    *order.MissingFieldError
		duplicate  *order.DuplicateItemError
		mismatch   *order.TotalMismatchError
		notFound   *order.ProductNotFoundError
		notForSale *order.NotPurchasableError
	)
	switch {
	case errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, order.ErrInvalidPayment),
		errors.As(err, &missing),
		errors.As(err, &duplicate),
		errors.As(err, &mismatch):
		return http.StatusBadRequest, true
	case errors.As(err, &notFound), errors.As(err, &notForSale):
		return http.StatusUnprocessableEntity, true
	default:
		return 0, false
	}
}
