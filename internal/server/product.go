package server

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/wire"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	items, err := h.products.List(r.Context())
	if err != nil {
		internalError(w, r, errors.Wrap(err, "list products"))
		return
	}

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	wire.EncodeProductList(e, items)
	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NotFound")
			return
		}
		internalError(w, r, errors.Wrapf(err, "get product %s", id))
		return
	}

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	wire.EncodeProduct(e, *p)
	writeJSON(w, http.StatusOK, e)
}
