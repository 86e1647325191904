// Package wire encodes and decodes the storefront HTTP API bodies with jx.
//
//	GET  /product      -> {"total": n, "items": [Product]}
//	GET  /product/{id} -> Product
//	POST /order        <- {"payment", "email", "phone", "address", "total", "items": [id]}
//	                   -> {"id", "total"}
//	errors             -> {"error": message}
package wire

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

// ProductList is the body of GET /product.
type ProductList struct {
	Total int
	Items []product.Product
}

// EncodeProduct writes p as a JSON object. A priceless product has a null price.
func EncodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("title")
	e.Str(p.Title)
	e.FieldStart("description")
	e.Str(p.Description)
	e.FieldStart("image")
	e.Str(p.Image)
	e.FieldStart("category")
	e.Str(p.Category)
	e.FieldStart("price")
	encodeNullDecimal(e, p.Price)
	e.ObjEnd()
}

// DecodeProduct reads a product object. Unknown fields are skipped.
func DecodeProduct(d *jx.Decoder) (product.Product, error) {
	var p product.Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Str()
		case "title":
			p.Title, err = d.Str()
		case "description":
			p.Description, err = d.Str()
		case "image":
			p.Image, err = d.Str()
		case "category":
			p.Category, err = d.Str()
		case "price":
			p.Price, err = decodeNullDecimal(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	})
	if err != nil {
		return product.Product{}, errors.Wrap(err, "decode product")
	}
	if p.ID == "" {
		return product.Product{}, errors.New("decode product: missing id")
	}
	return p, nil
}

// EncodeProductList writes the catalog response.
func EncodeProductList(e *jx.Encoder, items []product.Product) {
	e.ObjStart()
	e.FieldStart("total")
	e.Int(len(items))
	e.FieldStart("items")
	e.ArrStart()
	for _, p := range items {
		EncodeProduct(e, p)
	}
	e.ArrEnd()
	e.ObjEnd()
}

// DecodeProductList reads the catalog response.
func DecodeProductList(d *jx.Decoder) (ProductList, error) {
	var list ProductList
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "total":
			n, err := d.Int()
			list.Total = n
			if err != nil {
				return errors.Wrap(err, "total")
			}
			return nil
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				p, err := DecodeProduct(d)
				if err != nil {
					return err
				}
				list.Items = append(list.Items, p)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return ProductList{}, errors.Wrap(err, "decode product list")
	}
	return list, nil
}

// EncodeOrderRequest writes the body of POST /order.
func EncodeOrderRequest(e *jx.Encoder, req order.Request) {
	e.ObjStart()
	e.FieldStart("payment")
	e.Str(string(req.Payment))
	e.FieldStart("email")
	e.Str(req.Email)
	e.FieldStart("phone")
	e.Str(req.Phone)
	e.FieldStart("address")
	e.Str(req.Address)
	e.FieldStart("total")
	e.Num(jx.Num(req.Total.String()))
	e.FieldStart("items")
	e.ArrStart()
	for _, id := range req.Items {
		e.Str(id)
	}
	e.ArrEnd()
	e.ObjEnd()
}

// DecodeOrderRequest reads the body of POST /order.
func DecodeOrderRequest(d *jx.Decoder) (order.Request, error) {
	var req order.Request
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "payment":
			var s string
			s, err = d.Str()
			req.Payment = order.Payment(s)
		case "email":
			req.Email, err = d.Str()
		case "phone":
			req.Phone, err = d.Str()
		case "address":
			req.Address, err = d.Str()
		case "total":
			req.Total, err = decodeDecimal(d)
		case "items":
			req.Items = []string{}
			err = d.Arr(func(d *jx.Decoder) error {
				id, err := d.Str()
				if err != nil {
					return err
				}
				req.Items = append(req.Items, id)
				return nil
			})
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	})
	if err != nil {
		return order.Request{}, errors.Wrap(err, "decode order request")
	}
	return req, nil
}

// EncodeConfirmation writes the body of an accepted POST /order.
func EncodeConfirmation(e *jx.Encoder, c order.Confirmation) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(c.ID)
	e.FieldStart("total")
	e.Num(jx.Num(c.Total.String()))
	e.ObjEnd()
}

// DecodeConfirmation reads the body of an accepted POST /order.
func DecodeConfirmation(d *jx.Decoder) (order.Confirmation, error) {
	var c order.Confirmation
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			c.ID, err = d.Str()
		case "total":
			c.Total, err = decodeDecimal(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	})
	if err != nil {
		return order.Confirmation{}, errors.Wrap(err, "decode order confirmation")
	}
	if c.ID == "" {
		return order.Confirmation{}, errors.New("decode order confirmation: missing id")
	}
	return c, nil
}

// EncodeError writes an API error body.
func EncodeError(e *jx.Encoder, msg string) {
	e.ObjStart()
	e.FieldStart("error")
	e.Str(msg)
	e.ObjEnd()
}

// DecodeError reads the message of an API error body. It returns an empty
// message when the body carries no error field.
func DecodeError(d *jx.Decoder) (string, error) {
	var msg string
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "error" {
			return d.Skip()
		}
		var err error
		msg, err = d.Str()
		return err
	})
	if err != nil {
		return "", errors.Wrap(err, "decode error body")
	}
	return msg, nil
}

func encodeNullDecimal(e *jx.Encoder, v decimal.NullDecimal) {
	if !v.Valid {
		e.Null()
		return
	}
	e.Num(jx.Num(v.Decimal.String()))
}

func decodeNullDecimal(d *jx.Decoder) (decimal.NullDecimal, error) {
	if d.Next() == jx.Null {
		return decimal.NullDecimal{}, d.Null()
	}
	v, err := decodeDecimal(d)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(v), nil
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	// String-encoded numbers keep their quotes.
	raw := strings.Trim(n.String(), `"`)
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "parse number %q", raw)
	}
	return v, nil
}
