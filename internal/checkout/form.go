package checkout

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/xenking/storefront/internal/domain/order"
)

// DeliveryForm is the first checkout step.
type DeliveryForm struct {
	Address string
	Payment order.Payment
}

// ContactForm is the second checkout step.
type ContactForm struct {
	Email string
	Phone string
}

// ValidationError lists form fields that must be filled before the checkout
// can advance. Fields maps a field name to a message suitable for display.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := slices.Sorted(maps.Keys(e.Fields))
	return fmt.Sprintf("checkout: incomplete form: %s", strings.Join(names, ", "))
}

type fieldCheck struct {
	name  string
	value string
	msg   string
}

func validate(checks ...fieldCheck) error {
	fields := make(map[string]string)
	for _, c := range checks {
		if strings.TrimSpace(c.value) == "" {
			fields[c.name] = c.msg
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// Validate reports empty fields and an unknown payment method.
func (f DeliveryForm) Validate() error {
	err := validate(fieldCheck{name: "address", value: f.Address, msg: "enter a delivery address"})
	if f.Payment.Valid() {
		return err
	}

	const msg = "choose a payment method"
	if verr, ok := err.(*ValidationError); ok {
		verr.Fields["payment"] = msg
		return verr
	}
	return &ValidationError{Fields: map[string]string{"payment": msg}}
}

// Validate reports empty fields.
func (f ContactForm) Validate() error {
	return validate(
		fieldCheck{name: "email", value: f.Email, msg: "enter an email"},
		fieldCheck{name: "phone", value: f.Phone, msg: "enter a phone number"},
	)
}
