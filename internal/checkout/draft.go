// Package checkout implements the order draft: an explicit state machine that
// accumulates the two checkout forms, snapshots the cart and submits the order.
package checkout

import (
	"context"
	"slices"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/event"
)

// Sentinel errors for checkout steps.
var (
	ErrSubmissionInFlight = errors.New("checkout: order submission in flight")
	ErrEmptyCart          = errors.New("checkout: cart is empty")
	ErrNoConfirmation     = errors.New("checkout: order API returned no confirmation")
)

// Submitter sends a complete order to the order API.
type Submitter interface {
	PlaceOrder(ctx context.Context, req order.Request) (*order.Confirmation, error)
}

// Snapshot is the cart content captured together with the contact form.
type Snapshot struct {
	Items []string
	Total decimal.Decimal
}

// Draft is the order being checked out. It is not safe for concurrent use;
// the storefront drives it from a single goroutine.
type Draft struct {
	events *event.Broker
	orders Submitter
	lg     *zap.Logger
	tracer trace.Tracer

	state   State
	payment order.Payment
	address string
	email   string
	phone   string
	total   decimal.Decimal
	items   []string
}

// Option configures a Draft.
type Option func(*Draft)

// WithTracerProvider traces order submissions with the given provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(d *Draft) {
		d.tracer = tp.Tracer("github.com/xenking/storefront/internal/checkout")
	}
}

// NewDraft creates an Empty draft.
func NewDraft(events *event.Broker, orders Submitter, lg *zap.Logger, opts ...Option) *Draft {
	if lg == nil {
		lg = zap.NewNop()
	}
	d := &Draft{
		events: events,
		orders: orders,
		lg:     lg,
		tracer: noop.NewTracerProvider().Tracer(""),
		total:  decimal.Zero,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// State returns the current checkout stage.
func (d *Draft) State() State {
	return d.state
}

// Request returns the order request assembled from the captured fields.
func (d *Draft) Request() order.Request {
	return order.Request{
		Payment: d.payment,
		Email:   d.email,
		Phone:   d.phone,
		Address: d.address,
		Total:   d.total,
		Items:   slices.Clone(d.items),
	}
}

// CaptureDelivery stores payment method and address and publishes
// contactForm:open. An incomplete form leaves the draft untouched.
func (d *Draft) CaptureDelivery(ctx context.Context, f DeliveryForm) error {
	if err := f.Validate(); err != nil {
		return err
	}
	to, err := next(d.state, TriggerDelivery)
	if err != nil {
		return err
	}

	d.payment = f.Payment
	d.address = f.Address
	d.move(TriggerDelivery, to)

	if err := d.events.Publish(ctx, event.ContactFormOpen{}); err != nil {
		return errors.Wrap(err, "publish contact form open")
	}
	return nil
}

// CaptureContact stores email and phone together with the cart snapshot.
func (d *Draft) CaptureContact(_ context.Context, f ContactForm, snap Snapshot) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if len(snap.Items) == 0 {
		return ErrEmptyCart
	}
	to, err := next(d.state, TriggerContact)
	if err != nil {
		return err
	}

	d.email = f.Email
	d.phone = f.Phone
	d.items = slices.Clone(snap.Items)
	d.total = snap.Total
	d.move(TriggerContact, to)
	return nil
}

// Submit sends the captured order. The draft must be in ContactCaptured with
// every field present, otherwise the order API is not called.
//
// On success the draft returns to Empty and order:confirmed is published. On
// failure the draft returns to ContactCaptured so the buyer can retry,
// order:failed is published and the error is returned.
func (d *Draft) Submit(ctx context.Context) error {
	if d.state == Submitted {
		return ErrSubmissionInFlight
	}
	to, err := next(d.state, TriggerSubmit)
	if err != nil {
		return err
	}
	if err := d.complete(); err != nil {
		return err
	}
	d.move(TriggerSubmit, to)

	req := d.Request()
	ctx, span := d.tracer.Start(ctx, "checkout.Submit",
		trace.WithAttributes(
			attribute.Int("order.items", len(req.Items)),
			attribute.String("order.payment", string(req.Payment)),
		),
	)
	defer span.End()

	conf, err := d.orders.PlaceOrder(ctx, req)
	if err == nil && conf == nil {
		err = ErrNoConfirmation
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "place order")
		return d.fail(ctx, errors.Wrap(err, "place order"))
	}

	span.SetAttributes(attribute.String("order.id", conf.ID))
	d.lg.Info("Order confirmed",
		zap.String("order_id", conf.ID),
		zap.Stringer("total", conf.Total),
	)

	to, _ = next(d.state, TriggerConfirmed)
	d.clear()
	d.move(TriggerConfirmed, to)

	if err := d.events.Publish(ctx, event.OrderConfirmed{ID: conf.ID, Total: conf.Total}); err != nil {
		return errors.Wrap(err, "publish order confirmed")
	}
	return nil
}

// Reset discards the captured data to start a new checkout attempt. It is
// refused while a submission is in flight.
func (d *Draft) Reset() error {
	if d.state == Submitted {
		return ErrSubmissionInFlight
	}
	to, err := next(d.state, TriggerReset)
	if err != nil {
		return err
	}
	d.clear()
	d.move(TriggerReset, to)
	return nil
}

func (d *Draft) fail(ctx context.Context, err error) error {
	d.lg.Error("Order submission failed", zap.Error(err))

	to, _ := next(d.state, TriggerFailed)
	d.move(TriggerFailed, to)

	if perr := d.events.Publish(ctx, event.OrderFailed{Err: err}); perr != nil {
		err = multierr.Append(err, errors.Wrap(perr, "publish order failed"))
	}
	return err
}

// complete checks that every field required by the order API is present.
func (d *Draft) complete() error {
	verr := validate(
		fieldCheck{name: "payment", value: string(d.payment), msg: "choose a payment method"},
		fieldCheck{name: "address", value: d.address, msg: "enter a delivery address"},
		fieldCheck{name: "email", value: d.email, msg: "enter an email"},
		fieldCheck{name: "phone", value: d.phone, msg: "enter a phone number"},
	)
	if verr != nil {
		return verr
	}
	if len(d.items) == 0 {
		return ErrEmptyCart
	}
	return nil
}

func (d *Draft) clear() {
	d.payment = ""
	d.address = ""
	d.email = ""
	d.phone = ""
	d.total = decimal.Zero
	d.items = nil
}

func (d *Draft) move(t Trigger, to State) {
	d.lg.Debug("Checkout transition",
		zap.Stringer("from", d.state),
		zap.Stringer("to", to),
		zap.String("trigger", string(t)),
	)
	d.state = to
}
