// Package event implements the synchronous publish/subscribe hub that
// decouples the storefront models from each other and from the view layer.
//
// Dispatch is a plain fan-out on the caller's goroutine: Publish returns only
// after every handler registered for the event name has run, in registration
// order. Handlers may publish further events. Each dispatch iterates a
// snapshot of the handler list, so subscribing or unsubscribing from inside a
// handler affects the next dispatch, not the current one.
//
// A failing handler never stops the remaining handlers of a dispatch. Their
// errors are combined and returned from Publish once all handlers have run.
package event

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Handler reacts to a published event.
type Handler func(ctx context.Context, ev Event) error

// PayloadError is returned by typed handlers that received a payload of an
// unexpected Go type for their event name.
type PayloadError struct {
	Name Name
	Got  Event
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("event %s: unexpected payload %T", e.Name, e.Got)
}

type subscription struct {
	id      uint64
	handler Handler
}

// Broker is the storefront event hub.
type Broker struct {
	lg        *zap.Logger
	published metric.Int64Counter

	// mu guards the subscription table only; it is never held while a
	// handler runs.
	mu     sync.RWMutex
	nextID uint64
	subs   map[Name][]subscription
}

// Option configures a Broker.
type Option func(*Broker)

// WithMeterProvider records published events on a counter of the given provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(b *Broker) {
		counter, err := mp.Meter("github.com/xenking/storefront/internal/event").Int64Counter(
			"storefront.event.published",
			metric.WithDescription("Number of published storefront events"),
		)
		if err != nil {
			b.lg.Warn("Create event counter", zap.Error(err))
			return
		}
		b.published = counter
	}
}

// NewBroker creates an empty Broker. A nil logger disables logging.
func NewBroker(lg *zap.Logger, opts ...Option) *Broker {
	if lg == nil {
		lg = zap.NewNop()
	}
	b := &Broker{
		lg:        lg,
		published: noop.Int64Counter{},
		subs:      make(map[Name][]subscription),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Subscribe registers h for events named name and returns a function that
// removes the registration. Calling the returned function more than once is
// harmless.
func (b *Broker) Subscribe(name Name, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[name] = append(b.subs[name], subscription{id: id, handler: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(name, id) })
	}
}

func (b *Broker) remove(name Name, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := slices.DeleteFunc(b.subs[name], func(s subscription) bool {
		return s.id == id
	})
	if len(subs) == 0 {
		delete(b.subs, name)
		return
	}
	b.subs[name] = subs
}

// Subscribers returns the number of handlers registered for name.
func (b *Broker) Subscribers(name Name) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}

// Publish synchronously delivers ev to every handler registered for its name.
// Publishing an event nobody listens to is a no-op.
func (b *Broker) Publish(ctx context.Context, ev Event) error {
	name := ev.Name()

	b.mu.RLock()
	subs := slices.Clone(b.subs[name])
	b.mu.RUnlock()

	b.published.Add(ctx, 1, metric.WithAttributes(attribute.String("event", string(name))))

	var errs error
	for _, s := range subs {
		if err := s.handler(ctx, ev); err != nil {
			b.lg.Debug("Event handler failed",
				zap.String("event", string(name)),
				zap.Error(err),
			)
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// On registers a handler typed by its payload. The event name is taken from
// E, so a handler for CartAdd is only ever called for cart:add.
func On[E Event](b *Broker, h func(ctx context.Context, ev E) error) (unsubscribe func()) {
	var zero E
	return b.Subscribe(zero.Name(), func(ctx context.Context, ev Event) error {
		typed, ok := ev.(E)
		if !ok {
			return &PayloadError{Name: ev.Name(), Got: ev}
		}
		return h(ctx, typed)
	})
}
