// Package console is a line-based storefront view. It renders change events
// published by the storefront models and turns typed commands into intent
// events. It never mutates a model directly.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/checkout"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/event"
	"github.com/xenking/storefront/internal/flow"
)

// ErrQuit is returned by Exec for the quit command.
var ErrQuit = errors.New("quit")

// categoryTags are the short labels shown next to known categories.
var categoryTags = map[string]string{
	"софт-скил":      "soft",
	"хард-скил":      "hard",
	"другое":         "other",
	"дополнительное": "additional",
	"кнопка":         "button",
}

// CategoryTag returns the display label of a category, or the category itself
// when it has no label.
func CategoryTag(category string) string {
	if tag, ok := categoryTags[category]; ok {
		return tag
	}
	return category
}

// FormatPrice renders a product price. Priceless products are shown as
// "Бесценно".
func FormatPrice(price decimal.NullDecimal) string {
	if !price.Valid {
		return "Бесценно"
	}
	return formatAmount(price.Decimal)
}

func formatAmount(v decimal.Decimal) string {
	return v.String() + " синапсов"
}

const usage = `commands:
  list                          show the catalog
  show <n>                      show product n
  add <n>                       add product n to the cart
  remove <n>                    remove product n from the cart
  cart                          show the cart
  checkout                      start checkout
  delivery <card|cash> <address> enter payment and address
  contact <email> <phone>       enter contacts and place the order
  help                          show this help
  quit                          exit`

// View renders storefront events to out.
type View struct {
	ctl *flow.Controller
	out io.Writer

	unsubscribe []func()
}

// New subscribes a View to the controller's broker.
func New(ctl *flow.Controller, out io.Writer) *View {
	v := &View{ctl: ctl, out: out}
	b := ctl.Events()
	v.unsubscribe = []func(){
		event.On(b, v.onCatalogChanged),
		event.On(b, v.onCountChanged),
		event.On(b, v.onPriceChanged),
		event.On(b, v.onItemRemoved),
		event.On(b, v.onCartCleared),
		event.On(b, v.onContactFormOpen),
		event.On(b, v.onOrderConfirmed),
		event.On(b, v.onOrderFailed),
	}
	return v
}

// Close removes the view's subscriptions.
func (v *View) Close() {
	for _, unsubscribe := range v.unsubscribe {
		unsubscribe()
	}
	v.unsubscribe = nil
}

// Run reads commands from in until EOF, quit or ctx cancellation. Commands are
// executed on the calling goroutine; errors are printed and do not stop the
// loop.
func (v *View) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	v.printf("%s\n> ", usage)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return errors.Wrap(err, "read commands")
					}
					return nil
				default:
					return nil
				}
			}
			if err := v.Exec(ctx, line); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				v.printError(err)
			}
			v.printf("> ")
		}
	}
}

// Exec executes one command line.
func (v *View) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]
	b := v.ctl.Events()

	switch cmd {
	case "help":
		v.printf("%s\n", usage)
		return nil
	case "quit", "exit":
		return ErrQuit
	case "list":
		v.list()
		return nil
	case "show":
		p, err := v.product(args)
		if err != nil {
			return err
		}
		if err := b.Publish(ctx, event.PreviewModalOpen{Product: p}); err != nil {
			return err
		}
		v.show(p)
		return nil
	case "add":
		p, err := v.product(args)
		if err != nil {
			return err
		}
		if !p.Purchasable() {
			return errors.Errorf("%s is not for sale", p.Title)
		}
		return b.Publish(ctx, event.CartAdd{Product: p})
	case "remove":
		p, err := v.product(args)
		if err != nil {
			return err
		}
		return b.Publish(ctx, event.CartRemove{ProductID: p.ID})
	case "cart":
		if err := b.Publish(ctx, event.CartViewOpen{}); err != nil {
			return err
		}
		v.cart()
		return nil
	case "checkout":
		if err := b.Publish(ctx, event.DeliveryFormOpen{}); err != nil {
			return err
		}
		v.printf("Payment (%s) and address: delivery <payment> <address>\n", joinPayments())
		return nil
	case "delivery":
		if len(args) < 2 {
			return errors.New("usage: delivery <card|cash> <address>")
		}
		return b.Publish(ctx, event.DeliveryFormSubmitted{
			Payment: args[0],
			Address: strings.Join(args[1:], " "),
		})
	case "contact":
		if len(args) != 2 {
			return errors.New("usage: contact <email> <phone>")
		}
		return b.Publish(ctx, event.ContactFormSubmitted{Email: args[0], Phone: args[1]})
	default:
		return errors.Errorf("unknown command %q, type help", cmd)
	}
}

func (v *View) product(args []string) (product.Product, error) {
	if len(args) != 1 {
		return product.Product{}, errors.New("expected a product number")
	}
	n, err := strconv.Atoi(args[0])
	items := v.ctl.Catalog().All()
	if err != nil || n < 1 || n > len(items) {
		return product.Product{}, errors.Errorf("no product %q, see list", args[0])
	}
	return items[n-1], nil
}

func (v *View) list() {
	items := v.ctl.Catalog().All()
	if len(items) == 0 {
		v.printf("Catalog is empty\n")
		return
	}
	for i, p := range items {
		mark := " "
		if v.ctl.Cart().Contains(p.ID) {
			mark = "*"
		}
		v.printf("%s%2d. [%s] %s - %s\n", mark, i+1, CategoryTag(p.Category), p.Title, FormatPrice(p.Price))
	}
}

func (v *View) show(p product.Product) {
	v.printf("%s [%s]\n%s\n%s\n%s\n", p.Title, CategoryTag(p.Category), p.Description, p.Image, FormatPrice(p.Price))
	switch {
	case !p.Purchasable():
		v.printf("Not for sale\n")
	case v.ctl.Cart().Contains(p.ID):
		v.printf("In cart\n")
	}
}

func (v *View) cart() {
	items := v.ctl.Cart().Items()
	if len(items) == 0 {
		v.printf("Cart is empty\n")
		return
	}
	for i, p := range items {
		v.printf("%2d. %s - %s\n", i+1, p.Title, FormatPrice(p.Price))
	}
	v.printf("Total: %s\n", formatAmount(v.ctl.Cart().Total()))
}

func (v *View) onCatalogChanged(context.Context, event.CatalogChanged) error {
	v.printf("Catalog: %d products\n", v.ctl.Catalog().Count())
	return nil
}

func (v *View) onCountChanged(_ context.Context, ev event.CartCountChanged) error {
	v.printf("Cart: %d items\n", ev.Count)
	return nil
}

func (v *View) onPriceChanged(_ context.Context, ev event.CartPriceChanged) error {
	v.printf("Cart total: %s\n", formatAmount(ev.Price))
	return nil
}

func (v *View) onItemRemoved(_ context.Context, ev event.CartItemRemoved) error {
	v.printf("Removed %s\n", ev.Product.Title)
	return nil
}

func (v *View) onCartCleared(context.Context, event.CartCleared) error {
	v.printf("Cart cleared\n")
	return nil
}

func (v *View) onContactFormOpen(context.Context, event.ContactFormOpen) error {
	v.printf("Contacts: contact <email> <phone>\n")
	return nil
}

func (v *View) onOrderConfirmed(_ context.Context, ev event.OrderConfirmed) error {
	v.printf("Order %s placed. Списано %s синапсов\n", ev.ID, ev.Total)
	return nil
}

func (v *View) onOrderFailed(context.Context, event.OrderFailed) error {
	v.printf("Order was not accepted, resubmit contacts to retry\n")
	return nil
}

func (v *View) printError(err error) {
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		for _, name := range slices.Sorted(maps.Keys(verr.Fields)) {
			v.printf("  %s: %s\n", name, verr.Fields[name])
		}
		return
	}
	v.printf("error: %v\n", err)
}

func (v *View) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(v.out, format, args...)
}

func joinPayments() string {
	names := make([]string, len(order.Payments))
	for i, p := range order.Payments {
		names[i] = string(p)
	}
	return strings.Join(names, "|")
}
