package app

import (
	"context"
	"fmt"
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/checkout"
	"github.com/xenking/storefront/internal/client"
	"github.com/xenking/storefront/internal/console"
	"github.com/xenking/storefront/internal/event"
	"github.com/xenking/storefront/internal/flow"
)

// RunStorefront runs the console storefront against the configured API until
// in is exhausted, the user quits or ctx is cancelled.
func RunStorefront(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config, in io.Reader, out io.Writer) error {
	api, err := client.New(client.Config{
		BaseURL:      cfg.APIURL,
		ImageBaseURL: cfg.ImageBaseURL,
		Timeout:      cfg.Timeout,
	},
		client.WithTracerProvider(m.TracerProvider()),
		client.WithMeterProvider(m.MeterProvider()),
	)
	if err != nil {
		return errors.Wrap(err, "create api client")
	}

	events := event.NewBroker(lg.Named("events"), event.WithMeterProvider(m.MeterProvider()))
	ctl := flow.New(events, api, lg.Named("flow"), checkout.WithTracerProvider(m.TracerProvider()))
	defer ctl.Close()

	view := console.New(ctl, out)
	defer view.Close()

	if err := ctl.Start(ctx, api); err != nil {
		// The storefront stays usable with an empty catalog.
		_, _ = fmt.Fprintf(out, "Catalog unavailable: %v\n", err)
	}
	return view.Run(ctx, in)
}
