// Command seed-db loads catalog seed files into PostgreSQL. Files are read
// concurrently; when several files define the same product id the last file
// on the command line wins.
package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/storage/postgres"
	"github.com/xenking/storefront/internal/storage/seed"
)

func main() {
	var (
		databaseURL  string
		productFiles string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productFiles, "products-file", "db/seed/products.json", "comma separated catalog files (.json or .json.gz)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}

	app.Run(func(ctx context.Context, lg *zap.Logger, _ *app.Telemetry) error {
		if databaseURL == "" {
			return errors.New("database URL is required: set --database-url or DATABASE_URL")
		}
		return run(ctx, lg, databaseURL, strings.Split(productFiles, ","))
	})
}

func run(ctx context.Context, lg *zap.Logger, databaseURL string, files []string) error {
	catalog, err := readCatalogs(ctx, lg, files)
	if err != nil {
		return errors.Wrap(err, "read catalogs")
	}

	lg.Info("Connecting to database")
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := postgres.NewProductRepository(pool).Upsert(ctx, catalog); err != nil {
		return errors.Wrap(err, "seed products")
	}
	lg.Info("Seed completed", zap.Int("products", len(catalog)))
	return nil
}

// readCatalogs reads every file concurrently and merges them by product id.
func readCatalogs(ctx context.Context, lg *zap.Logger, files []string) ([]product.Product, error) {
	results := make([][]product.Product, len(files))

	g, _ := errgroup.WithContext(ctx)
	for i, path := range files {
		path = strings.TrimSpace(path)
		g.Go(func() error {
			items, err := seed.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "read %s", path)
			}
			lg.Info("Read catalog file", zap.String("path", path), zap.Int("products", len(items)))
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string]int)
	var merged []product.Product
	for _, items := range results {
		for _, p := range items {
			if i, ok := byID[p.ID]; ok {
				merged[i] = p
				continue
			}
			byID[p.ID] = len(merged)
			merged = append(merged, p)
		}
	}
	return merged, nil
}
