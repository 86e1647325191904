// Package seed reads catalog seed files. A seed file holds a GET /product
// response body; files ending in .gz are gzip-compressed.
package seed

import (
	"io"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/klauspost/pgzip"

	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/wire"
)

// maxSeedSize bounds the decompressed size of a seed file.
const maxSeedSize = 64 << 20

// Read decodes an uncompressed seed body.
func Read(r io.Reader) ([]product.Product, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSeedSize))
	if err != nil {
		return nil, errors.Wrap(err, "read seed")
	}
	list, err := wire.DecodeProductList(jx.DecodeBytes(data))
	if err != nil {
		return nil, errors.Wrap(err, "decode seed")
	}
	return list.Items, nil
}

// ReadFile decodes the seed file at path, decompressing it when the name ends
// in .gz.
func ReadFile(path string) (_ []product.Product, rerr error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open seed")
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = errors.Wrap(err, "close seed")
		}
	}()

	if filepath.Ext(path) != ".gz" {
		return Read(f)
	}

	zr, err := pgzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "open gzip")
	}
	defer func() { _ = zr.Close() }()
	return Read(zr)
}
