package archive

import (
	"io"
	"os"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/sorairolake/lzip-go"
	"github.com/ulikunitz/xz"
	"go.trai.ch/zerr"
)

// decompressed is the reader chain for a possibly-compressed archive file.
// Close tears the chain down outermost first.
type decompressed struct {
	io.Reader
	closers []io.Closer
}

func (d *decompressed) Close() error {
	var first error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// openDecompressed opens path and routes it through the decompressor its
// suffix selects. A bare .pkg.tar (or .tar) is read as-is; an unknown
// suffix is an open error.
func openDecompressed(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "could not open"), "path", path)
	}

	d := &decompressed{closers: []io.Closer{f}}

	wrapOpen := func(err error) error {
		f.Close()
		return zerr.With(zerr.Wrap(err, "could not open"), "path", path)
	}

	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, wrapOpen(err)
		}
		d.Reader = zr
		d.closers = append(d.closers, zr)

	case strings.HasSuffix(path, ".bz2"):
		br, err := bzip2.NewReader(f, nil)
		if err != nil {
			return nil, wrapOpen(err)
		}
		d.Reader = br
		d.closers = append(d.closers, br)

	case strings.HasSuffix(path, ".xz"):
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, wrapOpen(err)
		}
		d.Reader = xr

	case strings.HasSuffix(path, ".lz"):
		lr, err := lzip.NewReader(f)
		if err != nil {
			return nil, wrapOpen(err)
		}
		d.Reader = lr

	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, wrapOpen(err)
		}
		d.Reader = zr
		d.closers = append(d.closers, closerFunc(func() error {
			zr.Close()
			return nil
		}))

	case strings.HasSuffix(path, ".tar"):
		d.Reader = f

	default:
		f.Close()
		return nil, zerr.With(zerr.New("could not open: unsupported archive format"), "path", path)
	}

	return d, nil
}
