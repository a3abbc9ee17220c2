package feed

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/oaklab-go/opkgmeta"
	"github.com/oaklab-go/opkgmeta/catalog"
	"github.com/oaklab-go/opkgmeta/parse"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	magicGzip = []byte{0x1f, 0x8b}
	magicXZ   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	magicZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// detectDecompressor peeks at the stream's leading bytes and returns a
// reader that transparently decompresses it, or r itself unmodified if no
// known compression magic is present (a plain-text Packages index).
//
// Detection is by magic byte, not by Source.Gzip or a file extension,
// because the core receives an io.Reader with no guarantee the caller
// already resolved which feed variant (Packages, Packages.gz,
// Packages.xz, Packages.zst) it fetched.
func detectDecompressor(r io.Reader) (io.Reader, func() error, error) {
	br := bufio.NewReader(r)

	head, _ := br.Peek(6)

	switch {
	case bytes.HasPrefix(head, magicGzip):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("opening gzip index: %w", err)
		}
		return gz, gz.Close, nil

	case bytes.HasPrefix(head, magicXZ):
		xzr, err := xz.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("opening xz index: %w", err)
		}
		return xzr, func() error { return nil }, nil

	case bytes.HasPrefix(head, magicZstd):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("opening zstd index: %w", err)
		}
		rc := zr.IOReadCloser()
		return rc, rc.Close, nil

	default:
		return br, func() error { return nil }, nil
	}
}

// LoadIndex reads a Packages index (plain, gzip, xz, or zstd compressed,
// auto-detected by magic bytes) from r, parses every control paragraph in
// it, and interns the resulting packages into cat.
//
// It returns the parsed packages in file order, after insertion, so a
// caller can report per-package insertion diagnostics if it wants to; the
// catalog itself already logged duplicate-insertion decisions at Debug
// level via Catalog.Insert.
func LoadIndex(ctx context.Context, cat *catalog.Catalog, r io.Reader, mask parse.Mask, log *zap.Logger, tracer trace.Tracer) ([]*catalog.Pkg, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if tracer == nil {
		tracer = trace.NewNoopTracerProvider().Tracer("feed")
	}

	ctx, span := tracer.Start(ctx, "feed.LoadIndex")
	defer span.End()

	decompressed, closeFn, err := detectDecompressor(r)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	sr, err := meta.NewStanzaReader(decompressed, openpgp.EntityList{})
	if err != nil {
		return nil, fmt.Errorf("reading index stanzas: %w", err)
	}

	parser := parse.New(mask, log, tracer)
	pkgs, err := parser.ParsePkgs(ctx, sr)
	if err != nil {
		return nil, fmt.Errorf("parsing index: %w", err)
	}

	out := make([]*catalog.Pkg, 0, len(pkgs))
	for _, p := range pkgs {
		interned, err := cat.Insert(ctx, p)
		if err != nil {
			log.Error("failed to intern package from index", zap.String("package", p.Name), zap.Error(err))
			continue
		}
		out = append(out, interned)
	}

	return out, nil
}
