// Package codecs provides the profile codecs and resolves them by configured
// name or by file extension.
//
// Profiles are small JSON documents written once per build and read on every
// live request, so the codecs favour ratio on write and run single-threaded.
package codecs

import (
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/discochess/coach/internal/codec"
)

// Codec names accepted by ByName.
const (
	NameZstd = "zstd"
	NameGzip = "gzip"
	NameNone = "none"
)

// Default is the codec used when none is configured.
const Default = NameZstd

// maxProfileSize caps the decoded size of one profile.
const maxProfileSize = 16 << 20

// ByName returns the codec for name: "zstd", "gzip" or "none".
// The empty name selects Default.
func ByName(name string) (codec.Codec, error) {
	switch name {
	case "", NameZstd:
		return Zstd(), nil
	case NameGzip:
		return Gzip(), nil
	case NameNone:
		return None(), nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

// ByExtension returns the codec that writes files with extension ext,
// given without the leading dot. The empty extension selects "none".
func ByExtension(ext string) (codec.Codec, error) {
	for _, name := range []string{NameZstd, NameGzip, NameNone} {
		c, _ := ByName(name)
		if c.Extension() == ext {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no codec for extension %q", ext)
}

// Zstd returns the default profile codec.
func Zstd() codec.Codec { return zstdCodec{} }

// Gzip returns a gzip profile codec.
func Gzip() codec.Codec { return gzipCodec{} }

// None returns a codec that stores profiles as plain JSON.
func None() codec.Codec { return noneCodec{} }

type zstdCodec struct{}

func (zstdCodec) Reader(r io.Reader) (io.ReadCloser, error) {
	d, err := zstd.NewReader(r,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(maxProfileSize),
	)
	if err != nil {
		return nil, err
	}
	return d.IOReadCloser(), nil
}

func (zstdCodec) Writer(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w,
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithEncoderConcurrency(1),
	)
}

func (zstdCodec) Extension() string { return "zst" }

type gzipCodec struct{}

func (gzipCodec) Reader(r io.Reader) (io.ReadCloser, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	return limitedReadCloser{io.LimitReader(zr, maxProfileSize), zr}, nil
}

func (gzipCodec) Writer(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriterLevel(w, gzip.BestCompression)
}

func (gzipCodec) Extension() string { return "gz" }

type noneCodec struct{}

func (noneCodec) Reader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(io.LimitReader(r, maxProfileSize)), nil
}

func (noneCodec) Writer(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

func (noneCodec) Extension() string { return "" }

type limitedReadCloser struct {
	io.Reader
	io.Closer
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
