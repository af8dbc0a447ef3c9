package linestream

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ErrNotFound is returned when a file source does not exist.
var ErrNotFound = errors.New("source not found")

// Source opens a fresh reader positioned at the start of the input.
type Source interface {
	Open() (io.ReadCloser, error)
}

// FileSource reads a file from disk. Gzip and zstd compressed files are
// detected by their magic bytes and decompressed on the fly.
type FileSource struct {
	Path string
}

// File returns a FileSource for path.
func File(path string) FileSource {
	return FileSource{Path: path}
}

// Exists reports whether the file is present. Any stat error other than
// "does not exist" is returned.
func (s FileSource) Exists() (bool, error) {
	_, err := os.Stat(s.Path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// String returns the file path.
func (s FileSource) String() string {
	return s.Path
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Open opens the file and, if needed, wraps it in a decompressor.
func (s FileSource) Open() (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}

	br := bufio.NewReaderSize(f, 64*1024)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		_ = f.Close()
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to open gzip stream %s: %w", s.Path, err)
		}
		return &stackedReader{Reader: zr, closers: []func() error{zr.Close, f.Close}}, nil
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to open zstd stream %s: %w", s.Path, err)
		}
		return &stackedReader{Reader: zr, closers: []func() error{
			func() error { zr.Close(); return nil },
			f.Close,
		}}, nil
	default:
		return &stackedReader{Reader: br, closers: []func() error{f.Close}}, nil
	}
}

// ReaderSource serves an in-memory buffer; every Open starts from the beginning.
type ReaderSource struct {
	Data []byte
}

// Open returns a reader over the buffer.
func (s ReaderSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.Data)), nil
}

// String names the source in logs.
func (s ReaderSource) String() string {
	return "<memory>"
}

// stackedReader closes its layers innermost first.
type stackedReader struct {
	io.Reader
	closers []func() error
}

func (r *stackedReader) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
