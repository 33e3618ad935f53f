package model

import (
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// ErrBZ2CompressionNotSupported is returned when attempting to write
// bzip2 output; the standard library only decompresses bzip2.
var ErrBZ2CompressionNotSupported = errors.New("csvq: bzip2 compression is not supported for output")

// CompressionFormat identifies the codec wrapped around a CSV byte
// stream. It is the single place that knows how to open and create
// compressed streams; file loading and table export both go through it.
type CompressionFormat int

const (
	// CompressionNone represents an uncompressed stream
	CompressionNone CompressionFormat = iota
	// CompressionGZ represents gzip compression
	CompressionGZ
	// CompressionBZ2 represents bzip2 compression
	CompressionBZ2
	// CompressionXZ represents xz compression
	CompressionXZ
	// CompressionZSTD represents zstd compression
	CompressionZSTD
)

// CompressionFromPath judges the compression format by file extension.
func CompressionFromPath(path string) CompressionFormat {
	switch name := strings.ToLower(path); {
	case strings.HasSuffix(name, ExtGZ):
		return CompressionGZ
	case strings.HasSuffix(name, ExtBZ2):
		return CompressionBZ2
	case strings.HasSuffix(name, ExtXZ):
		return CompressionXZ
	case strings.HasSuffix(name, ExtZSTD):
		return CompressionZSTD
	default:
		return CompressionNone
	}
}

// Extension returns the file extension for the compression format.
func (c CompressionFormat) Extension() string {
	switch c {
	case CompressionGZ:
		return ExtGZ
	case CompressionBZ2:
		return ExtBZ2
	case CompressionXZ:
		return ExtXZ
	case CompressionZSTD:
		return ExtZSTD
	default:
		return ""
	}
}

// NewReader wraps r with the matching decompressor, returning the reader
// and a close function for any resource the codec acquired.
func (c CompressionFormat) NewReader(r io.Reader) (io.Reader, func() error, error) {
	switch c {
	case CompressionNone:
		return r, func() error { return nil }, nil

	case CompressionGZ:
		gzReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gzReader, gzReader.Close, nil

	case CompressionBZ2:
		// bzip2.NewReader doesn't need closing
		return bzip2.NewReader(r), func() error { return nil }, nil

	case CompressionXZ:
		xzReader, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return xzReader, func() error { return nil }, nil

	case CompressionZSTD:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return decoder, func() error {
			decoder.Close()
			return nil
		}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported compression format for reading: %d", c)
	}
}

// NewWriter wraps w with the matching compressor, returning the writer
// and a close function that flushes the codec's trailing bytes.
func (c CompressionFormat) NewWriter(w io.Writer) (io.Writer, func() error, error) {
	switch c {
	case CompressionNone:
		return w, func() error { return nil }, nil

	case CompressionGZ:
		gzWriter := gzip.NewWriter(w)
		return gzWriter, gzWriter.Close, nil

	case CompressionBZ2:
		return nil, nil, ErrBZ2CompressionNotSupported

	case CompressionXZ:
		xzWriter, err := xz.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		return xzWriter, xzWriter.Close, nil

	case CompressionZSTD:
		encoder, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return encoder, encoder.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported compression format for writing: %d", c)
	}
}
