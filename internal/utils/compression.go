package utils

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// Magic bytes for payload compression detection
var (
	gzipMagic = []byte{0x1F, 0x8B}
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	xzMagic   = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}
	// lzma_alone streams have no magic, the properties byte is almost always 0x5D
	lzmaMagic = []byte{0x5D, 0x00, 0x00}
)

// DetectCompression names the compression of a stream from its leading bytes.
// Unrecognized data is reported as "none".
func DetectCompression(header []byte) string {
	switch {
	case bytes.HasPrefix(header, gzipMagic):
		return "gzip"
	case bytes.HasPrefix(header, zstdMagic):
		return "zstd"
	case bytes.HasPrefix(header, xzMagic):
		return "xz"
	case bytes.HasPrefix(header, lzmaMagic):
		return "lzma"
	default:
		return "none"
	}
}

// NewDecompressingReader sniffs the compression of r and returns a reader of
// the decompressed stream together with the detected compression name
func NewDecompressingReader(r io.Reader) (io.ReadCloser, string, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(6)
	if err != nil && err != io.EOF {
		return nil, "", fmt.Errorf("failed to read stream header: %w", err)
	}

	compression := DetectCompression(header)
	switch compression {
	case "gzip":
		gr, err := gzip.NewReader(br)
		if err != nil {
			return nil, compression, fmt.Errorf("creating gzip reader: %w", err)
		}
		return gr, compression, nil
	case "zstd":
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, compression, fmt.Errorf("creating zstd reader: %w", err)
		}
		return zr.IOReadCloser(), compression, nil
	case "xz":
		xr, err := xz.NewReader(br)
		if err != nil {
			return nil, compression, fmt.Errorf("creating xz reader: %w", err)
		}
		return io.NopCloser(xr), compression, nil
	case "lzma":
		lr, err := lzma.NewReader(br)
		if err != nil {
			return nil, compression, fmt.Errorf("creating lzma reader: %w", err)
		}
		return io.NopCloser(lr), compression, nil
	}
	return io.NopCloser(br), compression, nil
}
