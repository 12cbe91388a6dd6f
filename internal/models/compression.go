package models

import (
	"fmt"
	"strings"
)

// Compression is the payload compression selected for the package
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

// SupportedCompressions lists the accepted --compression values
var SupportedCompressions = []string{"none", "gzip", "zstd"}

// String returns the string representation of Compression
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// ParseCompression maps a --compression value to a Compression.
// An empty value selects no compression.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "gzip":
		return CompressionGzip, nil
	case "zstd":
		return CompressionZstd, nil
	}
	return 0, NewError(ErrUnrecognizedCompressionMode, s,
		fmt.Errorf("supported values are %s", strings.Join(SupportedCompressions, ", ")))
}
