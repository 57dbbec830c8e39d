package entities

import (
	"path/filepath"
	"strings"
)

// Compression identifies how the bytes of a line source are encoded on disk.
type Compression int

const (
	// CompressionAuto selects a decoder from the file extension.
	CompressionAuto Compression = iota
	// CompressionNone reads the file as plain text.
	CompressionNone
	// CompressionGzip reads a gzip stream.
	CompressionGzip
	// CompressionZstd reads a zstd stream.
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionAuto:
		return "auto"
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

// CompressionForPath maps a file name to the compression its extension implies.
// Unknown extensions are plain text.
func CompressionForPath(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// Resolve returns c, or the compression implied by path when c is CompressionAuto.
func (c Compression) Resolve(path string) Compression {
	if c == CompressionAuto {
		return CompressionForPath(path)
	}
	return c
}
