// Package testutil provides test fixtures for line sources (plain, gzip and
// zstd files written from a list of lines) and allocation leak checks.
package testutil

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DataDog/zstd"
	"github.com/stretchr/testify/require"
)

// JoinLines terminates every line with "\n" and concatenates them.
func JoinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// WriteFile writes content verbatim to name inside a fresh temp dir and returns the path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600), "write fixture")
	return path
}

// WriteLines writes newline-terminated lines to name and returns the path.
func WriteLines(t *testing.T, name string, lines []string) string {
	t.Helper()
	return WriteFile(t, name, JoinLines(lines))
}

// WriteGzipLines writes gzip-compressed, newline-terminated lines to name.
func WriteGzipLines(t *testing.T, name string, lines []string) string {
	t.Helper()
	return writeCompressed(t, name, lines, func(w io.Writer) io.WriteCloser {
		return gzip.NewWriter(w)
	})
}

// WriteZstdLines writes zstd-compressed, newline-terminated lines to name.
func WriteZstdLines(t *testing.T, name string, lines []string) string {
	t.Helper()
	return writeCompressed(t, name, lines, func(w io.Writer) io.WriteCloser {
		return zstd.NewWriterLevel(w, zstd.DefaultCompression)
	})
}

func writeCompressed(t *testing.T, name string, lines []string, newWriter func(io.Writer) io.WriteCloser) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err, "create fixture")
	defer f.Close()

	w := newWriter(f)
	_, err = io.WriteString(w, JoinLines(lines))
	require.NoError(t, err, "write compressed fixture")
	require.NoError(t, w.Close(), "flush compressed fixture")
	return path
}
