// Package filesource provides the file-backed line source read through the
// foreign-call boundary. Plain, gzip and zstd files are supported.
package filesource

import (
	"bufio"
	"bytes"
	stdErrors "errors"
	"io"
	"os"
	"unicode/utf8"

	"github.com/reglet-dev/vertical/domain/entities"
	"github.com/reglet-dev/vertical/domain/errors"
	"github.com/reglet-dev/vertical/domain/ports"
)

const (
	// DefaultBufferSize is the default size of the read buffer (64KB).
	DefaultBufferSize = 64 * 1024
	// MinBufferSize is the smallest read buffer accepted by WithBufferSize (4KB).
	MinBufferSize = 4 * 1024
)

// sourceConfig holds configuration for a Source.
type sourceConfig struct {
	compression entities.Compression
	bufferSize  int
}

func defaultSourceConfig() sourceConfig {
	return sourceConfig{
		compression: entities.CompressionAuto,
		bufferSize:  DefaultBufferSize,
	}
}

// Option configures a Source.
type Option func(*sourceConfig)

// WithCompression forces a decoder instead of picking one from the file extension.
func WithCompression(c entities.Compression) Option {
	return func(cfg *sourceConfig) {
		cfg.compression = c
	}
}

// WithBufferSize sets the read buffer size. Values below MinBufferSize are raised to it.
func WithBufferSize(size int) Option {
	return func(cfg *sourceConfig) {
		if size < MinBufferSize {
			size = MinBufferSize
		}
		cfg.bufferSize = size
	}
}

// Source yields the lines of one file in order. It is not safe for concurrent use.
type Source struct {
	file    *os.File
	decoder io.Closer // nil for plain files
	reader  *bufio.Reader
	info    entities.SourceInfo
	closed  bool
}

var _ ports.LineSource = (*Source)(nil)

// Open opens the file at path for line reading.
// Failures are returned as *errors.OpenError.
func Open(path string, opts ...Option) (*Source, error) {
	cfg := defaultSourceConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &errors.OpenError{Path: path, Err: err}
	}

	compression := cfg.compression.Resolve(path)
	r, decoder, err := newDecoder(file, compression)
	if err != nil {
		_ = file.Close()
		return nil, &errors.OpenError{Path: path, Err: err}
	}

	return &Source{
		file:    file,
		decoder: decoder,
		reader:  bufio.NewReaderSize(r, cfg.bufferSize),
		info: entities.SourceInfo{
			Path:        path,
			Compression: compression,
		},
	}, nil
}

// Opener returns a ports.SourceOpener that opens files with the given options.
func Opener(opts ...Option) ports.SourceOpener {
	return ports.SourceOpenerFunc(func(path string) (ports.LineSource, error) {
		src, err := Open(path, opts...)
		if err != nil {
			return nil, err
		}
		return src, nil
	})
}

// Next returns the next line with its "\n" or "\r\n" terminator removed.
// It returns io.EOF at end of input. The first read or decode error is
// returned once; the source then reports io.EOF on every later call.
func (s *Source) Next() (string, error) {
	if s.info.Done || s.closed {
		return "", io.EOF
	}

	raw, err := s.reader.ReadBytes('\n')
	if err != nil {
		if !stdErrors.Is(err, io.EOF) {
			s.info.Done = true
			return "", &errors.ReadError{Line: s.info.LinesRead + 1, Err: err}
		}
		if len(raw) == 0 {
			s.info.Done = true
			return "", io.EOF
		}
		// Last line without a trailing newline; the next call sees EOF again.
	}

	raw = trimEOL(raw)
	if !utf8.Valid(raw) {
		s.info.Done = true
		return "", &errors.DecodeError{Line: s.info.LinesRead + 1, Reason: "stream did not contain valid UTF-8"}
	}

	s.info.LinesRead++
	return string(raw), nil
}

// Info reports the path, compression and progress of the source.
func (s *Source) Info() entities.SourceInfo {
	return s.info
}

// Close closes the decoder and then the file. Later calls are no-ops.
func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if s.decoder != nil {
		errs = append(errs, s.decoder.Close())
	}
	errs = append(errs, s.file.Close())
	return stdErrors.Join(errs...)
}

// trimEOL strips "\n" and, only when one was present, a preceding "\r".
func trimEOL(b []byte) []byte {
	if !bytes.HasSuffix(b, []byte{'\n'}) {
		return b
	}
	b = b[:len(b)-1]
	return bytes.TrimSuffix(b, []byte{'\r'})
}
