package ports

import "github.com/reglet-dev/vertical/domain/entities"

// LineSource is a single-pass, forward-only sequence of text lines.
type LineSource interface {
	// Next returns the next line without its line terminator.
	// It returns io.EOF once input is exhausted. After any error, including
	// io.EOF, every later call returns io.EOF.
	Next() (string, error)

	// Info describes the source and its progress.
	Info() entities.SourceInfo

	// Close releases the underlying resources. It is safe to call more than once.
	Close() error
}

// SourceOpener opens line sources by path.
type SourceOpener interface {
	Open(path string) (LineSource, error)
}

// SourceOpenerFunc adapts a plain function to SourceOpener.
type SourceOpenerFunc func(path string) (LineSource, error)

// Open implements SourceOpener.
func (f SourceOpenerFunc) Open(path string) (LineSource, error) {
	return f(path)
}
