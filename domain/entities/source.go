package entities

// SourceInfo describes an open line source.
type SourceInfo struct {
	Path        string      `json:"path"`
	Compression Compression `json:"compression"`
	// LinesRead counts the lines returned so far.
	LinesRead int `json:"lines_read"`
	// Done is set once the source has hit end of input or an error.
	Done bool `json:"done"`
}
