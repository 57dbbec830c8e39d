package entities

// ErrorDetail is the structured view of a failure written to the diagnostic
// log as the error_detail attribute. Nothing of it crosses the boundary.
// Types: "io", "decode", "precondition", "allocation", "config", "panic", "internal"
type ErrorDetail struct {
	// Details holds failure context, such as the path that could not be opened.
	Details map[string]any `json:"details,omitempty"`

	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`

	// IsNotFound is set when an open failed because the file does not exist.
	IsNotFound bool `json:"is_not_found,omitempty"`
}
