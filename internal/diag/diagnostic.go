package diag

import "tao/internal/source"

// Note points at a second place that explains the primary one, such as a
// declaration or an earlier use.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one finding of decoding, checking or concretization.
// Primary may be the module root when the tree gives no better location.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}
