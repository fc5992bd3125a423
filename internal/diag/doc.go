// Package diag defines the diagnostic model shared by lowering, solving and
// concretization.
//
// Phases never format or print. They emit through a Reporter (usually a
// BagReporter over a Bag) and keep going after a user error, substituting an
// error marker for the offending node, so a single run surfaces many
// independent problems. Rendering lives in internal/diagfmt.
//
// Codes are grouped by prefix: SEM for semantic and solver errors, IO for
// reading and decoding input trees, PRJ for project configuration and OBS for
// observability output.
package diag
