// Package diag defines the diagnostic model shared by the preprocessor,
// the driver and the CLI.
//
// Diagnostic is the central record: Severity, a numeric Code with a stable
// string form, a Message, the Primary span in original source coordinates,
// optional Notes and optional Fixes. Producers emit through a Reporter so
// that storage (Bag) and rendering (internal/diagfmt) stay decoupled.
//
// Upstream lexer and parser errors keep their LEX/SYN codes and carry the
// simplified message as a note. Findings of the rewriting pass use the PRE
// range.
package diag
