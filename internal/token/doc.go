// Package token defines the lexical units the preprocessor receives from the
// external tokenizer.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly (Start..End, half-open).
//   - Tokens in a Stream are ordered by Start and never overlap.
//   - Hidden tokens (whitespace, comments) may or may not be present; the
//     preprocessor never depends on them.
package token
