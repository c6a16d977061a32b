// Package edit is the append-only edit ledger of a preprocessing run.
//
// An Edit is anchored on a byte offset of the original, unmodified source.
// Offsets are never renumbered: later edits do not shift earlier ones. The
// rewritten text is not stored anywhere; it is always recomputed as a fold
// of the ledger over the pristine source (Apply / Fold), so the text handed
// to the compiler and the edit list handed to an editor cannot drift apart.
//
// # Ordering at a shared offset
//
// Several inserts may target the same offset. Each insert attaches either to
// the text that follows it (AttachNext, "insert before a token") or to the
// text that precedes it (AttachPrev, "insert after a token"). At one offset
// the fold emits, in this order:
//
//   - AttachPrev inserts, in call order;
//   - AttachNext inserts, most recent call first (the newest is outermost);
//   - then skips the bytes removed by deletes starting at that offset.
//
// Inserts anchored inside an already deleted region are emitted at the
// deletion point.
package edit
