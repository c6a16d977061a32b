// Package preproc rewrites a parsed Processing sketch into a compilable
// Java unit.
//
// A run walks the tree once, depth first. Rules fire when the walk leaves a
// node and record edits against the original source through a
// rewrite.Rewriter; program-wide facts (shape, imports, size() arguments,
// whether main exists) accumulate in a per-run state. When the root is left
// the synthesizer wraps the program with a header (imports, class line,
// setup wrapper) and a footer (settings, main, closing braces), as exactly
// two more edits.
//
// The rewritten text is never stored separately: it is the fold of the
// edit list over the source, so Output.Text and Output.Edits always agree.
//
// Rule mismatches (an unusable size() call, for instance) leave the
// construct untouched and are reported as info diagnostics. The only error
// a run returns is the first upstream lexer or parser error carried by the
// tree; the output is still produced in full.
package preproc
