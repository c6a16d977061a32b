// Package trace records what the preprocessor is doing: driver batches,
// per-unit runs, passes and individual rule firings.
//
// # Usage
//
//	pdepp preprocess --trace=- --trace-level=detail Sketch.pdt
//
// Implementations: Nop (disabled), StreamTracer (text or NDJSON to a
// writer) and RingTracer (last N events kept for a dump on failure).
// Mode "both" feeds a stream and a ring together.
//
// # Levels and scopes
//
// LevelPhase shows the driver batch and one span per unit, LevelDetail adds
// the walk and synthesis passes, LevelDebug adds a point event for each
// rewrite rule that fired.
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.BeginUnit(trace.FromContext(ctx), "Blink", trace.SpanFrom(ctx))
//	defer span.End("")
//
// Every event below a unit span carries the unit name, so the ring can be
// dumped for failed sketches only.
package trace
