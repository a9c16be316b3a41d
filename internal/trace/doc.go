// Package trace records what the compiler is doing: driver commands, pipeline
// phases, single templates and, at debug level, every element whose
// attributes went through the directive runner.
//
// Spans travel in the context:
//
//	ctx, span := trace.Start(ctx, trace.ScopeTemplate, "template:"+path)
//	defer span.End("")
//
// A context without a tracer makes Start and Point free. Events go to a
// Stream (written as they happen), a Ring (last N kept in memory and dumped
// on panic or exit) or a Fanout of both.
//
// Level phase keeps driver and phase scopes, detail adds templates, debug
// adds elements.
package trace
