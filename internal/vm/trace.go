package vm

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Tracer writes colorized execution traces for debugging the interpreter
// core: allocations, scavenge cycles, and the result every Run call
// produces.
type Tracer struct {
	w      io.Writer
	color  bool
	alloc  *color.Color
	gcMsg  *color.Color
	result *color.Color
}

// NewTracer creates a tracer writing to w. Colors are only emitted when
// useColor is true, so a caller piping output to a file can ask for
// plain text.
func NewTracer(w io.Writer, useColor bool) *Tracer {
	return &Tracer{
		w:      w,
		color:  useColor,
		alloc:  color.New(color.FgCyan),
		gcMsg:  color.New(color.FgYellow),
		result: color.New(color.FgGreen),
	}
}

// fprintf is every Trace* method's sink. pick is only called after the
// nil/color checks below, never as part of evaluating this method's own
// argument list — a nil *Tracer must stay a documented no-op, not panic
// on its first field access.
func (t *Tracer) fprintf(pick func(*Tracer) *color.Color, format string, args ...any) {
	if t == nil || t.w == nil {
		return
	}
	if t.color {
		pick(t).Fprintf(t.w, format, args...)
		return
	}
	fmt.Fprintf(t.w, format, args...)
}

// TraceAlloc records a heap allocation. Strings get a width-aware content
// preview rather than just their tag and index, since "alloc string #42"
// tells a reader nothing a live debugging session would want.
func (t *Tracer) TraceAlloc(v Value, class ClassTag, obj *Object) {
	if class == ClassString && obj != nil {
		t.fprintf(func(t *Tracer) *color.Color { return t.alloc }, "[heap] alloc %s %s %q\n", class, v, PreviewString(obj, 40))
		return
	}
	t.fprintf(func(t *Tracer) *color.Color { return t.alloc }, "[heap] alloc %s %s\n", class, v)
}

// TraceGC records a completed scavenge cycle.
func (t *Tracer) TraceGC(survivors int, before int) {
	t.fprintf(func(t *Tracer) *color.Color { return t.gcMsg }, "[gc] scavenge: %d -> %d objects\n", before, survivors)
}

// TraceRun records the outcome of an Interpreter.Run call.
func (t *Tracer) TraceRun(res Result, err *VMError) {
	if err != nil {
		t.fprintf(func(t *Tracer) *color.Color { return t.result }, "[run] %s: %s\n", res, err.Error())
		return
	}
	t.fprintf(func(t *Tracer) *color.Color { return t.result }, "[run] %s\n", res)
}

// TracePreempt records an external preemption request.
func (t *Tracer) TracePreempt() {
	t.fprintf(func(t *Tracer) *color.Color { return t.gcMsg }, "[run] preempt requested\n")
}
