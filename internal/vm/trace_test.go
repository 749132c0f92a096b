package vm

import (
	"strings"
	"testing"
)

func TestTraceAllocPlain(t *testing.T) {
	var buf strings.Builder
	tr := NewTracer(&buf, false)
	tr.TraceAlloc(valueFromHeapIndex(1), ClassOddball, nil)
	if !strings.Contains(buf.String(), "alloc oddball") {
		t.Fatalf("TraceAlloc output = %q, want it to mention the class", buf.String())
	}
}

func TestTraceAllocStringPreview(t *testing.T) {
	var buf strings.Builder
	tr := NewTracer(&buf, false)
	o := NewString("hello")
	tr.TraceAlloc(valueFromHeapIndex(1), ClassString, &o)
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("TraceAlloc(string) output = %q, want it to contain the preview", buf.String())
	}
}

func TestTraceGCAndRun(t *testing.T) {
	var buf strings.Builder
	tr := NewTracer(&buf, false)
	tr.TraceGC(3, 5)
	tr.TraceRun(ResultTerminated, nil)
	tr.TraceRun(ResultTerminated, &VMError{Code: PanicUnimplemented, Message: "boom"})
	tr.TracePreempt()

	out := buf.String()
	for _, want := range []string{"5 -> 3", "terminated", "boom", "preempt"} {
		if !strings.Contains(out, want) {
			t.Fatalf("Tracer output %q missing %q", out, want)
		}
	}
}

func TestTracerNilSafe(t *testing.T) {
	var tr *Tracer
	tr.TraceAlloc(valueFromHeapIndex(1), ClassOddball, nil)
	tr.TraceGC(0, 0)
	tr.TraceRun(ResultTerminated, nil)
	tr.TracePreempt()
}
