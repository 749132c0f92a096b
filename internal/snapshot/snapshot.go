// Package snapshot serializes and restores a wisp heap object graph,
// using github.com/vmihailenco/msgpack/v5 as the wire encoding the way a
// real snapshot format would use a compact binary codec rather than text.
package snapshot

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/vovakirdan/wisp/internal/vm"
)

// InternalSizeCutoff is the content length, in bytes, above which a byte
// array or string is flagged as "external" in the wire format rather
// than inlined — a size hint a reader can use to stream large blobs
// separately, kept here as a documented constant rather than exercising
// any different code path (see DESIGN.md's Open Question decision).
const InternalSizeCutoff = 256

// wireValueKind tags how a wireValue's payload should be interpreted.
type wireValueKind uint8

const (
	wireSmi wireValueKind = iota
	wireHeap
	wireMarked
)

type wireValue struct {
	Kind wireValueKind `msgpack:"k"`
	Smi  int64         `msgpack:"s,omitempty"`
	Ref  int           `msgpack:"r,omitempty"`
}

// wireObject is the on-disk shape of one heap object. Only the fields
// relevant to Tag are populated; the rest are left at their zero value
// and omitted by msgpack's omitempty tags.
type wireObject struct {
	Tag      vm.ClassTag `msgpack:"t"`
	ClassID  uint32      `msgpack:"c,omitempty"`
	External bool        `msgpack:"x,omitempty"`

	Array    []wireValue `msgpack:"a,omitempty"`
	Bytes    []byte      `msgpack:"b,omitempty"`
	Double   float64     `msgpack:"d,omitempty"`
	Large    int64       `msgpack:"l,omitempty"`
	Oddball  int         `msgpack:"o,omitempty"`
	Instance []wireValue `msgpack:"i,omitempty"`

	TaskStack  wireValue `msgpack:"ts,omitempty"`
	TaskID     wireValue `msgpack:"ti,omitempty"`
	TaskResult wireValue `msgpack:"tr,omitempty"`

	StackSlots  []wireValue `msgpack:"ss,omitempty"`
	StackTop    int         `msgpack:"st,omitempty"`
	StackTryTop int         `msgpack:"sy,omitempty"`
	StackOflow  bool        `msgpack:"so,omitempty"`
}

type wireGraph struct {
	Root    wireValue    `msgpack:"root"`
	Objects []wireObject `msgpack:"objects"`
}

// Writer serializes object graphs reachable from a root Value.
type Writer struct {
	heap    *vm.Heap
	program *vm.Program
}

func NewWriter(heap *vm.Heap, program *vm.Program) *Writer {
	return &Writer{heap: heap, program: program}
}

// Write walks every object reachable from root and returns its msgpack
// encoding. Object identity is preserved: two references to the same
// heap object decode back to two references to the same restored object.
func (w *Writer) Write(root vm.Value) ([]byte, error) {
	indices := map[vm.Value]int{} // heap Value (untagged of Marked) -> index into objects
	var objects []wireObject

	var resolve func(v vm.Value) wireValue
	var visit func(v vm.Value) int

	visit = func(v vm.Value) int {
		if idx, ok := indices[v]; ok {
			return idx
		}
		idx := len(objects)
		indices[v] = idx
		objects = append(objects, wireObject{}) // reserve slot for cycles
		objects[idx] = w.encodeObject(v, resolve)
		return idx
	}

	resolve = func(v vm.Value) wireValue {
		switch {
		case v.IsSmi():
			return wireValue{Kind: wireSmi, Smi: v.SmiValue()}
		case v.IsMarked():
			idx := visit(vm.Unmark(v))
			return wireValue{Kind: wireMarked, Ref: idx}
		case v.IsHeapObject():
			idx := visit(v)
			return wireValue{Kind: wireHeap, Ref: idx}
		default:
			return wireValue{Kind: wireSmi}
		}
	}

	rootWire := resolve(root)
	return msgpack.Marshal(&wireGraph{Root: rootWire, Objects: objects})
}

func (w *Writer) encodeObject(v vm.Value, resolve func(vm.Value) wireValue) wireObject {
	o := w.heap.Get(v)
	wo := wireObject{Tag: o.Class(), ClassID: o.ClassID()}

	switch o.Class() {
	case vm.ClassArray:
		wo.Array = make([]wireValue, o.ArrayLength())
		for i := range wo.Array {
			wo.Array[i] = resolve(o.ArrayAt(i))
		}
	case vm.ClassByteArray:
		wo.Bytes = append([]byte(nil), o.ByteArrayBytes()...)
		wo.External = len(wo.Bytes) > InternalSizeCutoff
	case vm.ClassString:
		content := o.StringBytes()
		wo.External = len(content) > InternalSizeCutoff
		// spec's documented quirk: strings serialize length+1 bytes,
		// content plus a trailing NUL.
		wo.Bytes = make([]byte, len(content)+1)
		copy(wo.Bytes, content)
	case vm.ClassDouble:
		wo.Double = o.DoubleValue()
	case vm.ClassLargeInteger:
		wo.Large = o.LargeIntegerValue()
	case vm.ClassOddball:
		wo.Oddball = o.OddballOrdinal()
	case vm.ClassInstance:
		wo.Instance = make([]wireValue, o.InstanceFieldCount())
		for i := range wo.Instance {
			wo.Instance[i] = resolve(o.InstanceAt(i))
		}
	case vm.ClassTask:
		wo.TaskStack = resolve(o.TaskStack())
		wo.TaskID = resolve(o.TaskID())
		wo.TaskResult = resolve(o.TaskResult())
	case vm.ClassStack:
		length := o.StackLength()
		wo.StackSlots = make([]wireValue, length)
		for i := 0; i < length; i++ {
			wo.StackSlots[i] = resolve(o.StackAt(i))
		}
		wo.StackTop = o.StackTop()
		wo.StackTryTop = o.StackTryTop()
		wo.StackOflow = o.StackInStackOverflow()
	default:
		panic(fmt.Sprintf("snapshot: unhandled class tag %v", o.Class()))
	}
	return wo
}

// Reader restores a graph previously produced by Writer.Write into heap.
type Reader struct {
	heap *vm.Heap
}

func NewReader(heap *vm.Heap) *Reader {
	return &Reader{heap: heap}
}

// Read decodes data and allocates its object graph into the reader's
// heap, returning the restored root Value.
func (r *Reader) Read(data []byte) (vm.Value, error) {
	var g wireGraph
	if err := msgpack.Unmarshal(data, &g); err != nil {
		return vm.Value(0), fmt.Errorf("snapshot: decode: %w", err)
	}

	// Phase 1: allocate every object's header, so forward/cyclic
	// references have somewhere to point before any payload is filled.
	values := make([]vm.Value, len(g.Objects))
	for i, wo := range g.Objects {
		values[i] = r.heap.AllocPlaceholder(wo.Tag, wo.ClassID)
	}

	resolve := func(wv wireValue) vm.Value {
		switch wv.Kind {
		case wireSmi:
			v, err := vm.FromInt(wv.Smi)
			if err != nil {
				panic("snapshot: smi out of range on decode: " + err.Error())
			}
			return v
		case wireHeap:
			return values[wv.Ref]
		case wireMarked:
			return vm.Mark(values[wv.Ref])
		default:
			panic("snapshot: unknown wire value kind")
		}
	}

	// Phase 2: fill payloads now that every reference resolves.
	for i, wo := range g.Objects {
		obj := r.heap.Get(values[i])
		switch wo.Tag {
		case vm.ClassArray:
			elems := make([]vm.Value, len(wo.Array))
			for j, wv := range wo.Array {
				elems[j] = resolve(wv)
			}
			obj.SetArray(elems)
		case vm.ClassByteArray:
			obj.SetByteArrayContent(wo.Bytes)
		case vm.ClassString:
			content := wo.Bytes
			if len(content) > 0 {
				content = content[:len(content)-1] // drop the trailing NUL
			}
			obj.SetStringContent(content)
		case vm.ClassDouble:
			obj.SetDoubleValue(wo.Double)
		case vm.ClassLargeInteger:
			obj.SetLargeIntegerValue(wo.Large)
		case vm.ClassOddball:
			obj.SetOddballOrdinal(wo.Oddball)
		case vm.ClassInstance:
			fields := make([]vm.Value, len(wo.Instance))
			for j, wv := range wo.Instance {
				fields[j] = resolve(wv)
			}
			obj.SetInstanceFields(fields)
		case vm.ClassTask:
			obj.SetTaskFields(resolve(wo.TaskStack), resolve(wo.TaskID), resolve(wo.TaskResult))
		case vm.ClassStack:
			slots := make([]vm.Value, len(wo.StackSlots))
			for j, wv := range wo.StackSlots {
				slots[j] = resolve(wv)
			}
			obj.SetStackContents(slots, wo.StackTop, wo.StackTryTop, wo.StackOflow)
		default:
			return vm.Value(0), fmt.Errorf("snapshot: unhandled class tag %v", wo.Tag)
		}
	}

	return resolve(g.Root), nil
}
