package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wisp/internal/snapshot"
	"github.com/vovakirdan/wisp/internal/vm"
)

var runCmd = &cobra.Command{
	Use:   "run [snapshot]",
	Short: "Run a task snapshot to completion",
	Long: `Run loads a task graph (a snapshot previously produced by --save, the
[run].entry snapshot named by the nearest wisp.toml, or a tiny built-in demo
program when neither is available) and drives the interpreter until the
task terminates, yields repeatedly with nothing left to do, or asks to
deep-sleep.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().Bool("vm-trace", false, "enable interpreter execution tracing")
	runCmd.Flags().Bool("watch", false, "show a live Bubble Tea view of interpreter state")
	runCmd.Flags().String("save", "", "write the final task graph to this snapshot path before exiting")
	runCmd.Flags().Int("max-turns", 10000, "give up after this many scheduler turns (preemption/yield loops)")
}

func runRun(cmd *cobra.Command, args []string) error {
	vmTrace, _ := cmd.Flags().GetBool("vm-trace")
	watch, _ := cmd.Flags().GetBool("watch")
	savePath, _ := cmd.Flags().GetString("save")
	maxTurns, _ := cmd.Flags().GetInt("max-turns")

	heap := vm.NewHeap(nil)

	snapshotPath := ""
	switch {
	case len(args) == 1:
		snapshotPath = args[0]
	case !cmd.Flags().Changed("watch"):
		// No explicit snapshot and the user didn't ask for --watch either
		// way: fall back to the nearest wisp.toml, which may name both an
		// entry snapshot and a default for --watch.
		if m, err := vm.LoadManifest("."); err == nil {
			snapshotPath = m.EntryPath()
			watch = m.Config.Run.Watch
		}
	}

	var taskValue vm.Value
	if snapshotPath != "" {
		data, err := os.ReadFile(snapshotPath)
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}
		root, err := snapshot.NewReader(heap).Read(data)
		if err != nil {
			return fmt.Errorf("decode snapshot: %w", err)
		}
		taskValue = root
	} else {
		taskValue = buildDemoTask(heap)
	}

	code := demoProgramCode()
	program := vm.NewProgram(code, nil)
	it := vm.NewInterpreter(heap, program)

	var tracer *vm.Tracer
	if vmTrace {
		tracer = vm.NewTracer(os.Stderr, wantColor(cmd))
	}

	if watch {
		return runWithLiveView(it, heap, program, taskValue, maxTurns, tracer)
	}

	res, err := runToCompletion(it, heap, taskValue, newDemoDispatch(code), maxTurns, tracer)
	if err != nil {
		fmt.Fprint(os.Stderr, err.Format())
		defer os.Exit(1)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "final result: %s\n", res)

	if savePath != "" {
		out, werr := snapshot.NewWriter(heap, program).Write(taskValue)
		if werr != nil {
			return fmt.Errorf("encode snapshot: %w", werr)
		}
		if werr := os.WriteFile(savePath, out, 0o644); werr != nil {
			return fmt.Errorf("write snapshot: %w", werr)
		}
	}
	return nil
}

// runToCompletion repeatedly activates task and calls Run, treating a
// PREEMPTED result as "reschedule immediately" and a YIELDED result as
// "give every other task a turn" — here, since there is only one task,
// as "try again" — up to maxTurns times, the way a single-task corner of
// a real scheduler loop behaves.
func runToCompletion(it *vm.Interpreter, heap *vm.Heap, taskValue vm.Value, dispatch vm.StepFunc, maxTurns int, tracer *vm.Tracer) (vm.Result, *vm.VMError) {
	task := heap.Get(taskValue)
	for turn := 0; turn < maxTurns; turn++ {
		it.Activate(task)
		res, err := it.Run(dispatch)
		if tracer != nil {
			tracer.TraceRun(res, err)
		}
		if err != nil {
			return res, err
		}
		switch res {
		case vm.ResultTerminated, vm.ResultDeepSleep:
			return res, nil
		case vm.ResultPreempted, vm.ResultYielded:
			if turn%64 == 63 {
				before := heap.Count()
				n := it.RunGC(nil)
				if tracer != nil {
					tracer.TraceGC(n, before)
				}
			}
			continue
		}
	}
	return vm.ResultYielded, nil
}

// buildDemoTask allocates a self-contained task with a small stack, used
// when `wisp run` is invoked without a snapshot argument.
func buildDemoTask(heap *vm.Heap) vm.Value {
	idV, _ := vm.FromInt(1)
	taskV := heap.AllocTask(idV)
	stackV := heap.AllocStack()
	heap.Get(taskV).SetTaskStack(stackV)
	return taskV
}

// The demo program is a tiny, self-contained instruction set understood
// only by this command's dispatch closure below — the wisp module's own
// bytecode dispatch table is intentionally out of scope (spec §1); this
// is just enough of a stand-in to exercise Interpreter.Run end to end.
const (
	opHalt byte = iota
	opPushImm
	opAdd
	opYield
)

func demoProgramCode() []byte {
	buf := make([]byte, 0, 32)
	push := func(n int64) {
		buf = append(buf, opPushImm)
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], uint64(n))
		buf = append(buf, tmp[:]...)
	}
	push(2)
	push(3)
	buf = append(buf, opAdd)
	buf = append(buf, opYield)
	push(4)
	buf = append(buf, opAdd)
	buf = append(buf, opHalt)
	return buf
}

// newDemoDispatch returns a StepFunc that interprets demoProgramCode
// against the interpreter's current stack, one instruction per call.
func newDemoDispatch(code []byte) vm.StepFunc {
	pc := 0
	return func(it *vm.Interpreter) (vm.StepOutcome, *vm.VMError) {
		if pc >= len(code) {
			return vm.StepReturn, nil
		}
		op := code[pc]
		pc++
		switch op {
		case opHalt:
			return vm.StepReturn, nil
		case opPushImm:
			n := int64(binary.LittleEndian.Uint64(code[pc : pc+8]))
			pc += 8
			v, err := vm.FromInt(n)
			if err != nil {
				return vm.StepContinue, nil
			}
			it.CurrentStack().Push(v)
			return vm.StepContinue, nil
		case opAdd:
			s := it.CurrentStack()
			b := s.Pop()
			a := s.Pop()
			s.Push(it.Heap().AddSmi(a, b))
			return vm.StepContinue, nil
		case opYield:
			return vm.StepYield, nil
		default:
			return vm.StepReturn, nil
		}
	}
}
