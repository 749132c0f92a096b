package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/wisp/internal/vm"
)

var demoCmd = &cobra.Command{
	Use:   "demo [n]",
	Short: "Run n independent demo tasks concurrently",
	Long: `demo starts n isolated interpreters, each with its own heap and task, and
runs them concurrently to completion — a stand-in for the scheduler that
would normally multiplex many tasks over one OS thread, since that
scheduler lives outside this module's scope (spec §1).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDemo,
}

func runDemo(cmd *cobra.Command, args []string) error {
	n := 4
	if len(args) == 1 {
		if _, err := fmt.Sscanf(args[0], "%d", &n); err != nil || n <= 0 {
			return fmt.Errorf("invalid task count %q", args[0])
		}
	}

	results := make([]vm.Result, n)
	errs := make([]*vm.VMError, n)

	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			heap := vm.NewHeap(nil)
			taskValue := buildDemoTask(heap)
			code := demoProgramCode()
			program := vm.NewProgram(code, nil)
			it := vm.NewInterpreter(heap, program)
			res, err := runToCompletion(it, heap, taskValue, newDemoDispatch(code), 1000, nil)
			results[i] = res
			errs[i] = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "task %d: %s\n", i, errs[i].Error())
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "task %d: %s\n", i, results[i])
	}
	return nil
}
