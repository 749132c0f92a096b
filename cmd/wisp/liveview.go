package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/wisp/internal/vm"
)

// liveUpdate is one turn's worth of interpreter state, streamed from the
// background loop goroutine to the Bubble Tea program.
type liveUpdate struct {
	turn      int
	result    vm.Result
	err       *vm.VMError
	heapCount int
	stackTop  int
	stackLen  int
	done      bool
}

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	doneStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

type liveModel struct {
	updates <-chan liveUpdate
	last    liveUpdate
	final   bool
	spin    spinner.Model
}

func newLiveModel(ch <-chan liveUpdate) liveModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	return liveModel{updates: ch, spin: s}
}

func waitForUpdate(ch <-chan liveUpdate) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return liveUpdate{done: true}
		}
		return u
	}
}

func (m liveModel) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), m.spin.Tick)
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case liveUpdate:
		m.last = msg
		if msg.done {
			m.final = true
			return m, tea.Quit
		}
		return m, waitForUpdate(m.updates)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m liveModel) View() string {
	if m.final {
		return doneStyle.Render("interpreter loop finished") + "\n"
	}
	status := valueStyle.Render(m.last.result.String())
	if m.last.err != nil {
		status = failStyle.Render(m.last.err.Error())
	}
	return fmt.Sprintf(
		"%s %s\n%s %d\n%s %s\n%s %d\n%s %d/%d\n\n%s\n",
		m.spin.View(), labelStyle.Render("running"),
		labelStyle.Render("turn"), m.last.turn,
		labelStyle.Render("result"), status,
		labelStyle.Render("heap objects"), m.last.heapCount,
		labelStyle.Render("stack top/len"), m.last.stackTop, m.last.stackLen,
		"press q to quit",
	)
}

// runWithLiveView drives the interpreter in a background goroutine,
// streaming a liveUpdate to the Bubble Tea program after every turn.
func runWithLiveView(it *vm.Interpreter, heap *vm.Heap, program *vm.Program, taskValue vm.Value, maxTurns int, tracer *vm.Tracer) error {
	ch := make(chan liveUpdate)
	go func() {
		defer close(ch)
		task := heap.Get(taskValue)
		dispatch := newDemoDispatch(program.Code)
		for turn := 0; turn < maxTurns; turn++ {
			it.Activate(task)
			res, err := it.Run(dispatch)
			if tracer != nil {
				tracer.TraceRun(res, err)
			}
			ch <- liveUpdate{
				turn:      turn,
				result:    res,
				err:       err,
				heapCount: heap.Count(),
				stackTop:  it.CurrentStack().StackTop(),
				stackLen:  it.CurrentStack().StackLength(),
			}
			if err != nil || res == vm.ResultTerminated || res == vm.ResultDeepSleep {
				return
			}
		}
	}()

	p := tea.NewProgram(newLiveModel(ch), tea.WithOutput(os.Stdout))
	_, err := p.Run()
	return err
}
