package progress

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/replicate/mget/pkg/logging"
)

var errDisplayOpened = errors.New("display already opened")

// TerminalDisplay renders one progress line per task on an interactive terminal. Updates are
// sent to a bubbletea program whose model owns all view state, so any goroutine may report.
// While open, log output is printed above the progress lines.
type TerminalDisplay struct {
	program *tea.Program
	nextID  atomic.Int64
	done    chan struct{}
	err     error
}

var _ Display = &TerminalDisplay{}

func NewTerminalDisplay(out io.Writer) *TerminalDisplay {
	return &TerminalDisplay{
		// Input is disabled so the terminal stays in cooked mode and Ctrl+C reaches the
		// process as SIGINT; signal handling belongs to the caller.
		program: tea.NewProgram(newModel(),
			tea.WithOutput(out),
			tea.WithInput(nil),
			tea.WithoutSignalHandler()),
	}
}

func (d *TerminalDisplay) Open() error {
	if d.done != nil {
		return errDisplayOpened
	}
	d.done = make(chan struct{})
	logging.SetOutput(&displayWriter{display: d})
	go func() {
		defer close(d.done)
		_, d.err = d.program.Run()
	}()
	return nil
}

// Close stops the program after rendering the final state and hands log output back to stderr.
func (d *TerminalDisplay) Close() error {
	if d.done == nil {
		return nil
	}
	logging.SetOutput(nil)
	d.program.Quit()
	<-d.done
	return d.err
}

func (d *TerminalDisplay) AddTask(info TaskInfo) TaskID {
	id := TaskID(d.nextID.Add(1) - 1)
	d.program.Send(taskAddedMsg{id: id, info: info})
	return id
}

func (d *TerminalDisplay) SetTotal(id TaskID, total int64) {
	d.program.Send(taskTotalMsg{id: id, total: total})
}

func (d *TerminalDisplay) StartTask(id TaskID) {
	d.program.Send(taskStartedMsg{id: id, at: time.Now()})
}

func (d *TerminalDisplay) Advance(id TaskID, n int64) {
	d.program.Send(taskAdvancedMsg{id: id, n: n})
}

func (d *TerminalDisplay) FinishTask(id TaskID, state TaskState) {
	d.program.Send(taskFinishedMsg{id: id, state: state, at: time.Now()})
}

// displayWriter prints each log line above the progress lines. Once the program has
// stopped, lines go straight to stderr.
type displayWriter struct {
	display *TerminalDisplay
}

func (w *displayWriter) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	printed := make(chan struct{})
	go func() {
		// Send gives up once the program has stopped; Println would block forever
		w.display.program.Send(tea.Println(line)())
		close(printed)
	}()

	select {
	case <-printed:
		return len(p), nil
	case <-w.display.done:
	}
	select {
	case <-printed:
		return len(p), nil
	default:
		return os.Stderr.Write(p)
	}
}
