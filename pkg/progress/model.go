package progress

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultBarWidth = 40
	minBarWidth     = 10
)

var (
	successStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	contentTypeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	filenameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
)

type taskAddedMsg struct {
	id   TaskID
	info TaskInfo
}

type taskTotalMsg struct {
	id    TaskID
	total int64
}

type taskStartedMsg struct {
	id TaskID
	at time.Time
}

type taskAdvancedMsg struct {
	id TaskID
	n  int64
}

type taskFinishedMsg struct {
	id    TaskID
	state TaskState
	at    time.Time
}

type taskView struct {
	info      TaskInfo
	total     int64
	hasTotal  bool
	completed int64
	state     TaskState
	startedAt time.Time
	endedAt   time.Time
}

// model is the only holder of view state. Every mutation arrives as a message on the
// program's event loop.
type model struct {
	tasks   []*taskView
	bar     progress.Model
	spinner spinner.Model
	width   int
	now     func() time.Time
}

func newModel() model {
	return model{
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(defaultBarWidth)),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		now:     time.Now,
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case taskAddedMsg:
		m.task(msg.id).info = msg.info

	case taskTotalMsg:
		t := m.task(msg.id)
		t.total = msg.total
		t.hasTotal = true

	case taskStartedMsg:
		if t := m.task(msg.id); t.state == TaskPending {
			t.state = TaskActive
			t.startedAt = msg.at
		}

	case taskAdvancedMsg:
		// finished tasks stay frozen at their last state
		if t := m.task(msg.id); !t.state.IsFinished() {
			t.completed += msg.n
		}

	case taskFinishedMsg:
		if t := m.task(msg.id); !t.state.IsFinished() {
			t.state = msg.state
			t.endedAt = msg.at
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) task(id TaskID) *taskView {
	for int(id) >= len(m.tasks) {
		m.tasks = append(m.tasks, nil)
	}
	if m.tasks[id] == nil {
		m.tasks[id] = &taskView{}
	}
	return m.tasks[id]
}

func (m model) View() string {
	now := m.now()

	descriptions := make([]string, len(m.tasks))
	descWidth := 0
	for i, t := range m.tasks {
		if t == nil {
			continue
		}
		descriptions[i] = describe(t.info)
		descWidth = max(descWidth, lipgloss.Width(descriptions[i]))
	}

	var b strings.Builder
	for i, t := range m.tasks {
		if t == nil {
			continue
		}
		desc := strings.Repeat(" ", descWidth-lipgloss.Width(descriptions[i])) + descriptions[i]
		columns := m.columns(t, now)

		bar := m.bar
		bar.Width = m.barWidth(descWidth + lipgloss.Width(columns) + 2)
		fmt.Fprintf(&b, "%s %s %s\n", desc, bar.ViewAs(t.fraction()), columns)
	}
	return b.String()
}

func (m model) barWidth(used int) int {
	if m.width <= 0 {
		return defaultBarWidth
	}
	return max(m.width-used, minBarWidth)
}

func (m model) columns(t *taskView, now time.Time) string {
	speed, speedKnown := t.speed(now)

	remaining := unknownClock
	switch {
	case t.state == TaskCompleted:
		remaining = formatClock(0)
	case t.hasTotal && speedKnown && !t.state.IsFinished():
		left := max(t.total-t.completed, 0)
		remaining = formatClock(time.Duration(float64(left) / speed * float64(time.Second)))
	}

	elapsed := unknownClock
	if !t.startedAt.IsZero() {
		elapsed = formatClock(t.end(now).Sub(t.startedAt))
	}

	return fmt.Sprintf("%5.1f%% • %s • %s • %s %s %s",
		t.fraction()*100,
		formatDownload(t.completed, t.total, t.hasTotal),
		formatSpeed(speed, speedKnown),
		remaining,
		elapsed,
		m.marker(t))
}

func (m model) marker(t *taskView) string {
	switch t.state {
	case TaskActive:
		return m.spinner.View()
	case TaskCompleted:
		return successStyle.Render("✔")
	case TaskAborted:
		return failureStyle.Render("■")
	case TaskFailed:
		return failureStyle.Render("✘")
	default:
		return " "
	}
}

func describe(info TaskInfo) string {
	status := failureStyle.Render(fmt.Sprint(info.StatusCode))
	if StatusSucceeded(info.StatusCode) {
		status = successStyle.Render(fmt.Sprint(info.StatusCode))
	}
	return fmt.Sprintf("[%s] <%s> %s", status, contentTypeStyle.Render(info.ContentType), filenameStyle.Render(info.Filename))
}

func (t *taskView) fraction() float64 {
	if !t.hasTotal || t.total <= 0 {
		if t.state == TaskCompleted {
			return 1
		}
		return 0
	}
	return min(float64(t.completed)/float64(t.total), 1)
}

func (t *taskView) end(now time.Time) time.Time {
	if !t.endedAt.IsZero() {
		return t.endedAt
	}
	return now
}

// speed is the mean transfer rate since the task started.
func (t *taskView) speed(now time.Time) (float64, bool) {
	if t.startedAt.IsZero() || t.completed == 0 {
		return 0, false
	}
	elapsed := t.end(now).Sub(t.startedAt).Seconds()
	if elapsed <= 0 {
		return 0, false
	}
	return float64(t.completed) / elapsed, true
}
