package progress

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestModel(now time.Time) model {
	m := newModel()
	m.now = func() time.Time { return now }
	return m
}

func apply(t *testing.T, m model, msgs ...tea.Msg) model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(model)
		require.True(t, ok)
	}
	return m
}

func TestModelTaskLifecycle(t *testing.T) {
	m := apply(t, newTestModel(testEpoch),
		taskAddedMsg{id: 0, info: TaskInfo{Filename: "a.bin", ContentType: "application/octet-stream", StatusCode: 200}},
		taskTotalMsg{id: 0, total: 1000},
	)
	require.Len(t, m.tasks, 1)
	assert.Equal(t, TaskPending, m.tasks[0].state)
	assert.True(t, m.tasks[0].startedAt.IsZero())

	m = apply(t, m,
		taskStartedMsg{id: 0, at: testEpoch},
		taskAdvancedMsg{id: 0, n: 400},
		taskAdvancedMsg{id: 0, n: 600},
		taskFinishedMsg{id: 0, state: TaskCompleted, at: testEpoch.Add(2 * time.Second)},
	)
	task := m.tasks[0]
	assert.Equal(t, TaskActive.String(), "active")
	assert.Equal(t, TaskCompleted, task.state)
	assert.Equal(t, int64(1000), task.completed)
	assert.Equal(t, 1.0, task.fraction())
}

func TestModelAbortedTaskIsFrozen(t *testing.T) {
	m := apply(t, newTestModel(testEpoch),
		taskAddedMsg{id: 0, info: TaskInfo{Filename: "big.iso", StatusCode: 200}},
		taskTotalMsg{id: 0, total: 4 * 32768},
		taskStartedMsg{id: 0, at: testEpoch},
		taskAdvancedMsg{id: 0, n: 32768},
		taskFinishedMsg{id: 0, state: TaskAborted, at: testEpoch.Add(time.Second)},
		taskAdvancedMsg{id: 0, n: 32768},
		taskFinishedMsg{id: 0, state: TaskCompleted, at: testEpoch.Add(2 * time.Second)},
	)
	task := m.tasks[0]
	assert.Equal(t, TaskAborted, task.state)
	assert.Equal(t, int64(32768), task.completed)
	assert.Equal(t, testEpoch.Add(time.Second), task.endedAt)
}

func TestModelKeepsRegistrationOrder(t *testing.T) {
	m := apply(t, newTestModel(testEpoch),
		taskAddedMsg{id: 0, info: TaskInfo{Filename: "first"}},
		taskAddedMsg{id: 1, info: TaskInfo{Filename: "second"}},
		taskAddedMsg{id: 2, info: TaskInfo{Filename: "third"}},
		taskAdvancedMsg{id: 2, n: 10},
		taskAdvancedMsg{id: 0, n: 5},
	)
	require.Len(t, m.tasks, 3)
	assert.Equal(t, "first", m.tasks[0].info.Filename)
	assert.Equal(t, "second", m.tasks[1].info.Filename)
	assert.Equal(t, "third", m.tasks[2].info.Filename)
	assert.Equal(t, int64(5), m.tasks[0].completed)
	assert.Equal(t, int64(0), m.tasks[1].completed)
	assert.Equal(t, int64(10), m.tasks[2].completed)
}

func TestModelStartedOnlyOnce(t *testing.T) {
	later := testEpoch.Add(time.Minute)
	m := apply(t, newTestModel(testEpoch),
		taskAddedMsg{id: 0, info: TaskInfo{Filename: "x"}},
		taskStartedMsg{id: 0, at: testEpoch},
		taskStartedMsg{id: 0, at: later},
	)
	assert.Equal(t, testEpoch, m.tasks[0].startedAt)
}

func TestModelView(t *testing.T) {
	now := testEpoch.Add(2 * time.Second)
	m := apply(t, newTestModel(now),
		taskAddedMsg{id: 0, info: TaskInfo{Filename: "a.bin", ContentType: "application/octet-stream", StatusCode: 200}},
		taskAddedMsg{id: 1, info: TaskInfo{Filename: "b.html", ContentType: "text/html", StatusCode: 404}},
		taskTotalMsg{id: 0, total: 2000},
		taskStartedMsg{id: 0, at: testEpoch},
		taskAdvancedMsg{id: 0, n: 1000},
		tea.WindowSizeMsg{Width: 160, Height: 40},
	)

	lines := strings.Split(strings.TrimRight(m.View(), "\n"), "\n")
	require.Len(t, lines, 2)

	assert.Contains(t, lines[0], "[200]")
	assert.Contains(t, lines[0], "<application/octet-stream>")
	assert.Contains(t, lines[0], "a.bin")
	assert.Contains(t, lines[0], " 50.0%")
	assert.Contains(t, lines[0], "1.0 kB/2.0 kB")
	assert.Contains(t, lines[0], "500 B/s")
	assert.Contains(t, lines[0], "0:00:02 0:00:02")

	assert.Contains(t, lines[1], "[404]")
	assert.Contains(t, lines[1], "b.html")
	assert.Contains(t, lines[1], "  0.0%")
	assert.Contains(t, lines[1], "0 B/?")
	assert.Contains(t, lines[1], "? • -:--:-- -:--:--")
}

func TestModelViewEmpty(t *testing.T) {
	assert.Equal(t, "", newTestModel(testEpoch).View())
}

func TestBarWidth(t *testing.T) {
	m := newTestModel(testEpoch)
	assert.Equal(t, defaultBarWidth, m.barWidth(50))

	m.width = 100
	assert.Equal(t, 50, m.barWidth(50))
	assert.Equal(t, minBarWidth, m.barWidth(95))
}

func TestStatusSucceeded(t *testing.T) {
	testCases := []struct {
		status   int
		expected bool
	}{
		{200, true},
		{204, true},
		{206, true},
		{299, true},
		{199, false},
		{301, false},
		{404, false},
		{500, false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, StatusSucceeded(tc.status), "status %d", tc.status)
	}
}

func TestTaskStateIsFinished(t *testing.T) {
	assert.False(t, TaskPending.IsFinished())
	assert.False(t, TaskActive.IsFinished())
	assert.True(t, TaskCompleted.IsFinished())
	assert.True(t, TaskAborted.IsFinished())
	assert.True(t, TaskFailed.IsFinished())
}
