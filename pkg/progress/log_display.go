package progress

import (
	"sync"
	"time"

	"github.com/replicate/mget/pkg/logging"
)

// LogDisplay reports task events as log lines. It is used when stdout is not a terminal.
type LogDisplay struct {
	mu    sync.Mutex
	tasks []*taskView
}

var _ Display = &LogDisplay{}

func NewLogDisplay() *LogDisplay {
	return &LogDisplay{}
}

func (d *LogDisplay) Open() error  { return nil }
func (d *LogDisplay) Close() error { return nil }

func (d *LogDisplay) AddTask(info TaskInfo) TaskID {
	d.mu.Lock()
	id := TaskID(len(d.tasks))
	d.tasks = append(d.tasks, &taskView{info: info})
	d.mu.Unlock()

	logger := logging.GetLogger()
	event := logger.Info()
	if !StatusSucceeded(info.StatusCode) {
		event = logger.Warn()
	}
	event.Int("task", int(id)).
		Str("filename", info.Filename).
		Str("content_type", info.ContentType).
		Int("status", info.StatusCode).
		Bool("status_ok", StatusSucceeded(info.StatusCode)).
		Msg("Queued")
	return id
}

func (d *LogDisplay) SetTotal(id TaskID, total int64) {
	d.update(id, func(t *taskView) {
		t.total = total
		t.hasTotal = true
	})
}

func (d *LogDisplay) StartTask(id TaskID) {
	d.update(id, func(t *taskView) {
		if t.state == TaskPending {
			t.state = TaskActive
			t.startedAt = time.Now()
		}
	})
}

func (d *LogDisplay) Advance(id TaskID, n int64) {
	d.update(id, func(t *taskView) {
		if !t.state.IsFinished() {
			t.completed += n
		}
	})
}

func (d *LogDisplay) FinishTask(id TaskID, state TaskState) {
	var snapshot taskView
	d.update(id, func(t *taskView) {
		if !t.state.IsFinished() {
			t.state = state
			t.endedAt = time.Now()
		}
		snapshot = *t
	})

	logger := logging.GetLogger()
	event := logger.Debug()
	if snapshot.state != TaskCompleted {
		event = logger.Warn()
	}
	event.Int("task", int(id)).
		Str("filename", snapshot.info.Filename).
		Str("state", snapshot.state.String()).
		Str("transferred", formatDownload(snapshot.completed, snapshot.total, snapshot.hasTotal)).
		Msg("Finished")
}

func (d *LogDisplay) update(id TaskID, fn func(t *taskView)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if int(id) < 0 || int(id) >= len(d.tasks) {
		return
	}
	fn(d.tasks[id])
}

// Snapshot returns the state, transferred bytes and total of a task.
func (d *LogDisplay) Snapshot(id TaskID) (state TaskState, completed int64, total int64, hasTotal bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if int(id) < 0 || int(id) >= len(d.tasks) {
		return TaskPending, 0, 0, false
	}
	t := d.tasks[id]
	return t.state, t.completed, t.total, t.hasTotal
}
