package progress

// TaskID identifies a task registered with a Reporter. IDs are assigned in
// registration order starting at zero.
type TaskID int

// TaskInfo holds the descriptive fields of a task. They are fixed at registration.
type TaskInfo struct {
	Filename    string
	ContentType string
	StatusCode  int
}

// TaskState is the lifecycle of a displayed task:
// Pending -> Active -> one of Completed, Aborted or Failed.
type TaskState int

const (
	TaskPending TaskState = iota
	TaskActive
	TaskCompleted
	TaskAborted
	TaskFailed
)

func (s TaskState) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskActive:
		return "active"
	case TaskCompleted:
		return "completed"
	case TaskAborted:
		return "aborted"
	case TaskFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsFinished reports whether the task reached a terminal state
func (s TaskState) IsFinished() bool {
	return s == TaskCompleted || s == TaskAborted || s == TaskFailed
}

// StatusSucceeded reports whether a response status renders as a success.
func StatusSucceeded(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// Reporter receives task registrations and progress updates. Implementations are safe for
// concurrent use; each task is updated by a single owner.
type Reporter interface {
	AddTask(info TaskInfo) TaskID
	SetTotal(id TaskID, total int64)
	StartTask(id TaskID)
	Advance(id TaskID, n int64)
	FinishTask(id TaskID, state TaskState)
}

// Display is a Reporter bound to an output for the span between Open and Close.
// Close must be called once Open succeeded; it restores the terminal.
type Display interface {
	Reporter
	Open() error
	Close() error
}
