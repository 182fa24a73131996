package progress

import (
	"bytes"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replicate/mget/pkg/logging"
)

// lockedBuffer guards the output the program writes from its renderer goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestTerminalDisplayRendersTasks(t *testing.T) {
	logging.SetupLogger()
	out := &lockedBuffer{}
	display := NewTerminalDisplay(out)
	require.NoError(t, display.Open())

	id := display.AddTask(TaskInfo{Filename: "hello.txt", ContentType: "text/plain", StatusCode: 200})
	assert.Equal(t, TaskID(0), id)
	display.SetTotal(id, 13)
	display.StartTask(id)
	display.Advance(id, 13)
	display.FinishTask(id, TaskCompleted)

	logger := logging.GetLogger()
	logger.Info().Msg("above the bars")

	require.NoError(t, display.Close())

	rendered := out.String()
	assert.Contains(t, rendered, "hello.txt")
	assert.Contains(t, rendered, "100.0%")
	assert.Contains(t, rendered, "above the bars")
}

func TestTerminalDisplayOpenTwice(t *testing.T) {
	display := NewTerminalDisplay(&lockedBuffer{})
	require.NoError(t, display.Open())
	defer display.Close()
	assert.ErrorIs(t, display.Open(), errDisplayOpened)
}

func TestTerminalDisplayCloseWithoutOpen(t *testing.T) {
	display := NewTerminalDisplay(&lockedBuffer{})
	assert.NoError(t, display.Close())
}

func TestTerminalDisplayWritesAfterCloseDoNotLeak(t *testing.T) {
	display := NewTerminalDisplay(&lockedBuffer{})
	require.NoError(t, display.Open())
	require.NoError(t, display.Close())

	w := &displayWriter{display: display}
	base := runtime.NumGoroutine()
	for i := 0; i < 20; i++ {
		n, err := w.Write([]byte("late line\n"))
		require.NoError(t, err)
		assert.Equal(t, len("late line\n"), n)
	}

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= base
	}, time.Second, 10*time.Millisecond)
}
