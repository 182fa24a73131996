package download

import (
	"time"

	"github.com/replicate/mget/pkg/client"
)

const (
	// MaxConcurrentFetches is the fixed size of the fetch worker pool.
	MaxConcurrentFetches = 4

	// ChunkSize is the number of bytes read from a response body between progress updates and
	// cancellation checks.
	ChunkSize = 32768
)

type Options struct {
	Client client.Options

	// ShutdownGrace is how long Download keeps waiting for in-flight fetches once the context
	// is cancelled. Zero abandons them immediately.
	ShutdownGrace time.Duration
}
