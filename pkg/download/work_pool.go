package download

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

type job func() error

// workPool runs jobs in FIFO order on at most size goroutines. submit never blocks: jobs wait
// in an unbounded queue until a worker frees up.
type workPool struct {
	eg errgroup.Group

	mu     sync.Mutex
	queue  []job
	closed bool
	wake   chan struct{}

	// drained is closed once every queued job has been handed to the errgroup
	drained chan struct{}
	// pending counts submitted jobs that have not returned yet
	pending atomic.Int64
}

func newWorkPool(size int) *workPool {
	p := &workPool{
		wake:    make(chan struct{}, 1),
		drained: make(chan struct{}),
	}
	p.eg.SetLimit(size)
	go p.run()
	return p
}

func (p *workPool) submit(j job) {
	p.pending.Add(1)
	p.mu.Lock()
	p.queue = append(p.queue, func() error {
		defer p.pending.Add(-1)
		return j()
	})
	p.mu.Unlock()
	p.notify()
}

func (p *workPool) notify() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *workPool) run() {
	defer close(p.drained)
	for {
		p.mu.Lock()
		if len(p.queue) == 0 {
			closed := p.closed
			p.mu.Unlock()
			if closed {
				return
			}
			<-p.wake
			continue
		}
		next := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.mu.Unlock()

		// blocks while all workers are busy
		p.eg.Go(next)
	}
}

// close stops accepting work. Jobs already queued still run.
func (p *workPool) close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.notify()
}

// wait closes the pool and blocks until every job returned, reporting the first job error.
// Once ctx is cancelled it waits at most grace longer and then gives up with
// ErrShutdownGraceExceeded, leaving any still-running jobs behind.
func (p *workPool) wait(ctx context.Context, grace time.Duration) error {
	p.close()

	result := make(chan error, 1)
	go func() {
		<-p.drained
		result <- p.eg.Wait()
	}()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
	}
	if p.pending.Load() == 0 {
		return <-result
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case err := <-result:
		return err
	case <-timer.C:
		return ErrShutdownGraceExceeded
	}
}
