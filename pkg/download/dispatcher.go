package download

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/replicate/mget/pkg/client"
	"github.com/replicate/mget/pkg/logging"
	"github.com/replicate/mget/pkg/progress"
)

// Dispatcher probes URLs one at a time, registers a display task for each and hands the
// transfers to a pool of MaxConcurrentFetches workers.
type Dispatcher struct {
	client        httpClient
	display       progress.Display
	shutdownGrace time.Duration
}

func NewDispatcher(opts Options, display progress.Display) *Dispatcher {
	return &Dispatcher{
		client:        client.NewHTTPClient(opts.Client),
		display:       display,
		shutdownGrace: opts.ShutdownGrace,
	}
}

type probeResult struct {
	statusCode  int
	contentType string
}

// Download fetches every URL into dir. The display is open for the whole call.
//
// A probe that fails at the transport level stops the loop: nothing further is queued, the
// jobs already queued run to completion and the probe error is returned. A non-2xx status is
// not an error; the body is downloaded anyway. Once ctx is cancelled no more URLs are probed
// and running fetches stop at their next chunk boundary.
func (d *Dispatcher) Download(ctx context.Context, urls []string, dir string) (err error) {
	if err := d.display.Open(); err != nil {
		return fmt.Errorf("error opening progress display: %w", err)
	}
	defer func() {
		if closeErr := d.display.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("error closing progress display: %w", closeErr)
		}
	}()

	logger := logging.GetLogger()
	fetcher := &Fetcher{Client: d.client, Reporter: d.display, ChunkSize: ChunkSize}
	metrics := &downloadMetrics{}
	pool := newWorkPool(MaxConcurrentFetches)
	downloadStart := time.Now()

	var probeErr error
	for i, rawURL := range urls {
		if ctx.Err() != nil {
			logger.Warn().Int("skipped", len(urls)-i).Msg("Interrupted")
			break
		}
		req, id, err := d.register(ctx, rawURL, dir)
		if err != nil {
			if ctx.Err() == nil {
				probeErr = err
			}
			break
		}
		pool.submit(func() error {
			return d.fetch(ctx, fetcher, req, id, metrics)
		})
	}

	waitErr := pool.wait(ctx, d.shutdownGrace)
	aggregateAndLogMetrics(time.Since(downloadStart), metrics)

	if probeErr != nil {
		return probeErr
	}
	if waitErr != nil {
		return fmt.Errorf("error downloading files: %w", waitErr)
	}
	return nil
}

func (d *Dispatcher) register(ctx context.Context, rawURL, dir string) (Request, progress.TaskID, error) {
	probe, err := d.probe(ctx, rawURL)
	if err != nil {
		return Request{}, 0, fmt.Errorf("error probing %s: %w", rawURL, err)
	}

	filename := destinationName(FilenameFromURL(rawURL), probe.contentType)
	req := Request{URL: rawURL, Dest: filepath.Join(dir, filename)}
	id := d.display.AddTask(progress.TaskInfo{
		Filename:    filename,
		ContentType: probe.contentType,
		StatusCode:  probe.statusCode,
	})

	logger := logging.GetLogger()
	logger.Debug().
		Str("url", req.URL).
		Str("dest", req.Dest).
		Int("status", probe.statusCode).
		Str("content_type", probe.contentType).
		Msg("Queueing Download")
	return req, id, nil
}

func (d *Dispatcher) probe(ctx context.Context, rawURL string) (probeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return probeResult{}, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return probeResult{}, err
	}
	resp.Body.Close()
	return probeResult{
		statusCode:  resp.StatusCode,
		contentType: mediaType(resp.Header.Get("Content-Type")),
	}, nil
}

func (d *Dispatcher) fetch(ctx context.Context, fetcher *Fetcher, req Request, id progress.TaskID, metrics *downloadMetrics) error {
	result, err := fetcher.Fetch(ctx, req, id)
	if err != nil {
		d.display.FinishTask(id, progress.TaskFailed)
		logger := logging.GetLogger()
		logger.Error().Err(err).Str("url", req.URL).Str("dest", req.Dest).Msg("Download failed")
		return err
	}
	if result.Completed {
		addDownloadMetrics(metrics, result.Elapsed, result.Size)
	} else {
		metrics.addAborted()
	}
	return nil
}
