package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/replicate/mget/pkg/logging"
	"github.com/replicate/mget/pkg/progress"
)

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher streams one URL into one file and reports progress on the task it owns.
type Fetcher struct {
	Client    httpClient
	Reporter  progress.Reporter
	ChunkSize int
}

// FetchResult describes one finished fetch. Completed is false when the fetch was interrupted
// and Size counts only the bytes written before that.
type FetchResult struct {
	Size      int64
	Elapsed   time.Duration
	Completed bool
}

// Fetch downloads req.URL into req.Dest. The context is polled between chunks: once it is
// cancelled the task is marked aborted and Fetch returns without an error, leaving the partial
// file in place. Requests themselves are not bound to the context and never time out.
func (f *Fetcher) Fetch(ctx context.Context, req Request, id progress.TaskID) (FetchResult, error) {
	logger := logging.GetLogger()
	if ctx.Err() != nil {
		f.Reporter.FinishTask(id, progress.TaskAborted)
		return FetchResult{}, nil
	}

	startTime := time.Now()
	reqCtx := context.WithoutCancel(ctx)

	logger.Info().Str("url", req.URL).Msg("Requesting")
	resp, err := f.do(reqCtx, http.MethodGet, req.URL)
	if err != nil {
		return FetchResult{}, fmt.Errorf("error executing request for %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	total, err := f.totalSize(reqCtx, req.URL)
	if err != nil {
		return FetchResult{}, err
	}
	f.Reporter.SetTotal(id, total)
	f.Reporter.StartTask(id)

	out, err := os.Create(req.Dest)
	if err != nil {
		return FetchResult{}, fmt.Errorf("error creating file %s: %w", req.Dest, err)
	}
	defer out.Close()

	written, completed, err := f.stream(ctx, resp.Body, out, id)
	result := FetchResult{Size: written, Elapsed: time.Since(startTime), Completed: completed}
	if err != nil {
		return result, fmt.Errorf("error downloading %s to %s: %w", req.URL, req.Dest, err)
	}
	if !completed {
		f.Reporter.FinishTask(id, progress.TaskAborted)
		logger.Warn().
			Str("dest", req.Dest).
			Str("size", humanize.Bytes(uint64(written))).
			Msg("Interrupted")
		return result, nil
	}

	f.Reporter.FinishTask(id, progress.TaskCompleted)
	throughput := humanize.Bytes(uint64(float64(written) / result.Elapsed.Seconds()))
	logger.Info().
		Str("dest", req.Dest).
		Str("size", humanize.Bytes(uint64(written))).
		Str("throughput", fmt.Sprintf("%s/s", throughput)).
		Str("elapsed", fmt.Sprintf("%.3fs", result.Elapsed.Seconds())).
		Msg("Downloaded")
	return result, nil
}

// stream copies body to out one chunk at a time, advancing the task after each write. It
// reports completed=false when ctx was cancelled before the body was exhausted.
func (f *Fetcher) stream(ctx context.Context, body io.Reader, out io.Writer, id progress.TaskID) (written int64, completed bool, err error) {
	buf := make([]byte, f.chunkSize())
	for {
		n, readErr := readChunk(body, buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return written, false, fmt.Errorf("error writing file: %w", err)
			}
			written += int64(n)
			f.Reporter.Advance(id, int64(n))
		}
		switch readErr {
		case nil:
		case io.EOF:
			return written, true, nil
		default:
			return written, false, fmt.Errorf("error reading response: %w", readErr)
		}
		if ctx.Err() != nil {
			return written, false, nil
		}
	}
}

// readChunk fills buf from r and returns the reader's own error. Only io.EOF ends the body; a
// response cut short of its Content-Length reports io.ErrUnexpectedEOF.
func readChunk(r io.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// totalSize prefers the Content-Length of a HEAD response. Without one it downloads the whole
// body a second time and uses its length, which may differ from the body being streamed.
func (f *Fetcher) totalSize(ctx context.Context, url string) (int64, error) {
	resp, err := f.do(ctx, http.MethodHead, url)
	if err != nil {
		return 0, fmt.Errorf("error executing HEAD request for %s: %w", url, err)
	}
	resp.Body.Close()
	if size, ok := contentLength(resp); ok {
		return size, nil
	}

	resp, err = f.do(ctx, http.MethodGet, url)
	if err != nil {
		return 0, fmt.Errorf("error executing request for %s: %w", url, err)
	}
	defer resp.Body.Close()
	size, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return 0, fmt.Errorf("error reading response for %s: %w", url, err)
	}
	return size, nil
}

func (f *Fetcher) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	return f.Client.Do(req)
}

func (f *Fetcher) chunkSize() int {
	if f.ChunkSize <= 0 {
		return ChunkSize
	}
	return f.ChunkSize
}

func contentLength(resp *http.Response) (int64, bool) {
	if header := resp.Header.Get("Content-Length"); header != "" {
		size, err := strconv.ParseInt(strings.TrimSpace(header), 10, 64)
		if err == nil && size >= 0 {
			return size, true
		}
	}
	if resp.ContentLength >= 0 {
		return resp.ContentLength, true
	}
	return 0, false
}
