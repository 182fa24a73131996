package download

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/replicate/mget/pkg/logging"
)

type downloadMetric struct {
	elapsedTime time.Duration
	fileSize    int64
}

type downloadMetrics struct {
	metrics []downloadMetric
	aborted int
	mut     sync.Mutex
}

func addDownloadMetrics(metrics *downloadMetrics, elapsedTime time.Duration, fileSize int64) {
	result := downloadMetric{
		elapsedTime: elapsedTime,
		fileSize:    fileSize,
	}
	metrics.mut.Lock()
	defer metrics.mut.Unlock()
	metrics.metrics = append(metrics.metrics, result)
}

// addAborted counts a fetch that was interrupted. Its partial size is not part of the totals.
func (m *downloadMetrics) addAborted() {
	m.mut.Lock()
	defer m.mut.Unlock()
	m.aborted++
}

func (m *downloadMetrics) totals() (fileCount, abortedCount int, totalFileSize int64) {
	m.mut.Lock()
	defer m.mut.Unlock()
	for _, metric := range m.metrics {
		totalFileSize += metric.fileSize
	}
	return len(m.metrics), m.aborted, totalFileSize
}

func aggregateAndLogMetrics(elapsedTime time.Duration, metrics *downloadMetrics) {
	fileCount, abortedCount, totalFileSize := metrics.totals()
	throughput := float64(totalFileSize) / elapsedTime.Seconds()

	logger := logging.GetLogger()
	logger.Info().
		Int("file_count", fileCount).
		Int("aborted_count", abortedCount).
		Str("total_bytes_downloaded", humanize.Bytes(uint64(totalFileSize))).
		Str("throughput", fmt.Sprintf("%s/s", humanize.Bytes(uint64(throughput)))).
		Str("elapsed_time", fmt.Sprintf("%.3fs", elapsedTime.Seconds())).
		Msg("Metrics")
}
