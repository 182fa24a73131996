package progress

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

const unknownClock = "-:--:--"

func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}

func formatDownload(completed, total int64, hasTotal bool) string {
	if !hasTotal {
		return fmt.Sprintf("%s/?", humanize.Bytes(uint64(completed)))
	}
	return fmt.Sprintf("%s/%s", humanize.Bytes(uint64(completed)), humanize.Bytes(uint64(total)))
}

func formatSpeed(bytesPerSecond float64, known bool) string {
	if !known {
		return "?"
	}
	return fmt.Sprintf("%s/s", humanize.Bytes(uint64(bytesPerSecond)))
}
