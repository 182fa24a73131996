package download

import (
	"errors"
)

// ErrShutdownGraceExceeded is returned when fetches are still running after an interrupt and
// the shutdown grace period has run out.
var ErrShutdownGraceExceeded = errors.New("downloads still in flight after shutdown grace period")
