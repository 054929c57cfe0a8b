// Package rt pins pipeline goroutines to OS threads running under the
// SCHED_FIFO real-time policy, and reports host identification.
package rt

import (
	"github.com/lanikai/framecast/internal/logging"
)

var log = logging.DefaultLogger.WithTag("rt")

// Priority offsets below the policy maximum, one per pipeline thread. The
// controller outranks the stages, and each stage outranks the one downstream.
const (
	Controller = 0
	Capture    = 1
	Encode     = 2
	Server     = 3
)
