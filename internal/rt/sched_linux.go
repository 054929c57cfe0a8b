//go:build linux
// +build linux

package rt

import (
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const schedFIFO = 1

type schedParam struct {
	priority int32
}

// MaxPriority returns the highest SCHED_FIFO priority.
func MaxPriority() (int, error) {
	r, _, errno := unix.RawSyscall(unix.SYS_SCHED_GET_PRIORITY_MAX, schedFIFO, 0, 0)
	if errno != 0 {
		return 0, errno
	}
	return int(r), nil
}

// Pin locks the calling goroutine to its OS thread and switches that thread to
// SCHED_FIFO at (max - offset). The caller must invoke the returned function
// before the goroutine exits. On failure the goroutine stays locked, so callers
// that continue without real-time scheduling still need to call release.
//
//	release, err := rt.Pin(rt.Capture)
//	defer release()
//	if err != nil { ... }
func Pin(offset int) (release func(), err error) {
	runtime.LockOSThread()
	release = runtime.UnlockOSThread

	max, err := MaxPriority()
	if err != nil {
		return release, errors.Wrap(err, "sched_get_priority_max")
	}
	prio := max - offset
	if prio < 1 {
		prio = 1
	}

	tid := unix.Gettid()
	param := schedParam{int32(prio)}
	_, _, errno := unix.Syscall(unix.SYS_SCHED_SETSCHEDULER, uintptr(tid), schedFIFO, uintptr(unsafe.Pointer(&param)))
	if errno != 0 {
		return release, errors.Wrapf(errno, "sched_setscheduler(tid=%d, prio=%d)", tid, prio)
	}
	log.Low("Thread %d running SCHED_FIFO at priority %d", tid, prio)
	return release, nil
}
