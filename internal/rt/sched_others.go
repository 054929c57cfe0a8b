//go:build !linux
// +build !linux

package rt

import (
	"runtime"

	"github.com/pkg/errors"
)

var errNotSupported = errors.New("rt: real-time scheduling not supported on this platform")

func MaxPriority() (int, error) {
	return 0, errNotSupported
}

func Pin(offset int) (release func(), err error) {
	runtime.LockOSThread()
	return runtime.UnlockOSThread, errNotSupported
}
