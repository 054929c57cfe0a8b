//go:build !linux
// +build !linux

package rt

import (
	"fmt"
	"os"
	"runtime"
)

// UnameComment approximates the uname line from what the runtime knows.
func UnameComment() (string, error) {
	host, err := os.Hostname()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("# uname: %s %s unknown unknown %s\n", runtime.GOOS, host, runtime.GOARCH), nil
}
