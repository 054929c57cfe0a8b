//go:build linux
// +build linux

package rt

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// UnameComment returns the host identification line embedded in every image,
// "# uname: <sysname> <nodename> <release> <version> <machine>\n".
func UnameComment() (string, error) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "", err
	}
	return fmt.Sprintf("# uname: %s %s %s %s %s\n",
		unix.ByteSliceToString(u.Sysname[:]),
		unix.ByteSliceToString(u.Nodename[:]),
		unix.ByteSliceToString(u.Release[:]),
		unix.ByteSliceToString(u.Version[:]),
		unix.ByteSliceToString(u.Machine[:]),
	), nil
}
