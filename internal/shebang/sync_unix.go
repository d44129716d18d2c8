//go:build linux || freebsd

package shebang

import (
	"os"

	"golang.org/x/sys/unix"
)

// syncFile flushes the data of f to stable storage before it is renamed
// into place.
func syncFile(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}
