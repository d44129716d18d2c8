//go:build !linux && !freebsd

package shebang

import "os"

func syncFile(f *os.File) error {
	return f.Sync()
}
