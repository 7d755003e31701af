//go:build !linux && !openbsd

package fsync

import (
	"os"
	"runtime"
)

func fdatasync(f *os.File) error {
	return f.Sync()
}

func syncDir(d *os.File) error {
	if runtime.GOOS == "windows" || runtime.GOOS == "plan9" {
		return nil
	}
	return d.Sync()
}
