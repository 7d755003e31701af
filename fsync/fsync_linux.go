package fsync

import (
	"os"
	"syscall"
)

func fdatasync(f *os.File) error {
	return syscall.Fdatasync(int(f.Fd()))
}

func syncDir(d *os.File) error {
	return d.Sync()
}
