// Package fsync flushes rewritten files to stable storage.
package fsync

import "os"

// Fdatasync triggers the fastest fsync-like operation that ensures durability
// of the data written to the given file.
//
// Fdatasync might be faster than f.Sync() aka fsync thanks to not syncing
// metadata (last modification/access time) that isn't necessary to ensure
// durability of the data.
//
// WARNING: ERRORS RETURNED BY THIS FUNCTION ARE NOT RECOVERABLE. Many operating
// systems and file systems mark modified pages as clean in case of fsync
// failures, so a failed sync means the file contents on disk are unknown.
// Callers should treat the file as suspect and rewrite it in full.
func Fdatasync(f *os.File) error {
	return fdatasync(f)
}

// Dir syncs the directory at path, making a newly created file's directory
// entry durable. It is a no-op on platforms that can't open directories.
func Dir(path string) error {
	d, err := os.Open(path)
	if err != nil {
		return err
	}
	defer d.Close()
	return syncDir(d)
}
