package jsondoc

import (
	"io"
	"os"
	"path/filepath"

	"github.com/andreyvit/jsondoc/fsync"
)

// storage holds the persisted form of one document (a JSON file, a value in
// a Bolt database, or a byte slice in memory).
type storage interface {
	// Load returns the stored tree, or an empty object if nothing has been
	// stored yet.
	Load() (*Object, error)

	// Store replaces the stored document. rendered is the pretty JSON form of
	// root; backends that keep JSON text write it verbatim.
	Store(root *Object, rendered []byte) error

	// Close releases the underlying resources without storing anything.
	Close() error

	// String describes the storage location for logs and errors.
	String() string
}

// fileStorage keeps the document in a single JSON file that stays open for
// the lifetime of the document.
type fileStorage struct {
	path      string
	dir       string
	f         *os.File
	sync      bool
	dirSynced bool
}

func openFileStorage(dir, fileName string, opt *Options) (*fileStorage, error) {
	if err := os.MkdirAll(dir, opt.DirPerm); err != nil {
		return nil, ioErrf("open", dir, err)
	}
	path := filepath.Join(dir, fileName)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, opt.FilePerm)
	if err != nil {
		return nil, ioErrf("open", path, err)
	}
	return &fileStorage{
		path: path,
		dir:  dir,
		f:    f,
		sync: opt.Sync,
	}, nil
}

func (s *fileStorage) String() string {
	return s.path
}

func (s *fileStorage) Load() (*Object, error) {
	if _, err := s.f.Seek(0, io.SeekStart); err != nil {
		return nil, ioErrf("load", s.path, err)
	}
	data, err := io.ReadAll(s.f)
	if err != nil {
		return nil, ioErrf("load", s.path, err)
	}
	if len(data) == 0 {
		return NewObject(), nil
	}
	obj, err := ParseObject(data)
	if err != nil {
		return nil, codecErrf("parse", s.path, err, "")
	}
	return obj, nil
}

func (s *fileStorage) Store(_ *Object, rendered []byte) error {
	if s.f == nil {
		return ioErrf("save", s.path, ErrClosed)
	}
	if err := s.f.Truncate(0); err != nil {
		return ioErrf("save", s.path, err)
	}
	if _, err := s.f.Seek(0, io.SeekStart); err != nil {
		return ioErrf("save", s.path, err)
	}
	if _, err := s.f.Write(rendered); err != nil {
		return ioErrf("save", s.path, err)
	}
	if s.sync {
		if err := fsync.Fdatasync(s.f); err != nil {
			return ioErrf("sync", s.path, err)
		}
		if !s.dirSynced {
			if err := fsync.Dir(s.dir); err != nil {
				return ioErrf("sync", s.dir, err)
			}
			s.dirSynced = true
		}
	}
	return nil
}

func (s *fileStorage) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	if err != nil {
		return ioErrf("close", s.path, err)
	}
	return nil
}
