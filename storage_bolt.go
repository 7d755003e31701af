package jsondoc

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

// boltStorage keeps the document as a single value inside a Bolt database,
// encoded with the configured EncodingMethod.
type boltStorage struct {
	path   string
	bdb    *bbolt.DB
	bucket []byte
	key    []byte
	enc    EncodingMethod
}

func openBoltStorage(path, bucket, key string, opt *Options) (*boltStorage, error) {
	if bucket == "" || key == "" {
		return nil, configErrf("open", path, fmt.Errorf("bucket and key must be non-empty"))
	}
	if err := os.MkdirAll(filepath.Dir(path), opt.DirPerm); err != nil {
		return nil, ioErrf("open", path, err)
	}

	bopt := *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024
	} else {
		bopt.FreelistType = bbolt.FreelistMapType
	}

	bdb, err := bbolt.Open(path, opt.FilePerm, &bopt)
	if err != nil {
		return nil, ioErrf("open", path, err)
	}
	return &boltStorage{
		path:   path,
		bdb:    bdb,
		bucket: []byte(bucket),
		key:    []byte(key),
		enc:    opt.Encoding,
	}, nil
}

func (s *boltStorage) String() string {
	return fmt.Sprintf("%s[%s/%s]", s.path, s.bucket, s.key)
}

func (s *boltStorage) Load() (*Object, error) {
	var obj *Object
	var decodeErr error
	err := s.bdb.View(func(btx *bbolt.Tx) error {
		b := btx.Bucket(s.bucket)
		if b == nil {
			return nil
		}
		raw := b.Get(s.key)
		if len(raw) == 0 {
			return nil
		}
		// raw is only valid inside the transaction; decoding copies everything.
		obj, decodeErr = s.enc.DecodeTree(raw)
		return nil
	})
	if err != nil {
		return nil, ioErrf("load", s.String(), err)
	}
	if decodeErr != nil {
		return nil, codecErrf("parse", s.String(), decodeErr, "")
	}
	if obj == nil {
		obj = NewObject()
	}
	return obj, nil
}

func (s *boltStorage) Store(root *Object, _ []byte) error {
	if s.bdb == nil {
		return ioErrf("save", s.String(), ErrClosed)
	}
	raw, err := s.enc.EncodeTree(root)
	if err != nil {
		return codecErrf("serialize", s.String(), err, "")
	}
	err = s.bdb.Update(func(btx *bbolt.Tx) error {
		b, err := btx.CreateBucketIfNotExists(s.bucket)
		if err != nil {
			return err
		}
		return b.Put(s.key, raw)
	})
	if err != nil {
		return ioErrf("save", s.String(), err)
	}
	return nil
}

func (s *boltStorage) Close() error {
	if s.bdb == nil {
		return nil
	}
	err := s.bdb.Close()
	s.bdb = nil
	if err != nil {
		return ioErrf("close", s.path, err)
	}
	return nil
}

// Bolt exposes the underlying database, e.g. for storing other data next to
// the document.
func (s *boltStorage) Bolt() *bbolt.DB {
	return s.bdb
}
