package jsondoc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.etcd.io/bbolt"
)

// InMemory can be passed as the directory to Open to get a document that is
// never written to disk. Intended for tests.
const InMemory = ":memory:"

type Options struct {
	Logger  *slog.Logger
	Verbose bool

	// Indent is used when rendering the document; defaults to DefaultIndent.
	Indent string

	DirPerm  os.FileMode // for created directories, defaults to 0755
	FilePerm os.FileMode // for created files, defaults to 0644

	// Sync makes Save fdatasync the file (and, once, its directory).
	Sync bool

	// IsTesting trades durability for speed in the Bolt backend.
	IsTesting bool

	// Encoding is the value encoding used by the Bolt backend. With MsgPack,
	// numbers beyond float64 range are kept as their literal text.
	Encoding EncodingMethod
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Indent == "" {
		o.Indent = DefaultIndent
	}
	if o.DirPerm == 0 {
		o.DirPerm = 0755
	}
	if o.FilePerm == 0 {
		o.FilePerm = 0644
	}
	return o
}

// Document is an open JSON document: the parsed tree plus the storage it was
// loaded from. A Document is meant to be used by one goroutine at a time.
//
// Reads and writes go through the Document itself (which acts as the root
// MutSection) or through sections obtained with GetSection/GetMutSection.
// Nothing is persisted until Save is called; Close does not save.
type Document struct {
	stg      storage
	root     *Object
	logger   *slog.Logger
	verbose  bool
	indent   string
	savedSum uint64
	closed   bool
}

// Open opens or creates fileName inside dir, creating any missing
// directories. An empty file yields an empty document; anything else must be
// a JSON object.
func Open(dir, fileName string, opt Options) (*Document, error) {
	opt = opt.withDefaults()
	if dir == InMemory {
		return load(newMemStorage(fileName, nil), &opt)
	}
	fs, err := openFileStorage(dir, fileName, &opt)
	if err != nil {
		return nil, err
	}
	return load(fs, &opt)
}

// OpenUnderHome is like Open, with dir resolved relative to the user's home
// directory.
func OpenUnderHome(relPath, fileName string, opt Options) (*Document, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, configErrf("open", filepath.Join(relPath, fileName), fmt.Errorf("%w: %w", ErrNoHomeDir, err))
	}
	if home == "" {
		return nil, configErrf("open", filepath.Join(relPath, fileName), ErrNoHomeDir)
	}
	return Open(filepath.Join(home, relPath), fileName, opt)
}

// OpenBolt opens or creates a Bolt database at path and uses the value
// stored under bucket/key as the document.
func OpenBolt(path, bucket, key string, opt Options) (*Document, error) {
	opt = opt.withDefaults()
	bs, err := openBoltStorage(path, bucket, key, &opt)
	if err != nil {
		return nil, err
	}
	return load(bs, &opt)
}

func load(stg storage, opt *Options) (*Document, error) {
	start := time.Now()
	root, err := stg.Load()
	if err != nil {
		stg.Close()
		return nil, err
	}
	doc := &Document{
		stg:     stg,
		root:    root,
		logger:  opt.Logger,
		verbose: opt.Verbose,
		indent:  opt.Indent,
	}
	if rendered, err := Render(root, doc.indent); err == nil {
		doc.savedSum = xxhash.Sum64(rendered)
	}
	if doc.verbose {
		doc.logger.LogAttrs(context.Background(), slog.LevelDebug, "jsondoc: LOAD",
			slog.String("storage", stg.String()),
			slog.Int("keys", root.Len()),
			slog.Duration("elapsed", time.Since(start)))
	}
	return doc, nil
}

func (doc *Document) String() string {
	return doc.stg.String()
}

// Save renders the whole tree and replaces the stored document with it,
// discarding anything written to the storage by others since Open. Returns
// the rendered JSON.
func (doc *Document) Save() (string, error) {
	if doc.closed {
		return "", ioErrf("save", doc.stg.String(), ErrClosed)
	}
	start := time.Now()
	rendered, err := Render(doc.root, doc.indent)
	if err != nil {
		return "", codecErrf("serialize", doc.stg.String(), err, "")
	}
	if err := doc.stg.Store(doc.root, rendered); err != nil {
		doc.logger.LogAttrs(context.Background(), slog.LevelError, "jsondoc: save failed",
			slog.String("storage", doc.stg.String()),
			slog.Any("err", err))
		return "", err
	}
	doc.savedSum = xxhash.Sum64(rendered)
	if doc.verbose {
		doc.logger.LogAttrs(context.Background(), slog.LevelDebug, "jsondoc: SAVE",
			slog.String("storage", doc.stg.String()),
			slog.Int("bytes", len(rendered)),
			slog.Duration("elapsed", time.Since(start)))
	}
	return string(rendered), nil
}

// Changed reports whether the tree would render differently from what was
// last loaded or saved.
func (doc *Document) Changed() bool {
	rendered, err := Render(doc.root, doc.indent)
	if err != nil {
		return true
	}
	return xxhash.Sum64(rendered) != doc.savedSum
}

// ReplaceAll makes root the document's tree. The document takes ownership of
// root; sections obtained earlier now resolve against the new tree.
func (doc *Document) ReplaceAll(root *Object) {
	if root == nil {
		root = NewObject()
	}
	doc.root = root
}

// Snapshot returns a deep copy of the tree.
func (doc *Document) Snapshot() *Object {
	return doc.root.Clone()
}

// Close releases the storage without saving.
func (doc *Document) Close() error {
	if doc.closed {
		return nil
	}
	doc.closed = true
	return doc.stg.Close()
}

// Bolt returns the database backing a document opened with OpenBolt, and nil
// otherwise.
func (doc *Document) Bolt() *bbolt.DB {
	if bs, ok := doc.stg.(*boltStorage); ok {
		return bs.Bolt()
	}
	return nil
}

// View implements Viewer.
func (doc *Document) View() Section {
	return Section{doc: doc}
}

// Edit implements Editor.
func (doc *Document) Edit() MutSection {
	return MutSection{Section{doc: doc}}
}

func (doc *Document) Write(key string, value any) error {
	return doc.Edit().Write(key, value)
}

func (doc *Document) ReadInto(key string, dst any) error {
	return doc.View().ReadInto(key, dst)
}

func (doc *Document) Delete(key string) (bool, error) {
	return doc.Edit().Delete(key)
}

func (doc *Document) GetSection(key string) (Section, error) {
	return doc.View().GetSection(key)
}

func (doc *Document) GetMutSection(key string) (MutSection, error) {
	return doc.Edit().GetMutSection(key)
}

func (doc *Document) EnsureSection(key string) (MutSection, error) {
	return doc.Edit().EnsureSection(key)
}

func (doc *Document) Has(key string) bool {
	return doc.root.Has(key)
}

func (doc *Document) Keys() []string {
	return doc.root.Keys()
}

func (doc *Document) Len() int {
	return doc.root.Len()
}

// CloneData returns a deep copy of the tree, same as Snapshot.
func (doc *Document) CloneData() *Object {
	return doc.root.Clone()
}

// CopyFrom clears the root object and re-inserts the members of obj in
// order. Unlike ReplaceAll, the root object itself is kept.
func (doc *Document) CopyFrom(obj *Object) error {
	return doc.Edit().CopyFrom(obj)
}

func (doc *Document) Dump() string {
	return doc.View().Dump()
}
