package jsondoc

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrKeyNotFound is returned when a key is absent from the addressed object.
	ErrKeyNotFound = errors.New("key not found")

	// ErrNotObject is returned when a section is requested for a key whose
	// value is not a JSON object.
	ErrNotObject = errors.New("value is not a JSON object")

	// ErrNotObjectRoot is returned when a loaded document is valid JSON, but
	// its top-level value is not an object.
	ErrNotObjectRoot = errors.New("document root is not a JSON object")

	// ErrNoHomeDir is returned by OpenUnderHome when the OS does not report
	// a home directory.
	ErrNoHomeDir = errors.New("no valid home directory could be retrieved from OS")

	// ErrClosed is returned when saving a closed document.
	ErrClosed = errors.New("document is closed")
)

type ErrorKind int

const (
	KindIOError ErrorKind = iota + 1
	KindCodecError
	KindConfigError
)

func (k ErrorKind) String() string {
	switch k {
	case KindIOError:
		return "io"
	case KindCodecError:
		return "codec"
	case KindConfigError:
		return "config"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error describes a failed operation. Path is either a file path (for
// storage operations) or a dotted key path (for tree operations).
type Error struct {
	Kind ErrorKind
	Op   string
	Path string
	Err  error
}

func ioErrf(op, path string, err error) error {
	return &Error{KindIOError, op, path, err}
}

func codecErrf(op, path string, err error, format string, args ...any) error {
	if format != "" {
		err = fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
	}
	return &Error{KindCodecError, op, path, err}
}

func configErrf(op, path string, err error) error {
	return &Error{KindConfigError, op, path, err}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	var buf strings.Builder
	buf.WriteString("jsondoc: ")
	buf.WriteString(e.Op)
	if e.Path != "" {
		buf.WriteByte(' ')
		buf.WriteString(e.Path)
	}
	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}

// KindOf returns the kind of the first *Error found in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func joinPath(path []string, key string) string {
	if len(path) == 0 {
		return key
	}
	n := len(key)
	for _, p := range path {
		n += len(p) + 1
	}
	var buf strings.Builder
	buf.Grow(n)
	for _, p := range path {
		buf.WriteString(p)
		buf.WriteByte('.')
	}
	buf.WriteString(key)
	return buf.String()
}
