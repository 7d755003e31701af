package jsondoc

import (
	"fmt"
	"slices"
	"strings"
)

// Viewer is anything that can be read from: *Document, Section, MutSection.
type Viewer interface {
	View() Section
}

// Editor is anything that can be written to: *Document, MutSection.
type Editor interface {
	Viewer
	Edit() MutSection
}

// Section is a read-only view of an object nested inside a Document.
//
// A section is addressed by its key path from the document root and
// re-resolves that path on every call, so it always sees the current tree:
// writes made through the document or through any MutSection are visible
// immediately, and a section whose object has since been removed or replaced
// by a non-object reports ErrKeyNotFound or ErrNotObject rather than reading
// stale data.
//
// The zero Section (returned alongside an error) resolves nothing: its
// methods report ErrKeyNotFound. Sections must not outlive their Document,
// and only one goroutine may use a document and its sections at a time.
type Section struct {
	doc  *Document
	path []string
}

// MutSection is a read-write view of an object nested inside a Document.
// See Section for the aliasing rules.
type MutSection struct {
	Section
}

func (s Section) View() Section {
	return s
}

func (s Section) Document() *Document {
	return s.doc
}

// Path returns the dotted key path of the section; empty for the root.
func (s Section) Path() string {
	return strings.Join(s.path, ".")
}

func (s Section) keyPath(key string) string {
	return joinPath(s.path, key)
}

func (s Section) resolve(op string) (*Object, error) {
	if s.doc == nil {
		return nil, configErrf(op, s.Path(), ErrKeyNotFound)
	}
	obj := s.doc.root
	for i, key := range s.path {
		v, found := obj.Get(key)
		if !found {
			return nil, configErrf(op, joinPath(s.path[:i], key), ErrKeyNotFound)
		}
		child, ok := v.(*Object)
		if !ok || child == nil {
			return nil, configErrf(op, joinPath(s.path[:i], key), fmt.Errorf("%w (got %v)", ErrNotObject, Kind(v)))
		}
		obj = child
	}
	return obj, nil
}

func (s Section) lookup(op, key string) (any, *Object, error) {
	obj, err := s.resolve(op)
	if err != nil {
		return nil, nil, err
	}
	v, found := obj.Get(key)
	if !found {
		return nil, obj, configErrf(op, s.keyPath(key), ErrKeyNotFound)
	}
	return v, obj, nil
}

func (s Section) child(key string) Section {
	return Section{s.doc, append(slices.Clip(s.path), key)}
}

// ReadInto decodes the value stored at key into dst, which must be a
// non-nil pointer.
func (s Section) ReadInto(key string, dst any) error {
	v, _, err := s.lookup("read", key)
	if err != nil {
		return err
	}
	if err := fromTree(v, dst); err != nil {
		return codecErrf("read", s.keyPath(key), err, "cannot decode into %T", dst)
	}
	return nil
}

func (s Section) Has(key string) bool {
	obj, err := s.resolve("has")
	return err == nil && obj.Has(key)
}

// Keys returns the keys in insertion order, or nil if the section no longer
// resolves.
func (s Section) Keys() []string {
	obj, err := s.resolve("keys")
	if err != nil {
		return nil
	}
	return obj.Keys()
}

func (s Section) Len() int {
	obj, err := s.resolve("len")
	if err != nil {
		return 0
	}
	return obj.Len()
}

// GetSection returns a read-only view of the object stored at key.
func (s Section) GetSection(key string) (Section, error) {
	v, _, err := s.lookup("section", key)
	if err != nil {
		return Section{}, err
	}
	if obj, ok := v.(*Object); !ok || obj == nil {
		return Section{}, configErrf("section", s.keyPath(key), fmt.Errorf("%w (got %v)", ErrNotObject, Kind(v)))
	}
	return s.child(key), nil
}

// CloneData returns a deep copy of the section's object.
func (s Section) CloneData() (*Object, error) {
	obj, err := s.resolve("clone")
	if err != nil {
		return nil, err
	}
	return obj.Clone(), nil
}

// Dump renders the section as indented JSON, for debugging.
func (s Section) Dump() string {
	obj, err := s.resolve("dump")
	if err != nil {
		return fmt.Sprintf("** ERROR: %v", err)
	}
	raw, err := Render(obj, s.doc.indent)
	if err != nil {
		return fmt.Sprintf("** ERROR: %v", err)
	}
	return string(raw)
}

func (m MutSection) Edit() MutSection {
	return m
}

// Write stores value at key. A new key is appended after the existing ones;
// an existing key keeps its position and gets the new value.
func (m MutSection) Write(key string, value any) error {
	tv, err := toTree(value)
	if err != nil {
		return codecErrf("write", m.keyPath(key), err, "cannot encode %T", value)
	}
	obj, err := m.resolve("write")
	if err != nil {
		return err
	}
	obj.Set(key, tv)
	return nil
}

// Delete removes key, reporting whether it was present.
func (m MutSection) Delete(key string) (bool, error) {
	obj, err := m.resolve("delete")
	if err != nil {
		return false, err
	}
	return obj.Delete(key), nil
}

// GetMutSection returns a read-write view of the object stored at key.
func (m MutSection) GetMutSection(key string) (MutSection, error) {
	s, err := m.GetSection(key)
	if err != nil {
		return MutSection{}, err
	}
	return MutSection{s}, nil
}

// EnsureSection returns a read-write view of the object at key, inserting an
// empty object first if key is absent.
func (m MutSection) EnsureSection(key string) (MutSection, error) {
	obj, err := m.resolve("section")
	if err != nil {
		return MutSection{}, err
	}
	if v, found := obj.Get(key); !found {
		obj.Set(key, NewObject())
	} else if child, ok := v.(*Object); !ok || child == nil {
		return MutSection{}, configErrf("section", m.keyPath(key), fmt.Errorf("%w (got %v)", ErrNotObject, Kind(v)))
	}
	return MutSection{m.child(key)}, nil
}

// CopyFrom clears the section's object and inserts every member of src in
// src's order. The object stays in place inside its parent.
func (m MutSection) CopyFrom(src *Object) error {
	tv, err := toTree(src)
	if err != nil {
		return codecErrf("copy", m.Path(), err, "")
	}
	obj, err := m.resolve("copy")
	if err != nil {
		return err
	}
	obj.Clear()
	if tv == nil {
		return nil
	}
	for k, v := range tv.(*Object).All() {
		obj.Set(k, v)
	}
	return nil
}

// Read decodes the value stored at key into a T.
func Read[T any](v Viewer, key string) (T, error) {
	var out T
	err := v.View().ReadInto(key, &out)
	return out, err
}

// ReadOrInsert returns the value stored at key, or stores def there and
// returns it if key is absent. def is ignored when key is present.
func ReadOrInsert[T any](e Editor, key string, def T) (T, error) {
	m := e.Edit()
	obj, err := m.resolve("insert")
	if err != nil {
		return def, err
	}
	if v, found := obj.Get(key); found {
		var out T
		if err := fromTree(v, &out); err != nil {
			return out, codecErrf("insert", m.keyPath(key), err, "cannot decode into %T", &out)
		}
		return out, nil
	}
	tv, err := toTree(def)
	if err != nil {
		return def, codecErrf("insert", m.keyPath(key), err, "cannot encode %T", def)
	}
	obj.Set(key, tv)
	return def, nil
}

// Update decodes the value at key as V, replaces it with f's result and
// returns that result. V and Out may differ. The stored value is only
// replaced once f has returned and its result has been encoded.
func Update[V, Out any](e Editor, key string, f func(V) Out) (Out, error) {
	var zero Out
	m := e.Edit()
	v, obj, err := m.lookup("update", key)
	if err != nil {
		return zero, err
	}
	var in V
	if err := fromTree(v, &in); err != nil {
		return zero, codecErrf("update", m.keyPath(key), err, "cannot decode into %T", &in)
	}
	out := f(in)
	tv, err := toTree(out)
	if err != nil {
		return zero, codecErrf("update", m.keyPath(key), err, "cannot encode %T", out)
	}
	obj.Set(key, tv)
	return out, nil
}
