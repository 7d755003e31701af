package jsondoc

import (
	"encoding/json"
	"iter"
)

// ValueKind classifies the Go values that make up a document tree.
type ValueKind int

const (
	KindUnknown ValueKind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Kind returns the kind of a tree value. Tree values are nil, bool,
// json.Number, string, []any and *Object; anything else is KindUnknown.
func Kind(v any) ValueKind {
	switch v := v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case json.Number:
		return KindNumber
	case string:
		return KindString
	case []any:
		return KindArray
	case *Object:
		if v == nil {
			return KindNull
		}
		return KindObject
	default:
		return KindUnknown
	}
}

// Object is a JSON object that remembers the order in which its keys were
// first inserted. Keys are unique. The zero value is an empty object.
type Object struct {
	members []member
	index   map[string]int
}

type member struct {
	key   string
	value any
}

func NewObject() *Object {
	return &Object{}
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.members)
}

func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.members))
	for i, m := range o.members {
		keys[i] = m.key
	}
	return keys
}

// All iterates over members in insertion order.
func (o *Object) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if o == nil {
			return
		}
		for _, m := range o.members {
			if !yield(m.key, m.value) {
				return
			}
		}
	}
}

func (o *Object) Has(key string) bool {
	_, found := o.lookup(key)
	return found
}

// Get returns the stored value without copying it.
func (o *Object) Get(key string) (any, bool) {
	i, found := o.lookup(key)
	if !found {
		return nil, false
	}
	return o.members[i].value, true
}

// Set appends key if it is absent and overwrites its value in place
// otherwise. Reports whether the key was inserted.
func (o *Object) Set(key string, value any) bool {
	if i, found := o.lookup(key); found {
		o.members[i].value = value
		return false
	}
	if o.index == nil {
		o.index = make(map[string]int)
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, member{key, value})
	return true
}

// Delete removes key, keeping the order of the remaining members.
func (o *Object) Delete(key string) bool {
	i, found := o.lookup(key)
	if !found {
		return false
	}
	delete(o.index, key)
	copy(o.members[i:], o.members[i+1:])
	o.members[len(o.members)-1] = member{}
	o.members = o.members[:len(o.members)-1]
	for j := i; j < len(o.members); j++ {
		o.index[o.members[j].key] = j
	}
	return true
}

func (o *Object) Clear() {
	clear(o.members)
	o.members = o.members[:0]
	clear(o.index)
}

func (o *Object) lookup(key string) (int, bool) {
	if o == nil || o.index == nil {
		return 0, false
	}
	i, found := o.index[key]
	return i, found
}

// Clone returns a deep copy that shares nothing with o.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	c := &Object{
		members: make([]member, len(o.members)),
		index:   make(map[string]int, len(o.members)),
	}
	for i, m := range o.members {
		c.members[i] = member{m.key, CloneValue(m.value)}
		c.index[m.key] = i
	}
	return c
}

// Equal compares two objects deeply, including member order.
func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	for i := range o.Len() {
		a, b := o.members[i], other.members[i]
		if a.key != b.key || !EqualValues(a.value, b.value) {
			return false
		}
	}
	return true
}

// CloneValue deep-copies a tree value. Scalars are returned as is.
func CloneValue(v any) any {
	switch v := v.(type) {
	case *Object:
		return v.Clone()
	case []any:
		if v == nil {
			return []any(nil)
		}
		c := make([]any, len(v))
		for i, e := range v {
			c[i] = CloneValue(e)
		}
		return c
	default:
		return v
	}
}

// EqualValues compares two tree values deeply. Numbers compare by their
// literal text.
func EqualValues(a, b any) bool {
	switch a := a.(type) {
	case *Object:
		b, ok := b.(*Object)
		return ok && a.Equal(b)
	case []any:
		b, ok := b.([]any)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !EqualValues(a[i], b[i]) {
				return false
			}
		}
		return true
	default:
		return Kind(a) != KindUnknown && a == b
	}
}
