package jsondoc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ToValue converts an arbitrary Go value into a tree value. Tree values are
// copied (and normalized, so an *Object holding plain Go ints comes back
// holding json.Numbers); everything else is marshaled with encoding/json and
// parsed back, which keeps struct field order.
func ToValue(v any) (any, error) {
	tv, err := toTree(v)
	if err != nil {
		return nil, codecErrf("serialize", "", err, "")
	}
	return tv, nil
}

// FromValue converts a tree value into T. Targets of type any, *Object and
// Object receive a deep copy of the tree; other types are unmarshaled with
// encoding/json.
func FromValue[T any](v any) (T, error) {
	var out T
	if err := fromTree(v, &out); err != nil {
		return out, codecErrf("deserialize", "", err, "")
	}
	return out, nil
}

func toTree(v any) (any, error) {
	switch v := v.(type) {
	case nil, bool, string:
		return v, nil
	case json.Number:
		if !json.Valid([]byte(v)) {
			return nil, fmt.Errorf("invalid number literal %q", string(v))
		}
		return v, nil
	case *Object:
		if v == nil {
			return nil, nil
		}
		obj := &Object{
			members: make([]member, 0, len(v.members)),
			index:   make(map[string]int, len(v.members)),
		}
		for _, m := range v.members {
			tv, err := toTree(m.value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", m.key, err)
			}
			obj.Set(m.key, tv)
		}
		return obj, nil
	case Object:
		return toTree(&v)
	case []any:
		if v == nil {
			return nil, nil
		}
		arr := make([]any, len(v))
		for i, e := range v {
			tv, err := toTree(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = tv
		}
		return arr, nil
	case json.RawMessage:
		return parseValue(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return parseValue(raw)
	}
}

func fromTree(v any, dst any) error {
	switch dst := dst.(type) {
	case *any:
		*dst = CloneValue(v)
		return nil
	case **Object:
		if v == nil {
			*dst = nil
			return nil
		}
		obj, ok := v.(*Object)
		if !ok {
			return fmt.Errorf("%w (got %v)", ErrNotObject, Kind(v))
		}
		*dst = obj.Clone()
		return nil
	case *Object:
		obj, ok := v.(*Object)
		if !ok || obj == nil {
			return fmt.Errorf("%w (got %v)", ErrNotObject, Kind(v))
		}
		*dst = *obj.Clone()
		return nil
	}

	var buf bytes.Buffer
	if err := writeTree(&buf, v); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), dst)
}
