package jsondoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const DefaultIndent = "  "

// ParseObject parses data as a JSON document whose top-level value must be
// an object. Member order is preserved; a repeated key keeps its first
// position and takes the last value.
func ParseObject(data []byte) (*Object, error) {
	v, err := parseValue(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, fmt.Errorf("%w (got %v)", ErrNotObjectRoot, Kind(v))
	}
	return obj, nil
}

func parseValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeTree(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("invalid character after top-level value")
		}
		return nil, err
	}
	return v, nil
}

func decodeTree(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	switch tok := tok.(type) {
	case json.Delim:
		switch tok {
		case '{':
			obj := NewObject()
			for dec.More() {
				ktok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := ktok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, wanted string", ktok)
				}
				v, err := decodeTree(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := []any{}
			for dec.More() {
				v, err := decodeTree(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", tok)
		}
	case nil, bool, json.Number, string:
		return tok, nil
	default:
		return nil, fmt.Errorf("unexpected token %T", tok)
	}
}

// MarshalJSON encodes o with members in insertion order. Members are
// normalized the same way Write normalizes values, so plain Go numbers and
// structs stored with Set are accepted.
func (o Object) MarshalJSON() ([]byte, error) {
	tv, err := toTree(&o)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := writeTree(&buf, tv); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the contents of o with the given JSON object.
func (o *Object) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	parsed, err := ParseObject(data)
	if err != nil {
		return err
	}
	*o = *parsed
	return nil
}

// Render encodes obj as indented JSON without a trailing newline. An empty
// indent selects DefaultIndent.
func Render(obj *Object, indent string) ([]byte, error) {
	if indent == "" {
		indent = DefaultIndent
	}
	if obj == nil {
		obj = NewObject()
	}
	var compact bytes.Buffer
	if err := writeTree(&compact, obj); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	out.Grow(compact.Len() * 2)
	if err := json.Indent(&out, compact.Bytes(), "", indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func writeTree(buf *bytes.Buffer, v any) error {
	switch v := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case json.Number:
		if v == "" {
			buf.WriteByte('0')
		} else if !json.Valid([]byte(v)) {
			return fmt.Errorf("invalid number literal %q", string(v))
		} else {
			buf.WriteString(string(v))
		}
	case string:
		return writeLeaf(buf, v)
	case []any:
		buf.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeTree(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *Object:
		if v == nil {
			buf.WriteString("null")
			return nil
		}
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeLeaf(buf, m.key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeTree(buf, m.value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("%T is not a tree value", v)
	}
	return nil
}

// writeLeaf encodes a string the way encoding/json does, minus HTML escaping.
func writeLeaf(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1) // Encode appends '\n'
	return nil
}
