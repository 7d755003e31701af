package jsondoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// EncodingMethod selects how a storage backend that isn't a plain JSON file
// lays out the tree.
type EncodingMethod int

const (
	MsgPack EncodingMethod = iota
	JSON
)

// numberLiteralExt tags a msgpack ext value carrying the text of a number
// that doesn't fit int64, uint64 or float64 (integers wider than 64 bits
// included).
const numberLiteralExt int8 = 1

func (enc EncodingMethod) String() string {
	switch enc {
	case MsgPack:
		return "msgpack"
	case JSON:
		return "json"
	default:
		return fmt.Sprintf("EncodingMethod(%d)", int(enc))
	}
}

func (enc EncodingMethod) EncodeTree(root *Object) ([]byte, error) {
	switch enc {
	case MsgPack:
		var buf bytes.Buffer
		e := msgpack.GetEncoder()
		e.Reset(&buf)
		err := encodeMsgpackTree(e, root)
		msgpack.PutEncoder(e)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tree using MsgPack: %w", err)
		}
		return buf.Bytes(), nil
	case JSON:
		var buf bytes.Buffer
		if err := writeTree(&buf, root); err != nil {
			return nil, fmt.Errorf("failed to encode tree to JSON: %w", err)
		}
		return buf.Bytes(), nil
	default:
		panic("unsupported encoding")
	}
}

func (enc EncodingMethod) DecodeTree(data []byte) (*Object, error) {
	switch enc {
	case MsgPack:
		var r bytes.Reader
		r.Reset(data)
		d := msgpack.GetDecoder()
		d.Reset(&r)
		v, err := decodeMsgpackTree(d)
		msgpack.PutDecoder(d)
		if err != nil {
			return nil, fmt.Errorf("failed to decode msgpack tree: %w", err)
		}
		obj, ok := v.(*Object)
		if !ok {
			return nil, fmt.Errorf("%w (got %v)", ErrNotObjectRoot, Kind(v))
		}
		return obj, nil
	case JSON:
		return ParseObject(data)
	default:
		panic("unsupported encoding")
	}
}

func encodeMsgpackTree(e *msgpack.Encoder, v any) error {
	switch v := v.(type) {
	case nil:
		return e.EncodeNil()
	case bool:
		return e.EncodeBool(v)
	case string:
		return e.EncodeString(v)
	case json.Number:
		return encodeMsgpackNumber(e, v)
	case []any:
		if err := e.EncodeArrayLen(len(v)); err != nil {
			return err
		}
		for _, el := range v {
			if err := encodeMsgpackTree(e, el); err != nil {
				return err
			}
		}
		return nil
	case *Object:
		if v == nil {
			return e.EncodeNil()
		}
		if err := e.EncodeMapLen(len(v.members)); err != nil {
			return err
		}
		for _, m := range v.members {
			if err := e.EncodeString(m.key); err != nil {
				return err
			}
			if err := encodeMsgpackTree(e, m.value); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%T is not a tree value", v)
	}
}

func encodeMsgpackNumber(e *msgpack.Encoder, n json.Number) error {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return e.EncodeInt(i)
	}
	if u, err := strconv.ParseUint(string(n), 10, 64); err == nil {
		return e.EncodeUint(u)
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err == nil && strings.ContainsAny(string(n), ".eE") {
		return e.EncodeFloat64(f)
	}
	if (err != nil && !errors.Is(err, strconv.ErrRange)) || !json.Valid([]byte(n)) {
		return fmt.Errorf("invalid number literal %q", string(n))
	}
	return encodeMsgpackNumberLiteral(e, n)
}

func encodeMsgpackNumberLiteral(e *msgpack.Encoder, n json.Number) error {
	if err := e.EncodeExtHeader(numberLiteralExt, len(n)); err != nil {
		return err
	}
	_, err := io.WriteString(e.Writer(), string(n))
	return err
}

func decodeMsgpackNumberLiteral(d *msgpack.Decoder) (any, error) {
	id, n, err := d.DecodeExtHeader()
	if err != nil {
		return nil, err
	}
	if id != numberLiteralExt {
		return nil, fmt.Errorf("unsupported msgpack ext type %d", id)
	}
	buf := make([]byte, n)
	if err := d.ReadFull(buf); err != nil {
		return nil, err
	}
	if !json.Valid(buf) {
		return nil, fmt.Errorf("invalid number literal %q", buf)
	}
	return json.Number(buf), nil
}

func decodeMsgpackTree(d *msgpack.Decoder) (any, error) {
	c, err := d.PeekCode()
	if err != nil {
		return nil, err
	}
	switch {
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := d.DecodeMapLen()
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, nil
		}
		obj := &Object{
			members: make([]member, 0, n),
			index:   make(map[string]int, n),
		}
		for range n {
			key, err := d.DecodeString()
			if err != nil {
				return nil, err
			}
			v, err := decodeMsgpackTree(d)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		return obj, nil
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := d.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, nil
		}
		arr := make([]any, n)
		for i := range arr {
			if arr[i], err = decodeMsgpackTree(d); err != nil {
				return nil, err
			}
		}
		return arr, nil
	case msgpcode.IsExt(c):
		return decodeMsgpackNumberLiteral(d)
	}

	v, err := d.DecodeInterfaceLoose()
	if err != nil {
		return nil, err
	}
	switch v := v.(type) {
	case nil, bool, string:
		return v, nil
	case int64:
		return json.Number(strconv.FormatInt(v, 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(v, 10)), nil
	case float64:
		return json.Number(strconv.FormatFloat(v, 'g', -1, 64)), nil
	default:
		return nil, fmt.Errorf("unsupported msgpack value %T", v)
	}
}
