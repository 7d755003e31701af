package jsondoc

import (
	"errors"
	"reflect"
	"testing"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func ensure(err error) {
	if err != nil {
		panic(err)
	}
}

func eq[T comparable](t testing.TB, a, e T) {
	if a != e {
		t.Helper()
		t.Errorf("** got %v, wanted %v", a, e)
	}
}

func deepEqual[T any](t testing.TB, a, e T) {
	if !reflect.DeepEqual(a, e) {
		t.Helper()
		t.Errorf("** got %v, wanted %v", a, e)
	}
}

func isErr(t testing.TB, err, target error) {
	if !errors.Is(err, target) {
		t.Helper()
		t.Errorf("** got error %v, wanted %v", err, target)
	}
}

func isKind(t testing.TB, err error, kind ErrorKind) {
	t.Helper()
	if err == nil {
		t.Errorf("** got nil error, wanted %v error", kind)
		return
	}
	k, ok := KindOf(err)
	if !ok || k != kind {
		t.Errorf("** got error %v (kind %v), wanted %v error", err, k, kind)
	}
}

func obj(kvs ...any) *Object {
	o := NewObject()
	for i := 0; i < len(kvs); i += 2 {
		o.Set(kvs[i].(string), kvs[i+1])
	}
	return o
}
