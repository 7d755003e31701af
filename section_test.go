package jsondoc

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"
)

func memDoc(t testing.TB) *Document {
	t.Helper()
	doc := must(Open(InMemory, t.Name(), Options{}))
	t.Cleanup(func() { doc.Close() })
	return doc
}

func TestWrite_InsertVsOverwrite(t *testing.T) {
	doc := memDoc(t)
	ensure(doc.Write("a", 1))
	ensure(doc.Write("b", "first"))
	ensure(doc.Write("c", true))
	eq(t, must(Read[string](doc, "b")), "first")

	ensure(doc.Write("b", "second"))
	eq(t, must(Read[string](doc, "b")), "second")
	deepEqual(t, doc.Keys(), []string{"a", "b", "c"})

	ensure(doc.Write("b", []int{1}))
	deepEqual(t, must(Read[[]int](doc, "b")), []int{1})
	deepEqual(t, doc.Keys(), []string{"a", "b", "c"})

	ensure(doc.Write("d", nil))
	deepEqual(t, doc.Keys(), []string{"a", "b", "c", "d"})
	eq(t, doc.Has("d"), true)
}

func TestWrite_SerializeErrorLeavesTreeAlone(t *testing.T) {
	doc := memDoc(t)
	ensure(doc.Write("a", 1))
	err := doc.Write("a", make(chan int))
	isKind(t, err, KindCodecError)
	eq(t, must(Read[int](doc, "a")), 1)

	err = doc.Write("b", func() {})
	isKind(t, err, KindCodecError)
	eq(t, doc.Has("b"), false)
}

func TestRead_Errors(t *testing.T) {
	doc := memDoc(t)
	ensure(doc.Write("s", "text"))

	_, err := Read[int](doc, "nope")
	isErr(t, err, ErrKeyNotFound)
	isKind(t, err, KindConfigError)
	eq(t, err.Error(), "jsondoc: read nope: key not found")

	_, err = Read[int](doc, "s")
	isKind(t, err, KindCodecError)

	var n int
	err = doc.ReadInto("s", &n)
	isKind(t, err, KindCodecError)
	err = doc.ReadInto("s", nil)
	isKind(t, err, KindCodecError)

	var s string
	ensure(doc.ReadInto("s", &s))
	eq(t, s, "text")
}

func TestRead_ReturnsCopies(t *testing.T) {
	doc := memDoc(t)
	ensure(doc.Write("server", serverConfig{Port: 1, Host: "h"}))

	got := must(Read[*Object](doc, "server"))
	got.Set("port", json.Number("2"))
	eq(t, must(Read[int](must(doc.GetSection("server")), "port")), 1)

	anyV := must(Read[any](doc, "server"))
	anyV.(*Object).Set("host", "changed")
	eq(t, must(Read[string](must(doc.GetSection("server")), "host")), "h")
}

func TestGetSection_Errors(t *testing.T) {
	doc := memDoc(t)
	ensure(doc.Write("scalar", 42))
	ensure(doc.Write("list", []int{1}))
	ensure(doc.Write("null", nil))

	_, err := doc.GetSection("missing")
	isErr(t, err, ErrKeyNotFound)
	_, err = doc.GetMutSection("missing")
	isErr(t, err, ErrKeyNotFound)
	isKind(t, err, KindConfigError)

	for _, key := range []string{"scalar", "list", "null"} {
		_, err = doc.GetSection(key)
		isErr(t, err, ErrNotObject)
		_, err = doc.GetMutSection(key)
		isErr(t, err, ErrNotObject)
		isKind(t, err, KindConfigError)
	}
}

func TestReadOrInsert(t *testing.T) {
	doc := memDoc(t)
	ensure(doc.Write("first", "x"))

	eq(t, must(ReadOrInsert(doc, "count", 5)), 5)
	eq(t, must(ReadOrInsert(doc, "count", 7)), 5)
	eq(t, must(Read[int](doc, "count")), 5)
	deepEqual(t, doc.Keys(), []string{"first", "count"})

	// existing value of the wrong type
	_, err := ReadOrInsert(doc, "first", 3)
	isKind(t, err, KindCodecError)
	eq(t, must(Read[string](doc, "first")), "x")

	_, err = ReadOrInsert(doc, "bad", make(chan int))
	isKind(t, err, KindCodecError)
	eq(t, doc.Has("bad"), false)

	srv := must(doc.EnsureSection("server"))
	deepEqual(t, must(ReadOrInsert(srv, "server", serverConfig{Port: 1})), serverConfig{Port: 1})
	deepEqual(t, must(ReadOrInsert(srv, "server", serverConfig{Port: 2})), serverConfig{Port: 1})
}

func TestUpdate_DistinctTypes(t *testing.T) {
	doc := memDoc(t)
	ensure(doc.Write("count", 41))
	ensure(doc.Write("after", true))

	out := must(Update(doc, "count", func(n int) string {
		return strconv.Itoa(n + 1)
	}))
	eq(t, out, "42")
	eq(t, must(Read[string](doc, "count")), "42")
	_, err := Read[int](doc, "count")
	isKind(t, err, KindCodecError)
	deepEqual(t, doc.Keys(), []string{"count", "after"})

	ensure(doc.Write("server", serverConfig{Port: 8080, Host: "h"}))
	port := must(Update(doc, "server", func(s serverConfig) int {
		return s.Port
	}))
	eq(t, port, 8080)
	eq(t, must(Read[int](doc, "server")), 8080)

	// same type both ways
	eq(t, must(Update(doc, "server", func(n int64) int64 { return n * 2 })), int64(16160))
}

func TestUpdate_Errors(t *testing.T) {
	doc := memDoc(t)
	ensure(doc.Write("s", "text"))

	called := false
	_, err := Update(doc, "missing", func(n int) int { called = true; return n })
	isErr(t, err, ErrKeyNotFound)
	eq(t, called, false)

	_, err = Update(doc, "s", func(n int) int { called = true; return n })
	isKind(t, err, KindCodecError)
	eq(t, called, false)
	eq(t, must(Read[string](doc, "s")), "text")

	_, err = Update(doc, "s", func(s string) chan int { called = true; return make(chan int) })
	isKind(t, err, KindCodecError)
	eq(t, called, true)
	eq(t, must(Read[string](doc, "s")), "text")
}

func TestSection_Aliasing(t *testing.T) {
	doc := memDoc(t)
	ensure(doc.Write("server", serverConfig{Port: 80, Host: "h"}))

	srv := must(doc.GetMutSection("server"))
	ro := must(doc.GetSection("server"))

	ensure(srv.Write("port", 8080))
	eq(t, must(Read[int](ro, "port")), 8080)
	deepEqual(t, must(Read[serverConfig](doc, "server")), serverConfig{Port: 8080, Host: "h"})

	// and the other way round
	ensure(doc.Write("server", obj("port", 1)))
	eq(t, must(Read[int](srv, "port")), 1)
	eq(t, srv.Has("host"), false)

	tls := must(srv.EnsureSection("tls"))
	ensure(tls.Write("cert", "c.pem"))
	eq(t, tls.Path(), "server.tls")
	eq(t, must(Read[string](must(must(doc.GetSection("server")).GetSection("tls")), "cert")), "c.pem")

	_, err := doc.Save()
	ensure(err)
	eq(t, string(doc.stg.(*memStorage).Bytes()), "{\n  \"server\": {\n    \"port\": 1,\n    \"tls\": {\n      \"cert\": \"c.pem\"\n    }\n  }\n}")
}

func TestSection_DetachedRegions(t *testing.T) {
	doc := memDoc(t)
	must(doc.EnsureSection("a"))
	b := must(must(doc.GetMutSection("a")).EnsureSection("b"))
	ensure(b.Write("x", 1))

	ensure(doc.Write("a", 5))
	err := b.Write("y", 2)
	isErr(t, err, ErrNotObject)
	eq(t, err.Error(), "jsondoc: write a: value is not a JSON object (got number)")
	_, err = Read[int](b, "x")
	isErr(t, err, ErrNotObject)

	must(doc.Delete("a"))
	_, err = Read[int](b, "x")
	isErr(t, err, ErrKeyNotFound)
	eq(t, b.Has("x"), false)
	eq(t, b.Len(), 0)
	if b.Keys() != nil {
		t.Fatalf("Keys() on detached section = %v, wanted nil", b.Keys())
	}
	if !strings.Contains(b.Dump(), "ERROR") {
		t.Fatalf("Dump() on detached section = %q, wanted an error", b.Dump())
	}
	_, err = b.CloneData()
	isErr(t, err, ErrKeyNotFound)

	// recreating the path revives the section
	ensure(doc.Write("a", obj("b", obj("x", 3))))
	eq(t, must(Read[int](b, "x")), 3)

	doc.ReplaceAll(obj("a", obj("b", obj("x", 4))))
	eq(t, must(Read[int](b, "x")), 4)
}

func TestSection_CopyFrom(t *testing.T) {
	doc := memDoc(t)
	ensure(doc.Write("before", 0))
	ensure(doc.Write("s", obj("old", 1, "keep", 2)))
	ensure(doc.Write("after", 0))
	s := must(doc.GetMutSection("s"))

	src := obj("z", 1, "keep", "new", "a", obj("n", 1))
	ensure(s.CopyFrom(src))
	deepEqual(t, s.Keys(), []string{"z", "keep", "a"})
	deepEqual(t, doc.Keys(), []string{"before", "s", "after"})
	eq(t, must(Read[string](must(doc.GetSection("s")), "keep")), "new")

	// the section owns a copy
	src.Set("z", 100)
	eq(t, must(Read[int](s, "z")), 1)

	ensure(s.CopyFrom(nil))
	eq(t, s.Len(), 0)
	eq(t, doc.Has("s"), true)

	err := s.CopyFrom(obj("bad", make(chan int)))
	isKind(t, err, KindCodecError)
	eq(t, s.Len(), 0)
}

func TestDocument_CopyFromKeepsRoot(t *testing.T) {
	doc := memDoc(t)
	ensure(doc.Write("a", 1))
	root := doc.root
	ensure(doc.CopyFrom(obj("b", 2)))
	if doc.root != root {
		t.Fatalf("CopyFrom replaced the root object")
	}
	deepEqual(t, doc.Keys(), []string{"b"})
}

func TestSection_CloneData(t *testing.T) {
	doc := memDoc(t)
	ensure(doc.Write("s", obj("k", "v")))
	s := must(doc.GetSection("s"))
	c := must(s.CloneData())
	c.Set("k", "changed")
	eq(t, must(Read[string](s, "k")), "v")

	d := doc.CloneData()
	d.Delete("s")
	eq(t, doc.Has("s"), true)
}

func TestSection_Delete(t *testing.T) {
	doc := memDoc(t)
	s := must(doc.EnsureSection("s"))
	ensure(s.Write("a", 1))
	ensure(s.Write("b", 2))
	ensure(s.Write("c", 3))
	eq(t, must(s.Delete("b")), true)
	eq(t, must(s.Delete("b")), false)
	deepEqual(t, s.Keys(), []string{"a", "c"})
	ensure(s.Write("b", 4))
	deepEqual(t, s.Keys(), []string{"a", "c", "b"})
}

func TestEnsureSection(t *testing.T) {
	doc := memDoc(t)
	ensure(doc.Write("x", 1))
	s := must(doc.EnsureSection("s"))
	deepEqual(t, doc.Keys(), []string{"x", "s"})
	ensure(s.Write("k", "v"))

	again := must(doc.EnsureSection("s"))
	eq(t, must(Read[string](again, "k")), "v")

	_, err := doc.EnsureSection("x")
	isErr(t, err, ErrNotObject)
	isKind(t, err, KindConfigError)
}

func TestSection_PathsInErrors(t *testing.T) {
	doc := memDoc(t)
	a := must(doc.EnsureSection("a"))
	b := must(a.EnsureSection("b"))
	eq(t, b.Path(), "a.b")
	eq(t, doc.View().Path(), "")
	if b.Document() != doc {
		t.Fatalf("Document() returned a different document")
	}

	_, err := Read[int](b, "c")
	eq(t, err.Error(), "jsondoc: read a.b.c: key not found")

	ro := b.View()
	_, err = ro.GetSection("c")
	eq(t, err.Error(), "jsondoc: section a.b.c: key not found")
}

func TestSection_DumpAndLen(t *testing.T) {
	doc := memDoc(t)
	s := must(doc.EnsureSection("s"))
	ensure(s.Write("k", "v"))
	eq(t, s.Len(), 1)
	eq(t, s.Dump(), "{\n  \"k\": \"v\"\n}")
	eq(t, doc.Dump(), "{\n  \"s\": {\n    \"k\": \"v\"\n  }\n}")
}

func TestReadWrite_ObjectFieldsSurviveRoundTrip(t *testing.T) {
	type withExtra struct {
		Name  string   `json:"name"`
		Extra Object   `json:"extra"`
		More  []Object `json:"more"`
	}
	doc := memDoc(t)
	ensure(doc.CopyFrom(must(ParseObject([]byte(`{"w": {"name": "n", "extra": {"k": 1, "j": [true]}, "more": [{"m": "v"}]}}`)))))

	w := must(Read[withExtra](doc, "w"))
	deepEqual(t, w.Extra.Keys(), []string{"k", "j"})
	ensure(doc.Write("w", w))

	eq(t, doc.Dump(), "{\n  \"w\": {\n    \"name\": \"n\",\n    \"extra\": {\n      \"k\": 1,\n      \"j\": [\n        true\n      ]\n    },\n    \"more\": [\n      {\n        \"m\": \"v\"\n      }\n    ]\n  }\n}")
}

func TestWrite_ObjectsBuiltWithGoValues(t *testing.T) {
	type holder struct {
		O    *Object  `json:"o"`
		List []Object `json:"list"`
	}
	doc := memDoc(t)
	ensure(doc.Write("direct", obj("a", 1)))
	ensure(doc.Write("h", holder{O: obj("a", 1), List: []Object{*obj("b", 2.5)}}))

	eq(t, must(Read[int](must(doc.GetSection("direct")), "a")), 1)
	h := must(doc.GetSection("h"))
	eq(t, must(Read[int](must(h.GetSection("o")), "a")), 1)
	list := must(Read[[]map[string]float64](h, "list"))
	eq(t, list[0]["b"], 2.5)
}

func TestSection_ZeroValue(t *testing.T) {
	doc := memDoc(t)
	s, err := doc.GetSection("missing")
	isErr(t, err, ErrKeyNotFound)

	eq(t, s.Has("x"), false)
	eq(t, s.Len(), 0)
	if s.Keys() != nil {
		t.Fatalf("Keys() = %v, wanted nil", s.Keys())
	}
	_, err = Read[int](s, "x")
	isErr(t, err, ErrKeyNotFound)
	_, err = s.CloneData()
	isErr(t, err, ErrKeyNotFound)
	if !strings.HasPrefix(s.Dump(), "** ERROR:") {
		t.Fatalf("Dump() = %q, wanted error marker", s.Dump())
	}

	var m MutSection
	isErr(t, m.Write("x", 1), ErrKeyNotFound)
	_, err = m.EnsureSection("x")
	isErr(t, err, ErrKeyNotFound)
	_, err = Update(m, "x", func(v int) int { return v })
	isErr(t, err, ErrKeyNotFound)
}
