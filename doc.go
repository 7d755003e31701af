/*
Package jsondoc provides typed access to a JSON document kept in a single
file, such as an application's config file.

A Document is opened (or created) once, read and modified in memory, and
written back with Save, which replaces the entire file with the current tree:

	doc, err := jsondoc.OpenUnderHome(".myapp", "config.json", jsondoc.Options{})
	...
	count, err := jsondoc.ReadOrInsert(doc, "launches", 0)
	...
	_, err = jsondoc.Update(doc, "launches", func(n int) int { return n + 1 })
	...
	_, err = doc.Save()

# Tree

The in-memory tree uses nil, bool, json.Number, string, []any and *Object.
Object preserves key insertion order, so a load/modify/save cycle keeps the
file's layout: overwriting a key keeps its position, new keys go last.

Typed values cross into the tree through encoding/json (see ToValue and
FromValue), so struct tags and custom marshalers work as usual.

# Sections

GetSection and GetMutSection return views of nested objects. A view is not a
copy: it is the key path from the root, resolved again on each call, so
writes through a MutSection are immediately visible through the Document and
every other view, and vice versa.

A Document and its sections are meant for a single goroutine. Nothing
coordinates concurrent writers, in this process or across processes; the
last Save wins.

# Storage

Open keeps the document in a JSON file. OpenBolt keeps it as a single value
inside a Bolt database, encoded as msgpack (or JSON, see Options.Encoding).
Open(InMemory, ...) keeps it in memory only, which is handy in tests.
*/
package jsondoc
