/*
Package sqlitedbm implements a persistent string-to-string dictionary on top
of a single SQLite table.

A Map behaves like an in-memory map whose contents survive restarts:

	m, err := sqlitedbm.Open("cache.db", sqlitedbm.Options{Flag: sqlitedbm.FlagCreate})
	...
	err = m.Set("a", "1")
	v, err := m.Get("a")

On top of single-key access, Map offers bulk operations that avoid one
round-trip per key:

1. GetMany and Select look up an arbitrary number of keys, returning values
in the order the keys were given.

2. Update stores any number of pairs in one transaction.

A Container holds several named maps in one file, and package shelf layers
typed, serialized values over a Map.

# Technical Details

**Table layout.**
Each map is a table with two columns, key TEXT PRIMARY KEY and val TEXT.
Values written with BlobValues enabled are stored as BLOBs in the same column.

**Chunked lookups.**
SQLite limits the number of parameters in a statement, so bulk lookups are
split into chunks of at most MaxQueryVars keys. Each chunk is one
SELECT ... WHERE key IN (...) query. Rows come back in arbitrary order and are
matched to the requested keys through a hash map, so duplicates and missing
keys cost nothing extra. The statement for a full chunk is prepared once per
connection and cached; the final partial chunk uses a transient statement.

**Open flags.**
FlagRead and FlagWrite require the file to exist. FlagCreate creates it with
Options.Mode (subject to umask), and FlagNew additionally empties the map.
The special path MemoryPath opens a private in-memory database.

**Concurrency.**
A Map owns one connection and is not safe for concurrent use. Several Maps
may be opened on the same file; SQLite serializes their writes, and
Options.BusyTimeout controls how long a writer waits for a lock.
*/
package sqlitedbm
