// Package modcache is a SQLite-backed cache of compiled module artifacts,
// keyed by the unique_name a wrapped fn/let/try/native_raw form was given
// (spec.md §4.5 step 5). Compiling a wrapped function whose unique_name is
// already stored skips code generation and JIT registration on that cache
// hit. Each wrap in internal/evaluate draws a fresh unique_name from
// rt.Context.UniqueString, so evaluating the same form again produces a new
// key and a miss; hits occur only when the same *ast.Function is compiled
// again.
//
// Grounded on the teacher's lib/sql surface (SqlDB/SqlTx declared in
// internal/modules/virtual_packages_other.go) — that package only ever
// declared the type-system shape of a SQL handle and never backed it with
// a real driver. This is the first concrete consumer of that shape, using
// the pure-Go modernc.org/sqlite driver the teacher's go.mod already pulls
// in for it.
package modcache

import (
	"bytes"
	"database/sql"
	"encoding/gob"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/driftlang/drift/internal/bytecode"
	"github.com/driftlang/drift/internal/codegen"
	"github.com/driftlang/drift/internal/object"
)

func init() {
	gob.Register(&object.Nil{})
	gob.Register(&object.Bool{})
	gob.Register(&object.Int{})
	gob.Register(&object.Real{})
	gob.Register(&object.String{})
	gob.Register(&object.Symbol{})
	gob.Register(&object.Keyword{})
	gob.Register(&object.Vector{})
	gob.Register(&object.List{})
	gob.Register(&object.ArrayMap{})
	gob.Register(&object.HashMap{})
	gob.Register(&object.HashSet{})
	gob.Register(&codegen.Proto{})
}

const schema = `
CREATE TABLE IF NOT EXISTS modules (
	unique_name TEXT PRIMARY KEY,
	payload     BLOB NOT NULL
);
`

// Store is a sql.DB-backed bytecode.Chunk cache. It satisfies the
// internal/jit.Cache interface (Get/Put over unique_name) so an
// internal/jit.Engine can be handed a Store directly.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite-backed store at path. Pass
// ":memory:" for a process-local, non-persistent cache.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("modcache: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("modcache: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get implements internal/jit.Cache. A decode failure (e.g. a schema
// change between versions) is treated as a miss rather than an error, so a
// stale cache never blocks compilation.
func (s *Store) Get(uniqueName string) (*bytecode.Chunk, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM modules WHERE unique_name = ?`, uniqueName).Scan(&payload)
	if err != nil {
		return nil, false
	}
	chunk, err := decodeChunk(payload)
	if err != nil {
		return nil, false
	}
	return chunk, true
}

// Put implements internal/jit.Cache, storing (or replacing) the compiled
// chunk for uniqueName.
func (s *Store) Put(uniqueName string, chunk *bytecode.Chunk) error {
	payload, err := encodeChunk(chunk)
	if err != nil {
		return fmt.Errorf("modcache: encode %s: %w", uniqueName, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		`INSERT INTO modules (unique_name, payload) VALUES (?, ?)
		 ON CONFLICT(unique_name) DO UPDATE SET payload = excluded.payload`,
		uniqueName, payload,
	)
	if err != nil {
		return fmt.Errorf("modcache: put %s: %w", uniqueName, err)
	}
	return nil
}

func encodeChunk(chunk *bytecode.Chunk) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(chunk); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeChunk(payload []byte) (*bytecode.Chunk, error) {
	var chunk bytecode.Chunk
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&chunk); err != nil {
		return nil, err
	}
	return &chunk, nil
}
