// Package objstore is the persistent, content-addressed cache of
// compiled module object files (Design Notes 9, "Serialised closures"):
// a module's objfile.Encode bytes, keyed by a hash of its source text,
// so a module whose source hasn't changed since the last run can be
// loaded straight from the cache instead of being rechecked. It is
// grounded on funxy's internal/ext/cache.go content-hash cache
// (sha256 of the config content plus target-specific fields), adapted
// from a filesystem cache directory to a modernc.org/sqlite table --
// the storage medium mcgru-funxy's internal/evaluator/builtins_sql.go
// exercises through database/sql -- since lambdaPi's cache entries are
// many small blobs rather than a handful of built binaries.
package objstore

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/funvibe/lambdapi/internal/objfile"
	"github.com/funvibe/lambdapi/internal/symtab"
)

// schemaVersion is bumped whenever objfile's wire format changes, so a
// store built by an older binary is ignored rather than misread.
const schemaVersion = "v1"

// Store is a sqlite-backed cache of compiled module tables.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a cache database at path. path
// may be ":memory:" for a process-local, non-persistent store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("objstore: opening %s: %w", path, err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS objects (
			key   TEXT PRIMARY KEY,
			blob  BLOB NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("objstore: creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Key is the cache key for a module's compiled object: a hash of its
// source text and the module path it was compiled under, so renaming
// or editing a module invalidates exactly its own cache entry.
func Key(modulePath string, source []byte) string {
	h := sha256.New()
	h.Write([]byte(schemaVersion))
	h.Write([]byte{0})
	h.Write([]byte(modulePath))
	h.Write([]byte{0})
	h.Write(source)
	return hex.EncodeToString(h.Sum(nil))
}

// Lookup returns the cached, decoded symbol table for key, or
// (nil, false, nil) on a cache miss.
func (s *Store) Lookup(key string) (*symtab.Table, bool, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT blob FROM objects WHERE key = ?`, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("objstore: looking up %s: %w", key, err)
	}
	tab, err := objfile.Decode(blob)
	if err != nil {
		return nil, false, fmt.Errorf("objstore: decoding cached entry %s: %w", key, err)
	}
	return tab, true, nil
}

// Store encodes tab and records it under key, replacing any prior
// entry (a module that is recompiled after an edit gets a new key
// anyway, since Key hashes the source; an explicit Store under an
// existing key is a forced refresh).
func (s *Store) Store(key string, tab *symtab.Table) error {
	blob, err := objfile.Encode(tab)
	if err != nil {
		return fmt.Errorf("objstore: encoding table for %s: %w", key, err)
	}
	_, err = s.db.Exec(`INSERT INTO objects(key, blob) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET blob = excluded.blob`, key, blob)
	if err != nil {
		return fmt.Errorf("objstore: storing %s: %w", key, err)
	}
	return nil
}

// Clean removes every cached entry.
func (s *Store) Clean() error {
	_, err := s.db.Exec(`DELETE FROM objects`)
	if err != nil {
		return fmt.Errorf("objstore: clean: %w", err)
	}
	return nil
}
