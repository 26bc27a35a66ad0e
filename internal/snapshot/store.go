// Package snapshot persists per-pass IR dumps so a miscompile can be
// bisected to the sweep and pass that introduced it.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when Record format changes
const schemaVersion uint16 = 1

// Record is one persisted snapshot: the IR text after a pass ran.
type Record struct {
	Schema  uint16
	Pass    string
	Sweep   int
	Changed bool
	IR      string
}

// Store writes records under a directory, one file per (pass, sweep),
// keyed by the digest of the record identity.
type Store struct {
	dir string
}

// Open initializes a snapshot store rooted at dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) pathFor(pass string, sweep int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d/%s", sweep, pass)))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:8])+".mp")
}

// Put serializes and writes a record, atomically replacing any previous
// snapshot of the same (pass, sweep).
func (s *Store) Put(rec *Record) error {
	if s == nil {
		return nil
	}
	rec.Schema = schemaVersion
	p := s.pathFor(rec.Pass, rec.Sweep)
	f, err := os.CreateTemp(s.dir, "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(rec); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, p)
}

// Get reads the snapshot of (pass, sweep). The boolean is false when no
// snapshot exists.
func (s *Store) Get(pass string, sweep int, out *Record) (bool, error) {
	if s == nil {
		return false, nil
	}
	f, err := os.Open(s.pathFor(pass, sweep))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	if out.Schema != schemaVersion {
		return false, fmt.Errorf("snapshot %s/%d: schema %d unsupported",
			pass, sweep, out.Schema)
	}
	return true, nil
}
