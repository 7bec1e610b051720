// Package cache implements the local document cache: one JSON file per
// collection in a shared directory, written atomically. The cache is the
// always-available source of truth when the remote store is unreachable;
// only the sync coordinator writes to it.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Collection document names.
const (
	DocNotes      = "notes"
	DocQuickNotes = "quicknotes"
	DocTasks      = "tasks"
	DocClients    = "clients"
)

// Docs lists every collection document name.
var Docs = []string{DocNotes, DocQuickNotes, DocTasks, DocClients}

// Dir is a document cache rooted at a directory.
type Dir struct {
	root string
}

// New creates a cache rooted at the given directory, creating it if needed.
func New(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("cache: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create root: %w", err)
	}
	return &Dir{root: abs}, nil
}

// Root returns the absolute cache directory, for the watcher.
func (d *Dir) Root() string { return d.root }

// path maps a document name to its file. Names are restricted to a flat
// namespace; anything path-like is rejected.
func (d *Dir) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\.`) {
		return "", fmt.Errorf("cache: invalid document name: %q", name)
	}
	return filepath.Join(d.root, name+".json"), nil
}

// Read returns the raw bytes of a document. A document that was never
// written returns os.ErrNotExist; callers treat that as an empty
// collection.
func (d *Dir) Read(name string) ([]byte, error) {
	p, err := d.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("cache: read %s: %w", name, err)
	}
	return data, nil
}

// Write atomically replaces a document: tmp file, fsync, rename. A crash
// mid-write leaves the previous document intact.
func (d *Dir) Write(name string, data []byte) error {
	p, err := d.path(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.root, ".raido-tmp-*")
	if err != nil {
		return fmt.Errorf("cache: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("cache: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("cache: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cache: close temp: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("cache: rename: %w", err)
	}
	success = true
	return nil
}

// Checksum returns the digest of a document's current content, or "" when
// the document does not exist. Used to tell our own writes apart from a
// second process writing the shared cache.
func (d *Dir) Checksum(name string) (string, error) {
	data, err := d.Read(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return Sum(data), nil
}

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
