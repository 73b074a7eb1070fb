// AngelaMos | 2026
// jsondb.go

package core

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const (
	CollectionUsers       = "users"
	CollectionCourses     = "courses"
	CollectionEnrollments = "enrollments"
)

var defaultCollections = []string{
	CollectionUsers,
	CollectionCourses,
	CollectionEnrollments,
}

// JSONDB keeps a db.json style document in memory and writes it back to
// disk after every successful Update. Top-level keys it does not know about
// are carried through untouched.
type JSONDB struct {
	path   string
	logger *slog.Logger

	mu       sync.RWMutex
	data     map[string]json.RawMessage
	lastHash [sha256.Size]byte
}

func OpenJSONDB(path string, logger *slog.Logger) (*JSONDB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db := &JSONDB{
		path:   filepath.Clean(path),
		logger: logger,
	}

	if err := os.MkdirAll(filepath.Dir(db.path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	raw, err := os.ReadFile(db.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		db.data = make(map[string]json.RawMessage)
		ensureCollections(db.data)
		if err := db.persist(db.data); err != nil {
			return nil, err
		}
		return db, nil
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", db.path, err)
	}

	data, err := parseDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", db.path, err)
	}

	db.data = data
	db.lastHash = sha256.Sum256(raw)

	return db, nil
}

func (db *JSONDB) Path() string {
	return db.path
}

// JSONTx is the view of the document handed to View and Update callbacks.
// Writes are staged and only become visible when Update returns nil.
type JSONTx struct {
	db       *JSONDB
	writable bool
	pending  map[string]json.RawMessage
}

func (tx *JSONTx) raw(collection string) json.RawMessage {
	if v, ok := tx.pending[collection]; ok {
		return v
	}
	return tx.db.data[collection]
}

func (tx *JSONTx) put(collection string, v json.RawMessage) error {
	if !tx.writable {
		return fmt.Errorf("write to %s in read-only transaction", collection)
	}
	if tx.pending == nil {
		tx.pending = make(map[string]json.RawMessage)
	}
	tx.pending[collection] = v
	return nil
}

func (db *JSONDB) View(fn func(tx *JSONTx) error) error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return fn(&JSONTx{db: db})
}

// Update runs fn under the write lock. Any collection fn encodes is written
// to disk before Update returns; if fn fails nothing changes.
func (db *JSONDB) Update(fn func(tx *JSONTx) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx := &JSONTx{db: db, writable: true}
	if err := fn(tx); err != nil {
		return err
	}

	if len(tx.pending) == 0 {
		return nil
	}

	next := make(map[string]json.RawMessage, len(db.data)+len(tx.pending))
	for k, v := range db.data {
		next[k] = v
	}
	for k, v := range tx.pending {
		next[k] = v
	}

	if err := db.persist(next); err != nil {
		return err
	}

	db.data = next
	return nil
}

func Decode[T any](tx *JSONTx, collection string) ([]T, error) {
	raw := tx.raw(collection)
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	if items == nil {
		items = []T{}
	}

	return items, nil
}

func Encode[T any](tx *JSONTx, collection string, items []T) error {
	if items == nil {
		items = []T{}
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}

	return tx.put(collection, raw)
}

// Export returns the current document exactly as it would be written.
func (db *JSONDB) Export() ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return json.MarshalIndent(db.data, "", "  ")
}

func (db *JSONDB) Ping(_ context.Context) error {
	if _, err := os.Stat(db.path); err != nil {
		return fmt.Errorf("json database unavailable: %w", err)
	}
	return nil
}

// persist must be called with the write lock held.
func (db *JSONDB) persist(data map[string]json.RawMessage) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal database: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(db.path), ".db-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(out); err != nil {
		_ = tmp.Close()        //nolint:errcheck // already failing
		_ = os.Remove(tmpName) //nolint:errcheck // already failing
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()        //nolint:errcheck // already failing
		_ = os.Remove(tmpName) //nolint:errcheck // already failing
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // already failing
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, db.path); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // already failing
		return fmt.Errorf("replace %s: %w", db.path, err)
	}
	db.lastHash = sha256.Sum256(out)

	return nil
}

// Watch reloads the document when another process edits the file. The
// parent directory is watched because the file itself is replaced by
// rename on every write. Watch blocks until ctx is cancelled.
func (db *JSONDB) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck // best-effort on shutdown

	if err := watcher.Add(filepath.Dir(db.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(db.path), err)
	}

	db.logger.Info("watching database file", "path", db.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != db.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			db.reload()
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			db.logger.Warn("database watcher error", "error", werr)
		}
	}
}

func (db *JSONDB) reload() {
	raw, err := os.ReadFile(db.path)
	if err != nil {
		db.logger.Warn("reload database", "error", err)
		return
	}

	hash := sha256.Sum256(raw)

	db.mu.Lock()
	defer db.mu.Unlock()

	if hash == db.lastHash {
		return
	}

	data, err := parseDocument(raw)
	if err != nil {
		db.logger.Warn("ignoring unparsable database edit",
			"path", db.path,
			"error", err,
		)
		return
	}

	db.data = data
	db.lastHash = hash
	db.logger.Info("database reloaded from disk", "path", db.path)
}

func parseDocument(raw []byte) (map[string]json.RawMessage, error) {
	data := make(map[string]json.RawMessage)
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, err
		}
	}

	for _, name := range defaultCollections {
		if v, ok := data[name]; ok {
			trimmed := bytes.TrimSpace(v)
			if len(trimmed) > 0 && trimmed[0] != '[' && !bytes.Equal(trimmed, []byte("null")) {
				return nil, fmt.Errorf("collection %q is not an array", name)
			}
		}
	}

	ensureCollections(data)
	return data, nil
}

func ensureCollections(data map[string]json.RawMessage) {
	for _, name := range defaultCollections {
		if _, ok := data[name]; !ok {
			data[name] = json.RawMessage("[]")
		}
	}
}
