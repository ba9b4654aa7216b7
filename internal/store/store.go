// Package store persists annotation point sets on disk. Each target gets
// one JSON document at <root>/<path-key>/annotations.json holding every
// annotation's points for that target, written atomically and stamped with
// a fresh revision id on every save.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cortexmark/cortexmark/internal/ctxlog"
	"github.com/cortexmark/cortexmark/internal/geom"
)

const fileName = "annotations.json"

// CorruptError reports a save file that exists but cannot be decoded. It is
// surfaced rather than silently treated as empty so user data is never
// overwritten by accident.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt annotation file %s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// document is the on-disk shape of one target's annotations.
type document struct {
	Revision    string                  `json:"revision"`
	SavedAt     time.Time               `json:"saved_at"`
	Annotations map[string][]geom.Point `json:"annotations"`
}

// Store reads and writes per-target annotation documents under a root
// directory. Concurrent saves to the same target serialise on a per-path
// mutex; distinct targets do not contend.
type Store struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a store rooted at dir.
func New(dir string) *Store {
	return &Store{root: dir, locks: make(map[string]*sync.Mutex)}
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

func (s *Store) lockFor(pathKey string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[pathKey]
	if !ok {
		l = &sync.Mutex{}
		s.locks[pathKey] = l
	}
	return l
}

func (s *Store) filePath(pathKey string) string {
	return filepath.Join(s.root, filepath.FromSlash(pathKey), fileName)
}

// Save writes the given point sets for the target identified by pathKey.
// The document is written to a temporary file and renamed into place, so a
// crash mid-save leaves the previous revision intact. The new revision id
// is returned.
func (s *Store) Save(ctx context.Context, pathKey string, sets map[string][]geom.Point) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	lock := s.lockFor(pathKey)
	lock.Lock()
	defer lock.Unlock()

	doc := document{
		Revision:    uuid.NewString(),
		SavedAt:     time.Now().UTC(),
		Annotations: make(map[string][]geom.Point, len(sets)),
	}
	for name, pts := range sets {
		if pts == nil {
			pts = []geom.Point{}
		}
		doc.Annotations[name] = pts
	}

	path := s.filePath(pathKey)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating save directory: %w", err)
	}

	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding annotations: %w", err)
	}

	tmp, err := os.CreateTemp(dir, fileName+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("writing annotations: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("replacing annotation file: %w", err)
	}

	ctxlog.FromContext(ctx).Debug("Saved annotations.",
		"path_key", pathKey, "revision", doc.Revision, "annotations", len(doc.Annotations))
	return doc.Revision, nil
}

// Load reads the point sets for the target identified by pathKey. Names
// lists the annotations the caller expects; each one gets an entry in the
// result, empty when nothing was saved for it. A missing file is an empty
// workspace, not an error. A present but undecodable file is a
// CorruptError.
func (s *Store) Load(ctx context.Context, pathKey string, names []string) (map[string][]geom.Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lock := s.lockFor(pathKey)
	lock.Lock()
	defer lock.Unlock()

	out := make(map[string][]geom.Point, len(names))
	for _, name := range names {
		out[name] = []geom.Point{}
	}

	path := s.filePath(pathKey)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading annotation file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	for name, pts := range doc.Annotations {
		// Entries for annotations no longer configured are ignored, not an
		// error; the file may predate a configuration change.
		if _, wanted := out[name]; !wanted {
			continue
		}
		if pts == nil {
			pts = []geom.Point{}
		}
		out[name] = pts
	}
	return out, nil
}

// Revision returns the revision id of the saved document for pathKey, or
// the empty string when nothing has been saved yet.
func (s *Store) Revision(ctx context.Context, pathKey string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.filePath(pathKey))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading annotation file: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", &CorruptError{Path: s.filePath(pathKey), Err: err}
	}
	return doc.Revision, nil
}
