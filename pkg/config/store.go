package config

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrInvalidPath is returned for empty or malformed dotted key paths.
var ErrInvalidPath = errors.New("invalid key path")

// Store is the durable key/value store behind all persisted window state.
// Keys are dotted paths ("savedWindowState.theme"); the first segment names
// a section. Every mutation is persisted before it returns.
type Store interface {
	// Get returns the value at path, falling back to the registered default.
	Get(path string) (any, bool)

	// Set stores value at path, creating intermediate sections as needed.
	Set(path string, value any) error

	// Delete removes the value at path. A path with a default stays
	// absent until its section is Reset.
	Delete(path string) error

	// Has reports whether path resolves to a value (stored or default).
	Has(path string) bool

	// Reset restores a top-level section to its defaults.
	Reset(section string) error

	// Path returns the backing file, empty for in-memory stores.
	Path() string
}

// FileStore implements Store using a JSON file.
type FileStore struct {
	path     string
	data     map[string]any
	defaults map[string]any
	mu       sync.RWMutex
	version  string
	digest   [32]byte
}

type fileFormat struct {
	Version string         `json:"version"`
	Data    map[string]any `json:"data"`
}

// NewFileStore creates a new file-based store seeded with defaults.
// If path is empty, defaults to ~/.ghostchat/config.json
func NewFileStore(path string, defaults map[string]any) (*FileStore, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".ghostchat", "config.json")
	}

	store, err := newStore(path, defaults)
	if err != nil {
		return nil, err
	}

	// Try to load existing state, but don't fail if it doesn't exist
	if err := store.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load store from %s: %w", path, err)
	}

	return store, nil
}

// NewMemoryStore creates a store that is never written to disk.
func NewMemoryStore(defaults map[string]any) *FileStore {
	store, err := newStore("", defaults)
	if err != nil {
		// defaults that cannot round-trip through JSON are a programming error
		panic(err)
	}
	return store
}

func newStore(path string, defaults map[string]any) (*FileStore, error) {
	normalized, err := normalize(defaults)
	if err != nil {
		return nil, fmt.Errorf("invalid store defaults: %w", err)
	}
	defaultsMap, _ := normalized.(map[string]any)
	if defaultsMap == nil {
		defaultsMap = make(map[string]any)
	}

	return &FileStore{
		path:     path,
		data:     make(map[string]any),
		defaults: defaultsMap,
		version:  "1.0",
	}, nil
}

// Load loads the store from disk.
func (s *FileStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.loadLocked()
	return err
}

// ReloadIfChanged reloads the file when its content differs from what this
// store last read or wrote. It reports whether the in-memory state changed.
func (s *FileStore) ReloadIfChanged() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadLocked()
}

func (s *FileStore) loadLocked() (bool, error) {
	if s.path == "" {
		return false, nil
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist yet, keep the current state
			return false, nil
		}
		return false, fmt.Errorf("failed to read store file: %w", err)
	}

	digest := sha256.Sum256(raw)
	if digest == s.digest {
		return false, nil
	}

	var file fileFormat
	decoder := json.NewDecoder(bytes.NewReader(raw))
	if err := decoder.Decode(&file); err != nil {
		return false, fmt.Errorf("failed to decode store file: %w", err)
	}

	if file.Version != "" {
		s.version = file.Version
	}
	if file.Data != nil {
		s.data = file.Data
	} else {
		s.data = make(map[string]any)
	}
	s.digest = digest

	return true, nil
}

// saveLocked writes the store to disk. Caller holds s.mu.
func (s *FileStore) saveLocked() error {
	if s.path == "" {
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	raw, err := json.MarshalIndent(fileFormat{Version: s.version, Data: s.data}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}
	raw = append(raw, '\n')

	// Temp file + rename keeps the previous file intact on a crash mid-write
	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, raw, 0600); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp store file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.digest = sha256.Sum256(raw)
	return nil
}

// Get returns the value at path. Stored maps are merged over their defaults
// so fields never written still report their default value.
func (s *FileStore) Get(path string) (any, bool) {
	keys, err := splitPath(path)
	if err != nil {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if deleted(s.data, keys) {
		return nil, false
	}

	stored, hasStored := lookup(s.data, keys)
	def, hasDefault := lookup(s.defaults, keys)

	switch {
	case hasStored && hasDefault:
		storedMap, ok1 := stored.(map[string]any)
		defMap, ok2 := def.(map[string]any)
		if ok1 && ok2 {
			return mergeMaps(defMap, storedMap), true
		}
		return deepCopy(stored), true
	case hasStored:
		if storedMap, ok := stored.(map[string]any); ok {
			return mergeMaps(map[string]any{}, storedMap), true
		}
		return deepCopy(stored), true
	case hasDefault:
		return deepCopy(def), true
	default:
		return nil, false
	}
}

// Set stores value at path and persists the store.
func (s *FileStore) Set(path string, value any) error {
	keys, err := splitPath(path)
	if err != nil {
		return err
	}

	normalized, err := normalize(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	setAt(s.data, keys, normalized)
	return s.saveLocked()
}

// Delete removes the value at path and persists the store.
func (s *FileStore) Delete(path string) error {
	keys, err := splitPath(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A stored null hides the default; removing the key would let the
	// default show through again on the next Get.
	if _, hasDefault := lookup(s.defaults, keys); hasDefault {
		setAt(s.data, keys, nil)
		return s.saveLocked()
	}

	node := s.data
	for _, key := range keys[:len(keys)-1] {
		next, ok := node[key].(map[string]any)
		if !ok {
			return nil
		}
		node = next
	}
	delete(node, keys[len(keys)-1])

	return s.saveLocked()
}

// Has reports whether path resolves to a stored or default value.
func (s *FileStore) Has(path string) bool {
	_, ok := s.Get(path)
	return ok
}

// Reset drops the stored section so its defaults show through again.
func (s *FileStore) Reset(section string) error {
	keys, err := splitPath(section)
	if err != nil {
		return err
	}
	if len(keys) != 1 {
		return fmt.Errorf("%w: reset takes a top-level section, got %q", ErrInvalidPath, section)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, section)
	return s.saveLocked()
}

// Path returns the file path of the store.
func (s *FileStore) Path() string {
	return s.path
}

// Decode reads the value at path from store into v via its JSON form.
// A path that resolves to nothing leaves v untouched.
func Decode(store Store, path string, v any) error {
	value, ok := store.Get(path)
	if !ok {
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	keys := strings.Split(path, ".")
	for _, key := range keys {
		if key == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return keys, nil
}

func lookup(root map[string]any, keys []string) (any, bool) {
	var node any = root
	for _, key := range keys {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

func setAt(root map[string]any, keys []string, value any) {
	node := root
	for _, key := range keys[:len(keys)-1] {
		next, ok := node[key].(map[string]any)
		if !ok {
			next = make(map[string]any)
			node[key] = next
		}
		node = next
	}
	node[keys[len(keys)-1]] = value
}

// deleted reports whether path or one of its parents is stored as null.
func deleted(root map[string]any, keys []string) bool {
	var node any = root
	for _, key := range keys {
		m, ok := node.(map[string]any)
		if !ok {
			return false
		}
		node, ok = m[key]
		if !ok {
			return false
		}
		if node == nil {
			return true
		}
	}
	return false
}

// mergeMaps returns a deep copy of base with overlay applied on top. Null
// overlay values remove the key.
func mergeMaps(base, overlay map[string]any) map[string]any {
	out := deepCopy(base).(map[string]any)
	for key, value := range overlay {
		if value == nil {
			delete(out, key)
			continue
		}
		baseChild, ok1 := out[key].(map[string]any)
		overlayChild, ok2 := value.(map[string]any)
		if ok1 && ok2 {
			out[key] = mergeMaps(baseChild, overlayChild)
			continue
		}
		out[key] = deepCopy(value)
	}
	return out
}

// deepCopy copies JSON-shaped values so callers cannot alias stored state.
func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = deepCopy(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = deepCopy(child)
		}
		return out
	default:
		return val
	}
}

// normalize converts v to its JSON-decoded shape (maps, slices, float64...),
// the same shape values have after a reload from disk.
func normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
