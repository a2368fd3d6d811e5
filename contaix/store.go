package contaix

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	log "github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ErrKeyNotFound is returned by a Store when a key is not part of it
var ErrKeyNotFound = errors.New("key not found")

// Store is an ordered mapping from a unique key (usually a relative path) to text
type Store interface {
	Keys() ([]string, error)
	Get(key string) (string, error)
	Len() (int, error)
}

// WritableStore is a Store that can also persist values
type WritableStore interface {
	Store
	Set(key, value string) error
}

// Entry is a single key-value pair of a store
type Entry struct {
	Key   string
	Value string
}

// MapStore is an in-memory store that keeps insertion order.
// The zero value is an empty store ready to use.
type MapStore struct {
	keys   []string
	values map[string]string
}

// NewMapStore builds a store from pairs, in the given order.
// A repeated key keeps its first position and takes the last value.
func NewMapStore(entries ...Entry) *MapStore {
	m := &MapStore{values: make(map[string]string, len(entries))}
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

// FromMap builds a store from a Go map; keys are sorted since maps carry no order
func FromMap(values map[string]string) *MapStore {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	m := &MapStore{keys: keys, values: make(map[string]string, len(values))}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

func (m *MapStore) Keys() ([]string, error) {
	return append([]string(nil), m.keys...), nil
}

func (m *MapStore) Get(key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return v, nil
}

func (m *MapStore) Len() (int, error) {
	return len(m.keys), nil
}

func (m *MapStore) Set(key, value string) error {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	return nil
}

// Entries materializes any store into its ordered pairs
func Entries(s Store) ([]Entry, error) {
	keys, err := s.Keys()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		v, err := s.Get(k)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: k, Value: v})
	}
	return entries, nil
}

// TextFiles is a store over the files found under a root directory.
// Keys are slash-separated relative paths, sorted, and computed once per instance.
// The key set is every regular file whose key passes the filter and matches no
// ignore pattern, unless SkipNoise was called.
type TextFiles struct {
	root       string
	filter     KeyFilter
	ignores    *IgnorePatterns
	skipBinary bool

	once sync.Once
	keys []string
	err  error
}

// NewTextFiles creates a directory-backed store; a nil filter accepts every file
func NewTextFiles(root string, filter KeyFilter, additionalIgnores ...string) *TextFiles {
	if filter == nil {
		filter = AcceptAll
	}
	return &TextFiles{
		root:    root,
		filter:  filter,
		ignores: newIgnorePatterns(additionalIgnores),
	}
}

// SkipNoise makes the scan also drop the built-in noise list (.git, vendor,
// node_modules, lock files, media, ...) and files that look binary.
// It must be called before the first Keys.
func (t *TextFiles) SkipNoise() *TextFiles {
	t.ignores.withDefaults()
	t.skipBinary = true
	return t
}

// Accepts reports whether a key is eligible for the store, before checking it exists.
// Binary content is only known once the file is read, so it is not considered here.
func (t *TextFiles) Accepts(key string) bool {
	return t.filter(key) && !t.ignored(key)
}

func (t *TextFiles) ignored(key string) bool {
	if t.ignores.shouldIgnore(key) {
		return true
	}
	for dir := path.Dir(key); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if t.ignores.shouldIgnore(dir) {
			return true
		}
	}
	return false
}

// Root returns the directory the store reads from
func (t *TextFiles) Root() string {
	return t.root
}

func (t *TextFiles) Keys() ([]string, error) {
	t.once.Do(func() {
		t.keys, t.err = t.scan()
	})
	if t.err != nil {
		return nil, t.err
	}
	return append([]string(nil), t.keys...), nil
}

func (t *TextFiles) Len() (int, error) {
	keys, err := t.Keys()
	return len(keys), err
}

// Refresh drops the memoized key listing so the next access rescans the directory
func (t *TextFiles) Refresh() {
	t.once = sync.Once{}
	t.keys, t.err = nil, nil
}

func (t *TextFiles) Get(key string) (string, error) {
	if !t.Accepts(key) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	content, err := os.ReadFile(t.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return decodeText(content), nil
}

func (t *TextFiles) Set(key, value string) error {
	p := t.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}
	if err := os.WriteFile(p, []byte(value), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	t.Refresh()
	return nil
}

func (t *TextFiles) path(key string) string {
	return filepath.Join(t.root, filepath.FromSlash(key))
}

func (t *TextFiles) scan() ([]string, error) {
	var keys []string
	err := filepath.WalkDir(t.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(t.root, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}
		if t.ignores.shouldIgnore(relPath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		key := filepath.ToSlash(relPath)
		if !t.filter(key) {
			return nil
		}
		if t.skipBinary {
			binary, err := isBinaryFile(path)
			if err != nil {
				return err
			}
			if binary {
				return nil
			}
		}
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", t.root, err)
	}
	sort.Strings(keys)
	log.Debug().Str("root", t.root).Int("keys", len(keys)).Msg("scanned directory")
	return keys, nil
}

// decodeText turns file bytes into a string, stripping a UTF-8 BOM and
// reading anything that is not valid UTF-8 as Windows-1252
func decodeText(content []byte) string {
	s := strings.TrimPrefix(string(content), "\uFEFF")
	if utf8.ValidString(s) {
		return s
	}
	decoded, _, err := transform.String(charmap.Windows1252.NewDecoder(), s)
	if err != nil {
		return s
	}
	return decoded
}

// Overlay is a read-through store: overlay entries come first and shadow the base
type Overlay struct {
	overlay Store
	base    Store
}

// NewOverlay layers overlay in front of base without touching either
func NewOverlay(overlay, base Store) *Overlay {
	return &Overlay{overlay: overlay, base: base}
}

func (o *Overlay) Keys() ([]string, error) {
	front, err := o.overlay.Keys()
	if err != nil {
		return nil, err
	}
	back, err := o.base.Keys()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(front))
	keys := make([]string, 0, len(front)+len(back))
	for _, k := range front {
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for _, k := range back {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (o *Overlay) Get(key string) (string, error) {
	v, err := o.overlay.Get(key)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return "", err
	}
	return o.base.Get(key)
}

func (o *Overlay) Len() (int, error) {
	keys, err := o.Keys()
	return len(keys), err
}

// Root forwards to the base store when it is directory-backed
func (o *Overlay) Root() string { return rootOf(o.base) }
