package contaix

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestMapStoreKeepsInsertionOrder(t *testing.T) {
	s := NewMapStore(
		Entry{Key: "b.py", Value: "1"},
		Entry{Key: "a.py", Value: "2"},
		Entry{Key: "b.py", Value: "3"},
	)
	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"b.py", "a.py"}, keys)

	v, err := s.Get("b.py")
	require.NoError(t, err)
	assert.Equal(t, "3", v)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestFromMapSortsKeys(t *testing.T) {
	s := FromMap(map[string]string{"z": "1", "a": "2", "m": "3"})
	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "m", "z"}, keys)
}

func TestMapStoreZeroValue(t *testing.T) {
	var m MapStore
	keys, err := m.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
	_, err = m.Get("k")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, m.Set("k", "v"))
	require.NoError(t, m.Set("j", "w"))
	v, err := m.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
	keys, err = m.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"k", "j"}, keys)
	n, err := m.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func writeMixedTree(t *testing.T, root string) {
	t.Helper()
	writeFiles(t, root, map[string]string{
		"z.go":              "package z",
		"a/b.go":            "package b",
		"a/notes.txt":       "not go",
		"build/x.go":        "package x",
		"node_modules/n.go": "package n",
		"vendor/y.go":       "package y",
		".git/config.go":    "package git",
	})
	require.NoError(t, os.WriteFile(filepath.Join(root, "bin.go"), []byte{0x00, 0x01, 0x02}, 0644))
}

func TestTextFilesKeysMatchFilteredWalk(t *testing.T) {
	root := t.TempDir()
	writeMixedTree(t, root)
	filter := SuffixKeys(".go")

	var want []string
	require.NoError(t, filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		if key := filepath.ToSlash(rel); filter(key) {
			want = append(want, key)
		}
		return nil
	}))
	sort.Strings(want)

	s := NewTextFiles(root, filter)
	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, want, keys)
	assert.Equal(t, []string{".git/config.go", "a/b.go", "bin.go", "build/x.go", "node_modules/n.go", "vendor/y.go", "z.go"}, keys)
	for _, k := range keys {
		assert.True(t, s.Accepts(k), k)
	}
	assert.False(t, s.Accepts("a/notes.txt"))

	again, err := NewTextFiles(root, filter).Keys()
	require.NoError(t, err)
	assert.Equal(t, keys, again)

	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, len(want), n)
}

func TestTextFilesSkipNoise(t *testing.T) {
	root := t.TempDir()
	writeMixedTree(t, root)

	s := NewTextFiles(root, SuffixKeys(".go")).SkipNoise()
	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b.go", "build/x.go", "z.go"}, keys)
	assert.False(t, s.Accepts("vendor/y.go"))
	assert.False(t, s.Accepts("node_modules/n.go"))

	_, err = s.Get("vendor/y.go")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestTextFilesAdditionalIgnores(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"main.go":            "package main",
		"tests/a_test.go":    "package tests",
		"internal/gen/x.go":  "package gen",
		"internal/core/y.go": "package core",
	})
	keys, err := NewTextFiles(root, nil, "tests", "internal/gen").Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"internal/core/y.go", "main.go"}, keys)
}

func TestTextFilesMemoizesUntilRefresh(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.go": "package a"})
	s := NewTextFiles(root, SuffixKeys(".go"))
	keys, err := s.Keys()
	require.NoError(t, err)
	require.Len(t, keys, 1)

	writeFiles(t, root, map[string]string{"b.go": "package b"})
	keys, err = s.Keys()
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	s.Refresh()
	keys, err = s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go", "b.go"}, keys)
}

func TestTextFilesGetAndSet(t *testing.T) {
	root := t.TempDir()
	s := NewTextFiles(root, SuffixKeys(".md"))
	require.NoError(t, s.Set("notes/today.md", "# Today"))

	v, err := s.Get("notes/today.md")
	require.NoError(t, err)
	assert.Equal(t, "# Today", v)

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"notes/today.md"}, keys)

	_, err = s.Get("notes/other.md")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	_, err = s.Get("notes/today.txt")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestDecodeText(t *testing.T) {
	assert.Equal(t, "hello", decodeText([]byte("\xEF\xBB\xBFhello")))
	assert.Equal(t, "café", decodeText([]byte("caf\xE9")))
	assert.Equal(t, "naïve", decodeText([]byte("naïve")))
}

func TestOverlayPrependsWithoutMutatingBase(t *testing.T) {
	base := NewMapStore(Entry{Key: "a.go", Value: "A"}, Entry{Key: "b.go", Value: "B"})
	o := NewOverlay(NewMapStore(Entry{Key: "README.md", Value: "readme"}, Entry{Key: "b.go", Value: "B2"}), base)

	keys, err := o.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md", "b.go", "a.go"}, keys)

	v, err := o.Get("b.go")
	require.NoError(t, err)
	assert.Equal(t, "B2", v)
	v, err = o.Get("a.go")
	require.NoError(t, err)
	assert.Equal(t, "A", v)

	n, err := o.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	baseKeys, err := base.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go", "b.go"}, baseKeys)
	v, err = base.Get("b.go")
	require.NoError(t, err)
	assert.Equal(t, "B", v)
}

func TestEntries(t *testing.T) {
	s := NewMapStore(Entry{Key: "x", Value: "1"}, Entry{Key: "y", Value: "2"})
	entries, err := Entries(s)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Key: "x", Value: "1"}, {Key: "y", Value: "2"}}, entries)
}
