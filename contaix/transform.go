package contaix

import (
	"fmt"
	"strings"
)

// Transform rewrites a store into a new one and never mutates its input
type Transform func(Store) Store

// Pipe composes transforms left to right; with no transforms it returns the store as is
func Pipe(transforms ...Transform) Transform {
	return func(s Store) Store {
		for _, t := range transforms {
			if t != nil {
				s = t(s)
			}
		}
		return s
	}
}

// FilterKeys keeps only the keys accepted by filter
func FilterKeys(filter KeyFilter) Transform {
	return func(s Store) Store {
		return &filteredStore{base: s, filter: filter}
	}
}

// Exclude drops the given keys
func Exclude(keys ...string) Transform {
	excluded := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		excluded[k] = struct{}{}
	}
	return FilterKeys(func(key string) bool {
		_, ok := excluded[key]
		return !ok
	})
}

// SuffixFilter keeps keys ending with suffix
func SuffixFilter(suffix string) Transform {
	return FilterKeys(SuffixKeys(suffix))
}

// MapValues rewrites every value with fn when it is read
func MapValues(fn func(string) string) Transform {
	return func(s Store) Store {
		return &mappedStore{base: s, fn: fn}
	}
}

// DedupLines removes duplicated line blocks of at least minBlock lines from each value.
// A non-positive threshold disables it.
func DedupLines(minBlock int) Transform {
	if minBlock <= 0 {
		return nil
	}
	return MapValues(func(v string) string {
		cleaned, _ := DeduplicateLines(v, minBlock)
		return cleaned
	})
}

// CapChars truncates each value to at most n characters. A non-positive n disables it.
func CapChars(n int) Transform {
	if n <= 0 {
		return nil
	}
	return MapValues(func(v string) string {
		return truncateRunes(v, n)
	})
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

type filteredStore struct {
	base   Store
	filter KeyFilter
}

func (f *filteredStore) Keys() ([]string, error) {
	keys, err := f.base.Keys()
	if err != nil {
		return nil, err
	}
	out := keys[:0:0]
	for _, k := range keys {
		if f.filter(k) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *filteredStore) Get(key string) (string, error) {
	if !f.filter(key) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return f.base.Get(key)
}

func (f *filteredStore) Len() (int, error) {
	keys, err := f.Keys()
	return len(keys), err
}

func (f *filteredStore) Root() string { return rootOf(f.base) }

type mappedStore struct {
	base Store
	fn   func(string) string
}

func (m *mappedStore) Keys() ([]string, error) { return m.base.Keys() }
func (m *mappedStore) Len() (int, error)       { return m.base.Len() }
func (m *mappedStore) Root() string            { return rootOf(m.base) }

func (m *mappedStore) Get(key string) (string, error) {
	v, err := m.base.Get(key)
	if err != nil {
		return "", err
	}
	return m.fn(v), nil
}

func rootOf(s Store) string {
	if r, ok := s.(interface{ Root() string }); ok {
		return r.Root()
	}
	return ""
}

// Pipeline builds the configured chain: filter (exclude + suffix), then dedup, then cap.
// When none of exclude, dedup or cap is set the result is the identity.
func (c Config) Pipeline() Transform {
	if len(c.Exclude) == 0 && c.MinDuplicatedLines <= 0 && c.MaxChars <= 0 {
		return Pipe()
	}
	excluded := make(map[string]struct{}, len(c.Exclude))
	for _, k := range c.Exclude {
		excluded[k] = struct{}{}
	}
	filter := func(key string) bool {
		if _, ok := excluded[key]; ok {
			return false
		}
		return c.Suffix == "" || strings.HasSuffix(key, c.Suffix)
	}
	return Pipe(
		FilterKeys(filter),
		DedupLines(c.MinDuplicatedLines),
		CapChars(c.MaxChars),
	)
}
