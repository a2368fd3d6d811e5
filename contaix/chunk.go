package contaix

import (
	"errors"
	"fmt"
)

// ErrInvalidChunkSize is returned when a chunk size is not positive
var ErrInvalidChunkSize = errors.New("chunk size must be positive")

// Chunk splits a store into consecutive sub-stores of at most size entries.
// Boundaries depend only on position; the last chunk may be smaller.
// Values are still read lazily from the parent store.
func Chunk(s Store, size int) ([]Store, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChunkSize, size)
	}
	keys, err := s.Keys()
	if err != nil {
		return nil, err
	}
	chunks := make([]Store, 0, (len(keys)+size-1)/size)
	for start := 0; start < len(keys); start += size {
		end := min(start+size, len(keys))
		chunks = append(chunks, newKeyView(s, keys[start:end]))
	}
	return chunks, nil
}

// keyView exposes a fixed subset of a parent store's keys
type keyView struct {
	parent Store
	keys   []string
	index  map[string]struct{}
}

func newKeyView(parent Store, keys []string) *keyView {
	index := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		index[k] = struct{}{}
	}
	return &keyView{parent: parent, keys: keys, index: index}
}

func (v *keyView) Keys() ([]string, error) {
	return append([]string(nil), v.keys...), nil
}

func (v *keyView) Get(key string) (string, error) {
	if _, ok := v.index[key]; !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return v.parent.Get(key)
}

func (v *keyView) Len() (int, error) {
	return len(v.keys), nil
}

func (v *keyView) Root() string { return rootOf(v.parent) }
