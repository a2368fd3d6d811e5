package contaix

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExcludeDoesNotMutateInput(t *testing.T) {
	base := NewMapStore(Entry{Key: "a.py", Value: "a"}, Entry{Key: "b.py", Value: "b"})
	out := Exclude("b.py")(base)

	keys, err := out.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py"}, keys)
	_, err = out.Get("b.py")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	baseKeys, err := base.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "b.py"}, baseKeys)
}

func TestCapCharsBound(t *testing.T) {
	values := []string{"", "short", strings.Repeat("x", 100), "héllo wörld ünïcode"}
	base := NewMapStore()
	for i, v := range values {
		require.NoError(t, base.Set(string(rune('a'+i)), v))
	}
	const limit = 10
	capped := CapChars(limit)(base)
	for i, v := range values {
		got, err := capped.Get(string(rune('a' + i)))
		require.NoError(t, err)
		assert.LessOrEqual(t, utf8.RuneCountInString(got), limit)
		if utf8.RuneCountInString(v) <= limit {
			assert.Equal(t, v, got)
		} else {
			assert.True(t, strings.HasPrefix(v, got))
		}
	}
	assert.Nil(t, CapChars(0))
}

func TestPipeSkipsNilAndComposesInOrder(t *testing.T) {
	base := NewMapStore(Entry{Key: "a", Value: "abcdef"})
	upper := MapValues(strings.ToUpper)
	s := Pipe(nil, CapChars(3), upper, DedupLines(0))(base)
	v, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "ABC", v)

	assert.Same(t, base, Pipe()(base))
}

func TestConfigPipeline(t *testing.T) {
	base := NewMapStore(
		Entry{Key: "a.md", Value: "one\ntwo\nthree\none\ntwo\nthree"},
		Entry{Key: "b.txt", Value: "text"},
		Entry{Key: "c.md", Value: "notes"},
	)

	assert.Same(t, base, Config{Suffix: ".md"}.Pipeline()(base), "empty pipeline is the identity")

	s := Config{Suffix: ".md", Exclude: []string{"c.md"}, MinDuplicatedLines: 3, MaxChars: 9}.Pipeline()(base)
	entries, err := Entries(s)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Key: "a.md", Value: "one\ntwo\nt"}}, entries)

	s = Config{Exclude: []string{"c.md"}}.Pipeline()(base)
	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "b.txt"}, keys)
}

func TestDeduplicateLines(t *testing.T) {
	text := "a\nb\nc\nx\na\nb\nc\ny"
	got, removed := DeduplicateLines(text, 3)
	assert.Equal(t, "a\nb\nc\nx\ny", got)
	require.Len(t, removed, 1)
	assert.Equal(t, RemovedBlock{Line: 4, Original: 0, Lines: []string{"a", "b", "c"}}, removed[0])

	got, removed = DeduplicateLines("a\nb\nx\na\nb", 3)
	assert.Equal(t, "a\nb\nx\na\nb", got, "blocks shorter than the threshold stay")
	assert.Empty(t, removed)

	got, _ = DeduplicateLines("p\nq\nr\ns\n1\np\nq\nr\ns", 2)
	assert.Equal(t, "p\nq\nr\ns\n1", got, "matches extend past the threshold")

	blank := "x\n\n\n\ny\n\n\n\nz"
	got, _ = DeduplicateLines(blank, 3)
	assert.Equal(t, blank, got, "blank runs are not duplicates")
}

func TestDeduplicateLinesIsIdempotent(t *testing.T) {
	inputs := []string{
		"a\nb\nc\na\nb\nc\na\nb\nc",
		"x\ny\nz\nw\nx\ny\nq\ny\nz\nw\nx\ny",
		"1\n2\n3\n4\n2\n3\n4\n1\n2\n3\n4",
		"func a() {\n\treturn\n}\n\nfunc b() {\n\treturn\n}\n",
	}
	for _, in := range inputs {
		for _, n := range []int{1, 2, 3} {
			once, _ := DeduplicateLines(in, n)
			twice, removed := DeduplicateLines(once, n)
			assert.Equal(t, once, twice, "input %q threshold %d", in, n)
			assert.Empty(t, removed)
		}
	}
}
