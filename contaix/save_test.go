package contaix

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveToFile(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveToFile([]byte("data"), filepath.Join(dir, "plain.md"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "plain.md"), path)

	path, err = SaveToFile([]byte("data"), filepath.Join(dir, "*_notes.md"))
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, "_notes.md"))
	assert.NotContains(t, path, "*")

	path, err = SaveToFile([]byte("tmp"), "")
	require.NoError(t, err)
	defer os.Remove(path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tmp", string(data))
	assert.Equal(t, filepath.Clean(os.TempDir()), filepath.Dir(path))
}

func TestFullpath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "notes"), Fullpath("~/notes"))
	assert.True(t, filepath.IsAbs(Fullpath("relative/path")))
}

func TestRemoveImproperDoubleNewlines(t *testing.T) {
	assert.Equal(t, "a\nb\nc", RemoveImproperDoubleNewlines("a\r\nb\n   \nc"))
	assert.Equal(t, "a\n\nb", RemoveImproperDoubleNewlines("a\n\nb"))
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com"))
	assert.True(t, IsURL("http://example.com"))
	assert.False(t, IsURL("ftp://example.com"))
	assert.False(t, IsURL("example.com"))
}
