package contaix

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityEgress(t *testing.T) {
	out, err := Identity().Route("doc")
	require.NoError(t, err)
	assert.Equal(t, "doc", out)
}

func TestFileEgress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agg.md")
	require.NoError(t, os.WriteFile(path, []byte("old content that is longer"), 0644))

	out, err := ToFile(path).Route("new")
	require.NoError(t, err)
	assert.Equal(t, path, out)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	out, err = (&FileEgress{Path: path, ReturnDocument: true}).Route("again")
	require.NoError(t, err)
	assert.Equal(t, "again", out)
}

func TestFileEgressUnwritablePath(t *testing.T) {
	_, err := ToFile(filepath.Join(t.TempDir(), "missing", "agg.md")).Route("doc")
	assert.Error(t, err)
}

func TestChunkTemplateFor(t *testing.T) {
	assert.Equal(t, DefaultChunkTemplate, ChunkTemplateFor(""))
	assert.Equal(t, "ctx_%02d.md", ChunkTemplateFor("ctx.md"))
	assert.Equal(t, "dir/repo_%02d", ChunkTemplateFor("dir/repo"))
	assert.Equal(t, "part-%d.txt", ChunkTemplateFor("part-%d.txt"))
}

func TestTemplateEgressWritesNumberedFiles(t *testing.T) {
	dir := t.TempDir()
	tmpl := TemplateEgress(filepath.Join(dir, "out_%02d.md"))
	for i := 1; i <= 3; i++ {
		_, err := tmpl(i).Route("chunk")
		require.NoError(t, err)
	}
	for _, name := range []string{"out_01.md", "out_02.md", "out_03.md"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}
