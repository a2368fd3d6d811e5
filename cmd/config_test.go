package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	v, err := newViper("")
	require.NoError(t, err)
	s, err := loadSettings(v)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Code.Threads)
	assert.Equal(t, 10*time.Second, s.HTTP.Timeout)
	assert.Equal(t, 20, s.Verify.Workers)
	assert.Equal(t, "8080", s.Serve.Port)
}

func TestSettingsFileEnvAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contaix.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
code:
  exclude: [a.go, b.go]
  dedup_lines: 3
  max_chars: 500
http:
  timeout: 30s
serve:
  port: "9000"
`), 0644))
	t.Setenv("CONTAIX_CODE_MAX_CHARS", "800")

	v, err := newViper(path)
	require.NoError(t, err)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("dedup-lines", 0, "")
	flags.String("port", "8080", "")
	flags.Int("unrelated", 0, "")
	require.NoError(t, flags.Parse([]string{"--dedup-lines=5"}))
	require.NoError(t, bindFlags(v, flags))

	s, err := loadSettings(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go", "b.go"}, s.Code.Exclude)
	assert.Equal(t, 5, s.Code.DedupLines, "explicit flag wins")
	assert.Equal(t, 800, s.Code.MaxChars, "environment beats file")
	assert.Equal(t, 30*time.Second, s.HTTP.Timeout)
	assert.Equal(t, "9000", s.Serve.Port, "unset flag keeps file value")
}

func TestMissingConfigFile(t *testing.T) {
	_, err := newViper(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "github_com_user_repo", outputName("https://github.com/user/repo.git"))
	assert.Equal(t, "pkg_sub", outputName("./pkg/sub/"))
	assert.Equal(t, "context", outputName("///"))
}

func TestExtractorFor(t *testing.T) {
	for _, mode := range []string{"", "md", "context", "only", "html", "ast"} {
		e, err := extractorFor(mode, 10)
		require.NoError(t, err, mode)
		assert.NotNil(t, e)
	}
	_, err := extractorFor("pdf", 0)
	assert.Error(t, err)
}
