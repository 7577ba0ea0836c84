package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefault(t *testing.T) {
	content, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default, content)
	require.Contains(t, content, "get_website_technology")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "SYSTEM_PROMPT.md")
	require.NoError(t, os.WriteFile(path, []byte("  Always resolve to a URL.\n"), 0o600))

	content, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Always resolve to a URL.", content)
}

func TestLoadBlankFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "SYSTEM_PROMPT.md")
	require.NoError(t, os.WriteFile(path, []byte("\n \n"), 0o600))

	content, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Default, content)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.md"))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}
