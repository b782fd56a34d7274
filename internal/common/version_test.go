package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadVersionFromFile(t *testing.T) {
	original := Version
	t.Cleanup(func() { Version = original })

	dir := t.TempDir()
	assert.Equal(t, original, LoadVersionFromFile(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".version"), []byte("  \n"), 0644))
	assert.Equal(t, original, LoadVersionFromFile(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".version"), []byte("1.2.3\n"), 0644))
	assert.Equal(t, "1.2.3", LoadVersionFromFile(dir))
	assert.Equal(t, "1.2.3", GetVersionInfo().Version)
	assert.Contains(t, GetFullVersion(), "1.2.3 (build: ")
}
