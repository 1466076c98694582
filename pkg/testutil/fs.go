package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// MemFS returns an in-memory file system holding files, keyed by path
func MemFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
	return fs
}

// WriteFiles writes files below dir on the real file system
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	fs := afero.NewOsFs()
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
}
