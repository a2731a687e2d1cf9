package ziputil

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPack(t *testing.T) {
	dir := t.TempDir()
	inputs := map[string]string{
		"a.pdf": "content a",
		"b.pdf": "content b",
	}
	var paths []string
	for name, content := range inputs {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		paths = append(paths, path)
	}

	zipPath := filepath.Join(dir, "out.zip")
	require.NoError(t, Pack(zipPath, paths))

	zr, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer zr.Close()

	require.Len(t, zr.File, 2)
	for _, entry := range zr.File {
		want, ok := inputs[entry.Name]
		require.True(t, ok, "unexpected entry %s", entry.Name)

		rc, err := entry.Open()
		require.NoError(t, err)
		got, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
}

func TestPackMissingInput(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "out.zip")

	err := Pack(zipPath, []string{filepath.Join(dir, "missing.pdf")})
	assert.Error(t, err)
}
