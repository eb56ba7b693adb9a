package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceExt(t *testing.T) {
	cases := []struct {
		name string
		path string
		ext  string
		want string
	}{
		{"replace", "scratch/clip.m4a", ".wav", "scratch/clip.wav"},
		{"without dot", "scratch/clip.m4a", "wav", "scratch/clip.wav"},
		{"no extension", "scratch/clip", ".wav", "scratch/clip.wav"},
		{"dotfile", "scratch/.hidden", ".wav", "scratch/.hidden.wav"},
		{"empty", "", ".wav", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tc.want), ReplaceExt(filepath.FromSlash(tc.path), tc.ext))
		})
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	require.NoError(t, EnsureDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Existing directory is fine.
	require.NoError(t, EnsureDir(dir))
	// Empty path is a no-op.
	require.NoError(t, EnsureDir(""))
}

func TestSizeOf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("12345"), 0o644))

	assert.Equal(t, int64(5), SizeOf(path))
	assert.Equal(t, int64(0), SizeOf(filepath.Join(t.TempDir(), "missing")))
}
