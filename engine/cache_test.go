package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProgramCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.loom")
	require.NoError(t, os.WriteFile(path, []byte("x\n<# if true { #>\n<# } #>\ny"), 0o644))

	cache := NewProgramCache()

	first, err := cache.Get(path, nil)
	require.NoError(t, err)
	second, err := cache.Get(path, nil)
	require.NoError(t, err)
	require.Same(t, first, second)

	// a whitespace override compiles a distinct program
	on := true
	cleaned, err := cache.Get(path, &on)
	require.NoError(t, err)
	require.NotSame(t, first, cleaned)

	cache.Clear()
	third, err := cache.Get(path, nil)
	require.NoError(t, err)
	require.NotSame(t, first, third)
}

func TestProgramCacheMissingFile(t *testing.T) {
	_, err := NewProgramCache().Get(filepath.Join(t.TempDir(), "nope.loom"), nil)
	require.Error(t, err)
}
