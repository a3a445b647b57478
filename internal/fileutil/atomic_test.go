package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomicStreamsContent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "store.bin")

	err := WriteAtomic(target, 0o644, func(w io.Writer) error {
		for i := 0; i < 3; i++ {
			if _, err := fmt.Fprintf(w, "line %d\n", i); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "line 0\nline 1\nline 2\n", string(data))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not remain")
}

func TestWriteAtomicKeepsPreviousFileOnFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "checkpoint.json")
	require.NoError(t, WriteFileAtomic(target, []byte("old"), 0o644))

	boom := errors.New("encoder failed")
	err := WriteAtomic(target, 0o644, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFileAtomicOverwrite(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "test.txt")
	require.NoError(t, WriteFileAtomic(target, []byte("initial"), 0o644))
	require.NoError(t, WriteFileAtomic(target, []byte("updated content"), 0o600))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "updated content", string(data))
}
