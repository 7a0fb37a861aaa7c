package fs

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSecureDirAlreadyHere(t *testing.T) {
	tmpPath := path.Join(t.TempDir(), "config")
	require.NoError(t, os.Mkdir(tmpPath, 0700))
	p, err := CreateSecureFolder(tmpPath)
	require.NoError(t, err)
	require.Equal(t, tmpPath, p)
}

func TestSecureDirAlreadyHereReadable(t *testing.T) {
	tmpPath := path.Join(t.TempDir(), "config")
	require.NoError(t, os.Mkdir(tmpPath, 0700))
	for _, perm := range []os.FileMode{0755, 0750, 0705} {
		require.NoError(t, os.Chmod(tmpPath, perm))
		p, err := CreateSecureFolder(tmpPath)
		require.NoError(t, err, "perm %#o", perm)
		require.Equal(t, tmpPath, p)
	}
}

func TestSecureDirAlreadyHereWrongPerm(t *testing.T) {
	tmpPath := path.Join(t.TempDir(), "config")
	require.NoError(t, os.Mkdir(tmpPath, 0700))
	for _, perm := range []os.FileMode{0777, 0770, 0702} {
		require.NoError(t, os.Chmod(tmpPath, perm))
		_, err := CreateSecureFolder(tmpPath)
		require.Error(t, err, "perm %#o", perm)
	}

	file := path.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0600))
	_, err := CreateSecureFolder(file)
	require.Error(t, err)
}

func TestSecureFile(t *testing.T) {
	dir := t.TempDir()
	p, err := CreateSecureFolder(path.Join(dir, "a", "b"))
	require.NoError(t, err)

	fd, err := CreateSecureFile(path.Join(p, "secret"))
	require.NoError(t, err)
	_, err = fd.WriteString("x")
	require.NoError(t, err)
	require.NoError(t, fd.Close())

	info, err := os.Stat(path.Join(p, "secret"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
	require.True(t, FileExists(p, "secret"))
	require.False(t, FileExists(p, "other"))

	files, err := Files(p)
	require.NoError(t, err)
	require.Equal(t, []string{path.Join(p, "secret")}, files)
}
