package users

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiskPictureStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewDiskPictureStore(dir)
	require.NoError(t, err)

	name, err := store.Store([]byte("not really a png"), ".PNG")
	require.NoError(t, err)
	require.Equal(t, ".png", filepath.Ext(name))

	data, err := ioutil.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	require.Equal(t, []byte("not really a png"), data)
}

func TestDiskPictureStoreUniqueNames(t *testing.T) {
	t.Parallel()

	store, err := NewDiskPictureStore(t.TempDir())
	require.NoError(t, err)

	first, err := store.Store([]byte("a"), ".jpg")
	require.NoError(t, err)
	second, err := store.Store([]byte("b"), ".jpg")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestDiskPictureStoreRejectsUnsupportedFormat(t *testing.T) {
	t.Parallel()

	store, err := NewDiskPictureStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Store([]byte("gif89a"), ".gif")
	require.ErrorIs(t, err, ErrUnsupportedPicture)
}
