package media

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *LocalStorage {
	t.Helper()

	store, err := NewLocalStorage(t.TempDir(), map[AssetType]string{
		AssetTypeUpload: "uploads",
	})
	require.NoError(t, err)
	return store
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	relPath, err := store.Save(AssetTypeUpload, "", "1748000000-42-leaf.jpg", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/1748000000-42-leaf.jpg", relPath)

	reader, info, err := store.Get(relPath)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
	assert.Equal(t, int64(len("image-bytes")), info.Size())
}

func TestSaveGeneratesUUIDFilenameWithoutHint(t *testing.T) {
	store := setupTestStore(t)

	relPath, err := store.Save(AssetTypeUpload, "", "", strings.NewReader("data"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(relPath, "uploads/"))
	filename := strings.TrimPrefix(relPath, "uploads/")
	assert.Len(t, filename, 36, "generated filename should be a UUID")
}

func TestSaveRejectsTraversalFilenames(t *testing.T) {
	store := setupTestStore(t)

	for _, name := range []string{"../escape.jpg", "..", ".", "sub/escape.jpg"} {
		_, err := store.Save(AssetTypeUpload, "", name, strings.NewReader("data"))
		assert.Error(t, err, "filename %q should be rejected", name)
	}
}

func TestSaveAcceptsDottedFilenames(t *testing.T) {
	store := setupTestStore(t)

	relPath, err := store.Save(AssetTypeUpload, "", "1748000000-42-photo..jpg", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/1748000000-42-photo..jpg", relPath)

	exists, err := store.Exists(relPath)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestExists(t *testing.T) {
	store := setupTestStore(t)

	exists, err := store.Exists("uploads/nope.jpg")
	require.NoError(t, err)
	assert.False(t, exists)

	relPath, err := store.Save(AssetTypeUpload, "", "yes.jpg", strings.NewReader("data"))
	require.NoError(t, err)

	exists, err = store.Exists(relPath)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := setupTestStore(t)

	relPath, err := store.Save(AssetTypeUpload, "", "bye.jpg", strings.NewReader("data"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(relPath))
	require.NoError(t, store.Delete(relPath), "deleting an absent artifact succeeds")

	exists, err := store.Exists(relPath)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGetFullPathRejectsEscapes(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetFullPath("../../etc/passwd")
	assert.Error(t, err)
}

func TestEnsureDirCreatesAssetDirectory(t *testing.T) {
	store := setupTestStore(t)

	dir, err := store.EnsureDir(AssetTypeUpload)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
