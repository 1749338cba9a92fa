package persistence

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalkit/internal/models"
	"signalkit/internal/testutil"
)

func seededStore() models.OptionStoreInterface {
	store := models.NewOptionStore()
	store.Set("signalkit_settings", []byte(`{"follow":{"enabled":true}}`))
	store.Set("signalkit_analytics", []byte(`{"follow":{"impressions":3,"clicks":1}}`))
	return store
}

func TestFileManager_SaveToFile_AtomicWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.dat")
	fm := NewFileManager(&testutil.MockCompressor{}, seededStore(), &testutil.MockLogger{})

	require.NoError(t, fm.SaveToFile(path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileManager_SaveToFile_Envelope(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.dat")
	fm := NewFileManager(&testutil.MockCompressor{}, seededStore(), &testutil.MockLogger{})
	require.NoError(t, fm.SaveToFile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var snap snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, snapshotVersion, snap.Version)
	assert.False(t, snap.SavedAt.IsZero())
	assert.Len(t, snap.Options, 2)
	assert.JSONEq(t, `{"follow":{"enabled":true}}`, string(snap.Options["signalkit_settings"]))
}

func TestFileManager_LoadFromFile_FileNotExist(t *testing.T) {
	store := seededStore()
	fm := NewFileManager(&testutil.MockCompressor{}, store, &testutil.MockLogger{})

	assert.NoError(t, fm.LoadFromFile("/nonexistent/path/options.dat"))
	assert.Equal(t, 2, store.Len())
}

func TestFileManager_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roundtrip.dat")
	comp, err := NewZstdCompressor()
	require.NoError(t, err)
	logger := &testutil.MockLogger{}

	require.NoError(t, NewFileManager(comp, seededStore(), logger).SaveToFile(path))

	restored := models.NewOptionStore()
	restored.Set("stale", []byte(`1`))
	fm := NewFileManager(comp, restored, logger)
	require.NoError(t, fm.LoadFromFile(path))
	fm.Close()

	assert.Equal(t, 2, restored.Len())
	_, ok := restored.Get("stale")
	assert.False(t, ok)
	raw, ok := restored.Get("signalkit_analytics")
	require.True(t, ok)
	assert.JSONEq(t, `{"follow":{"impressions":3,"clicks":1}}`, string(raw))
}

func TestFileManager_LoadFromFile_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.dat")
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0644))

	fm := NewFileManager(&testutil.MockCompressor{}, models.NewOptionStore(), &testutil.MockLogger{})
	assert.Error(t, fm.LoadFromFile(path))
}

func TestFileManager_LoadFromFile_UnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.dat")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":99,"options":{"a":1}}`), 0644))

	store := models.NewOptionStore()
	logger := &testutil.MockLogger{}
	fm := NewFileManager(&testutil.MockCompressor{}, store, logger)

	err := fm.LoadFromFile(path)
	assert.ErrorIs(t, err, ErrUnknownSnapshot)
	assert.Zero(t, store.Len())
	assert.Equal(t, 1, logger.Count("warn"))
}

func TestFileManager_CompressError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "err.dat")
	comp := &testutil.MockCompressor{
		CompressFn: func(b []byte) ([]byte, error) {
			return nil, errors.New("compress failed")
		},
	}
	fm := NewFileManager(comp, seededStore(), &testutil.MockLogger{})

	err := fm.SaveToFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compress failed")
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileManager_DecompressError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dec.dat")
	require.NoError(t, os.WriteFile(path, []byte("some data"), 0644))

	comp := &testutil.MockCompressor{
		DecompressFn: func(b []byte) ([]byte, error) {
			return nil, errors.New("decompress failed")
		},
	}
	fm := NewFileManager(comp, models.NewOptionStore(), &testutil.MockLogger{})

	err := fm.LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decompress failed")
}

func TestFileManager_Close(t *testing.T) {
	comp := &testutil.MockCompressor{}
	NewFileManager(comp, models.NewOptionStore(), &testutil.MockLogger{}).Close()
	assert.True(t, comp.Closed)
}
