package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/serpcluster-cli/internal/core/domain"
)

func TestStore_SetAndGet(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("api_key", "secret-key"))
	require.NoError(t, store.Set("min_common_links", "6"))

	assert.Equal(t, "secret-key", store.APIKey())
	assert.Equal(t, 6, store.MinCommonLinks())

	value, ok := store.Get("min_common_links")
	require.True(t, ok)
	assert.Equal(t, "6", value)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("api_key", "secret-key"))
	require.NoError(t, store.Set("location", "United States"))
	require.NoError(t, store.Set("keyword_column", "Query"))

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "secret-key", reopened.APIKey())
	assert.Equal(t, "Query", reopened.KeywordColumn())
	assert.Equal(t, domain.SearchParameters{Location: "United States"}, reopened.DefaultParameters())
}

func TestStore_ColumnDefaults(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "Keyword", store.KeywordColumn())
	assert.Equal(t, "Volume", store.VolumeColumn())
}

func TestStore_PollBudget(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	interval, maxInterval, timeout := store.PollBudget()
	assert.Empty(t, interval)
	assert.Empty(t, maxInterval)
	assert.Empty(t, timeout)

	require.NoError(t, store.Set("poll_interval", "5s"))
	require.NoError(t, store.Set("poll_timeout", "30m"))

	interval, _, timeout = store.PollBudget()
	assert.Equal(t, "5s", interval)
	assert.Equal(t, "30m", timeout)
}

func TestStore_RejectsUnknownKey(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	err = store.Set("not_a_key", "value")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not_a_key")

	_, ok := store.Get("not_a_key")
	assert.False(t, ok)
}

func TestStore_RejectsNonIntegerMinCommonLinks(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Set("min_common_links", "four"))
}

func TestStore_FilePermissions(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("api_key", "secret-key"))

	info, err := os.Stat(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
