package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	configfile "github.com/custodia-labs/serpcluster-cli/internal/adapters/driven/config/file"
)

func TestBuildPipeline_NoHistorySkipsStore(t *testing.T) {
	store, err := configfile.NewStore(t.TempDir())
	require.NoError(t, err)

	prevConfig, prevRun, prevNoHistory := configStore, runStore, runNoHistory
	t.Cleanup(func() {
		configStore, runStore, runNoHistory = prevConfig, prevRun, prevNoHistory
	})
	configStore = store
	runStore = nil
	runNoHistory = true

	pipeline, err := buildPipeline("test-key")
	require.NoError(t, err)
	assert.NotNil(t, pipeline)

	// No history database is opened for a --no-history run.
	assert.Nil(t, runStore)
}
