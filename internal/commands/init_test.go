package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/meridian-dr/meridian/pkg/types"
)

func TestRunInit_WritesStarterConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-dr-project")
	require.NoError(t, runInit(dir))

	data, err := os.ReadFile(filepath.Join(dir, "meridian.yaml"))
	require.NoError(t, err)

	var cfg types.ProjectConfig
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, "us-east-1", cfg.Regions.Source)
	assert.Equal(t, "us-west-2", cfg.Regions.Target)
	assert.Equal(t, "dr-backup-metadata", cfg.Tables.Metadata)
	assert.InDelta(t, 95.0, cfg.Thresholds.MinConsistencyScore, 0.001)
}

func TestRunInit_RefusesOverwrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "existing")
	require.NoError(t, runInit(dir))

	err := runInit(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
