package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysOnlyPresentFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tailforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("heap_head: 0x4000\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, Default().SizeWeight, cfg.SizeWeight)
	assert.Equal(t, Default().CycleWeight, cfg.CycleWeight)
	assert.NotEqual(t, Default().HeapHead, cfg.HeapHead)
}

func TestWeightsAndBumpContractDeriveFromConfig(t *testing.T) {
	cfg := Config{SizeWeight: 5, CycleWeight: 2, HeapHead: 0x9000}
	assert.Equal(t, uint64(5), cfg.Weights().Size)
	assert.Equal(t, uint64(2), cfg.Weights().Cycles)
	assert.Equal(t, uint32(0x9000), cfg.BumpContract().HeapHead)
}
