package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 800, cfg.Chunker.ChunkSize)
	assert.Equal(t, 200, cfg.Chunker.Overlap)
	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.Equal(t, 10, cfg.Retrieval.TopK)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.Server.Addr = ":9090"
	cfg.Embedder.Model = "nomic-embed-text"
	cfg.Embedder.Dimension = 768
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", got.Server.Addr)
	assert.Equal(t, "nomic-embed-text", got.Embedder.Model)
	assert.Equal(t, 768, got.Embedder.Dimension)
	assert.Equal(t, 800, got.Chunker.ChunkSize, "unset fields still get defaults")
}
