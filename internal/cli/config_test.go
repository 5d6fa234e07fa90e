package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/genuinity/internal/model"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefaultConfig_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	v := viper.New()
	setDefaults(v, &model.Config{})
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	var got model.Config
	require.NoError(t, v.Unmarshal(&got))

	want := model.DefaultConfig()
	assert.Equal(t, want.Data, got.Data)
	assert.Equal(t, want.Classifier, got.Classifier)
	assert.Equal(t, want.Embedding.Provider, got.Embedding.Provider)
	assert.Equal(t, 30*time.Second, got.Embedding.Timeout)
	assert.Equal(t, want.Cache, got.Cache)
	assert.Equal(t, want.Server.Addr, got.Server.Addr)
	assert.Empty(t, got.Embedding.APIKey)
}

func TestWriteDefaultConfig_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keep: me\n"), 0644))

	err := writeDefaultConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep: me\n", string(data))
}

func TestSetDefaults_EnvOverrides(t *testing.T) {
	t.Setenv("GENUINITY_EMBEDDING_PROVIDER", "ollama")
	t.Setenv("GENUINITY_CONCURRENCY_WORKERS", "3")

	v := viper.New()
	setDefaults(v, model.DefaultConfig())
	v.SetEnvPrefix("GENUINITY")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	cfg := model.DefaultConfig()
	require.NoError(t, v.Unmarshal(cfg))
	assert.Equal(t, "ollama", cfg.Embedding.Provider)
	assert.Equal(t, 3, cfg.Concurrency.Workers)
	assert.Equal(t, "data", cfg.Data.Dir)
}
