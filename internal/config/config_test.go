package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "local", cfg.Env)
	require.Equal(t, ":8082", cfg.ListenAddr)
	require.Equal(t, "gemini", cfg.Models.Provider)
	require.Equal(t, "memory", cfg.Store.Backend)
	require.NotEmpty(t, cfg.Rules, "default dependency rules apply")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GENFORGE_MODELS_CODER", "gemini-2.5-pro")
	t.Setenv("GENFORGE_STORE_BACKEND", "postgres")
	t.Setenv("GENFORGE_FILTERED_PROMPTS", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "gemini-2.5-pro", cfg.Models.Coder)
	require.Equal(t, "postgres", cfg.Store.Backend)
	require.True(t, cfg.FilteredPrompts)
}

func TestLoadFrom_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genforge.yaml")
	content := `
env: staging
listen_addr: ":9000"
models:
  coder: test-coder
templates:
  .cfg: "settings for {filename}"
dependency_rules:
  - keyword: network
    tags: [sockets]
store:
  backend: s3
  s3:
    endpoint: minio:9000
    access_key: ak
    secret_key: sk
    bucket: runs
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	require.Equal(t, "staging", cfg.Env)
	require.Equal(t, ":9000", cfg.ListenAddr)
	require.Equal(t, "test-coder", cfg.Models.Coder)
	require.Equal(t, "settings for {filename}", cfg.Templates[".cfg"])
	require.Len(t, cfg.Rules, 1)
	require.Equal(t, "network", cfg.Rules[0].Keyword)
	require.Equal(t, "s3", cfg.Store.Backend)
	require.Equal(t, "minio:9000", cfg.Store.S3.Endpoint)
	require.Equal(t, "runs", cfg.Store.S3.Bucket)
}

func TestLoadFrom_BadBackend(t *testing.T) {
	t.Setenv("GENFORGE_STORE_BACKEND", "etcd")
	_, err := Load()
	require.Error(t, err)
}
