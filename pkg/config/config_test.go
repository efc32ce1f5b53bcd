package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astronomy-commons/alertdb/pkg/observability"
	"github.com/astronomy-commons/alertdb/pkg/storage"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.OpsPort)
	assert.Equal(t, storage.TypeLocalFiles, cfg.Storage.Type)
	assert.True(t, cfg.Observability.MetricsEnabled)
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alertdb.yaml")
	doc := `
server:
  port: "8080"
  read_timeout: 5s
storage:
  type: s3
  s3_bucket: alert-archive
  s3_region: us-west-2
observability:
  log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, storage.TypeS3, cfg.Storage.Type)
	assert.Equal(t, "alert-archive", cfg.Storage.S3Bucket)
	assert.Equal(t, "us-west-2", cfg.Storage.S3Region)
	assert.Equal(t, observability.DebugLevel, cfg.LogLevel())
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alertdb.yaml")
	doc := `
storage:
  type: local-files
  local_root: /from/file
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	t.Setenv("ALERTDB_LOCAL_ROOT", "/from/env")
	t.Setenv("ALERTDB_PORT", "6000")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/from/env", cfg.Storage.LocalRoot)
	assert.Equal(t, "6000", cfg.Server.Port)
}

func TestLoadEnvOnly(t *testing.T) {
	t.Setenv("ALERTDB_BACKEND", "google-cloud")
	t.Setenv("ALERTDB_GCP_PROJECT", "lsst-alerts")
	t.Setenv("ALERTDB_GCS_BUCKET", "alert-packets")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, storage.TypeGoogleCloud, cfg.Storage.Type)
	assert.Equal(t, "lsst-alerts", cfg.Storage.GCPProject)
}

func TestValidate(t *testing.T) {
	t.Run("missing backend config", func(t *testing.T) {
		cfg := DefaultConfig()
		// local-files without a root is a startup error.
		assert.Error(t, cfg.Validate())
	})

	t.Run("ports must differ", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Storage.LocalRoot = "/var/alertdb"
		cfg.Server.OpsPort = cfg.Server.Port
		assert.Error(t, cfg.Validate())
	})

	t.Run("valid local-files", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Storage.LocalRoot = "/var/alertdb"
		assert.NoError(t, cfg.Validate())
	})
}
