package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: 9090
mysql:
  host: db.local
  port: 3306
  user: app
  password: secret
  database: allowance
kafka:
  brokers: ["k1:9092", "k2:9092"]
business:
  max_retry_count: 3
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_FileValuesAndDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.local", cfg.MySQL.Host)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 3, cfg.Business.MaxRetryCount)

	// 未配置的项使用默认值
	assert.Equal(t, "allowance_event", cfg.Kafka.Topic.AllowanceEvent)
	assert.Equal(t, 30, cfg.Business.LockMaxRetries)
	assert.Equal(t, 100, cfg.Business.OutboxIntervalMs)
	assert.Equal(t, int64(1), cfg.Business.WorkerID)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv("ALLOWANCE_MYSQL_HOST", "override.local")
	t.Setenv("ALLOWANCE_SERVER_PORT", "7070")

	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "override.local", cfg.MySQL.Host)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
