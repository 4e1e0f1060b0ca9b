package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite3", cfg.Database.Dialect)
	assert.Equal(t, 60*time.Second, cfg.Advisory.Timeout)
	assert.Equal(t, 7*24*time.Hour, cfg.POS.Window)
}

func TestLoadYAMLAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
database:
  dialect: postgres
  url: postgres://localhost/menu
llm:
  provider: openai
  model: gpt-4o
advisory:
  timeout: 30s
pos:
  base_urls:
    square: https://connect.squareupsandbox.com
`), 0o600))

	t.Setenv("JWT_SECRET", "shh")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Dialect)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "shh", cfg.Auth.JWTSecret)
	assert.Equal(t, 30*time.Second, cfg.Advisory.Timeout)
	assert.Equal(t, "https://connect.squareupsandbox.com", cfg.POS.BaseURLs["square"])
}

func TestValidateRejectsUnknownDialect(t *testing.T) {
	cfg := Default()
	cfg.Database.Dialect = "mssql"

	assert.Error(t, cfg.Validate())
}
