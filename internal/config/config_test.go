// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	c, err := Parse("")
	require.NoError(t, err)

	assert.Equal(t, DriverJSON, c.Database.Driver)
	assert.Equal(t, "data/db.json", c.Database.Path)
	assert.Equal(t, 3001, c.Server.Port)
	assert.Equal(t, TokenModeMock, c.Auth.TokenMode)
	assert.Equal(t, 24*time.Hour, c.Auth.TokenTTL)
	assert.False(t, c.Auth.Enforce)
	assert.False(t, c.Redis.Enabled())
	assert.Contains(t, c.CORS.AllowedMethods, "PATCH")
	assert.Equal(t, "0.0.0.0:3001", c.Server.Address())
}

func TestParseFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := []byte(`
server:
  port: 4000
database:
  driver: sqlite
  url: file:lms.db
auth:
  enforce: true
`)
	require.NoError(t, os.WriteFile(path, yamlBody, 0o600))

	t.Setenv("PORT", "5000")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("AUTH_TOKEN_TTL", "2h")

	c, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, 5000, c.Server.Port)
	assert.Equal(t, DriverSQLite, c.Database.Driver)
	assert.True(t, c.Database.IsSQL())
	assert.True(t, c.Auth.Enforce)
	assert.Equal(t, 2*time.Hour, c.Auth.TokenTTL)
	assert.True(t, c.Redis.Enabled())
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"DATABASE_DRIVER": "mongo"}},
		{"sql without url", map[string]string{"DATABASE_DRIVER": "postgres"}},
		{"unknown token mode", map[string]string{"AUTH_TOKEN_MODE": "paseto"}},
		{"production without enforce", map[string]string{"ENVIRONMENT": "production"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Parse("")
			assert.Error(t, err)
		})
	}
}
