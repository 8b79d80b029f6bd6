package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNew(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 8080

[auth]
secret = "from-file"
token_ttl = "90m"
bcrypt_cost = 10

[storage]
driver = "postgres"

[storage.postgres]
dbname = "auth-test"
`)
	cfg, err := New(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "from-file", cfg.Auth.Secret)
	assert.Equal(t, 90*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "user", cfg.Auth.DefaultRole)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "auth-test", cfg.Storage.Postgres.DBName)
	assert.Equal(t, 5432, cfg.Storage.Postgres.Port)
}

func TestNewEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[auth]
secret = "from-file"
`)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("BCRYPT_ROUNDS", "12")

	cfg, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.Secret)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{
			name:    "missing secret",
			content: "[auth]\nsecret = \"\"\n",
		},
		{
			name:    "bad ttl",
			content: "[auth]\nsecret = \"s\"\ntoken_ttl = \"one day\"\n",
		},
		{
			name:    "negative ttl",
			content: "[auth]\nsecret = \"s\"\ntoken_ttl = \"-1h\"\n",
		},
		{
			name:    "cost too high",
			content: "[auth]\nsecret = \"s\"\nbcrypt_cost = 99\n",
		},
		{
			name:    "bad cost env",
			content: "[auth]\nsecret = \"s\"\n",
			env:     map[string]string{"BCRYPT_ROUNDS": "eight"},
		},
		{
			name:    "default role not listed",
			content: "[auth]\nsecret = \"s\"\ndefault_role = \"guest\"\n",
		},
		{
			name:    "unknown driver",
			content: "[auth]\nsecret = \"s\"\n[storage]\ndriver = \"mysql\"\n",
		},
		{
			name:    "tls key without cert",
			content: "[server]\ntls_key = \"key.pem\"\n[auth]\nsecret = \"s\"\n",
		},
		{
			name:    "broken toml",
			content: "[auth\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			t.Setenv("BCRYPT_ROUNDS", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := New(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}
