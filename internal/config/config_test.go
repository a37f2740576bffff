package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cleanEnv points ENV_FILE at nothing and clears the variables Load reads.
func cleanEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", "")
	for _, k := range []string{"DB_DRIVER", "DB_PATH", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASS", "DB_NAME",
		"SECRET_KEY", "ALGORITHM", "TOKEN_TTL_MINUTES", "SU_EMAIL", "HTTP_ADDRESS", "GRPC_ADDRESS",
		"COOKIE_NAME", "COOKIE_SECURE", "BCRYPT_COST", "LOG_LEVEL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadWithDefaults_Succeeds(t *testing.T) {
	cleanEnv(t)
	cfg, err := LoadWithDefaults()
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.HTTP.Address)
	assert.NotEmpty(t, cfg.Database.Path)
	assert.NotEmpty(t, cfg.Auth.JWTSecret)
	assert.Equal(t, "HS256", cfg.Auth.Algorithm)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, "ref_access_token", cfg.Auth.CookieName)
	assert.Equal(t, "app.db", cfg.Database.DSN())
}

func TestLoad_RequiresSecret(t *testing.T) {
	cleanEnv(t)
	t.Setenv("DB_PATH", "test.db")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("SECRET_KEY", "x")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "x", cfg.Auth.JWTSecret)
	assert.NotContains(t, cfg.String(), "x ***")
}

func TestLoad_ParsesValues(t *testing.T) {
	cleanEnv(t)
	t.Setenv("SECRET_KEY", "s")
	t.Setenv("ALGORITHM", "hs512")
	t.Setenv("TOKEN_TTL_MINUTES", "5")
	t.Setenv("SU_EMAIL", `["root@x.com", "Admin@X.com"]`)
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASS", "p@ss")
	t.Setenv("DB_NAME", "ads")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "HS512", cfg.Auth.Algorithm)
	assert.Equal(t, 5*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"root@x.com", "Admin@X.com"}, cfg.Auth.SuperuserEmails)
	assert.True(t, cfg.Auth.IsSuperuserEmail("admin@x.com"))
	assert.False(t, cfg.Auth.IsSuperuserEmail("bob@x.com"))
	assert.True(t, cfg.Auth.CookieSecure)
	assert.Equal(t, "postgres://app:p%40ss@db:6543/ads", cfg.Database.DSN())
}

func TestLoad_RejectsBadValues(t *testing.T) {
	for key, val := range map[string]string{
		"DB_PORT":           "abc",
		"TOKEN_TTL_MINUTES": "0",
		"COOKIE_SECURE":     "maybe",
		"DB_DRIVER":         "oracle",
		"ALGORITHM":         "RS256",
	} {
		t.Run(key, func(t *testing.T) {
			cleanEnv(t)
			t.Setenv("SECRET_KEY", "s")
			t.Setenv(key, val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	cleanEnv(t)
	path := filepath.Join(t.TempDir(), ".env-test")
	require.NoError(t, os.WriteFile(path, []byte("SECRET_KEY=from-file\nHTTP_ADDRESS=:9999\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("HTTP_ADDRESS", ":7000")
	os.Unsetenv("SECRET_KEY")
	t.Cleanup(func() { os.Unsetenv("SECRET_KEY") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, ":7000", cfg.HTTP.Address, "real environment wins over the file")
}
