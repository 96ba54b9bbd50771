package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDatabaseURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty stays empty", "", ""},
		{
			"legacy scheme rewritten",
			"postgres://u:p@db.example.com:5432/jwfoods",
			"postgresql://u:p@db.example.com:5432/jwfoods",
		},
		{
			"modern scheme untouched",
			"postgresql://u:p@db.example.com:5432/jwfoods",
			"postgresql://u:p@db.example.com:5432/jwfoods",
		},
		{
			"explicit sslmode preserved",
			"postgresql://u:p@localhost:5432/jwfoods?sslmode=require",
			"postgresql://u:p@localhost:5432/jwfoods?sslmode=require",
		},
		{
			"localhost gets sslmode disable",
			"postgresql://u:p@localhost:5432/jwfoods",
			"postgresql://u:p@localhost:5432/jwfoods?sslmode=disable",
		},
		{
			"localhost with existing params",
			"postgres://u:p@127.0.0.1:5432/jwfoods?connect_timeout=5",
			"postgresql://u:p@127.0.0.1:5432/jwfoods?connect_timeout=5&sslmode=disable",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeDatabaseURL(tc.in))
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "SQLITE_PATH", "PORT", "SECRET_KEY", "COOKIE_SECURE"} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, "jwfoods.db", cfg.SQLitePath)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "dev-secret", cfg.SecretKey)
	assert.False(t, cfg.CookieSecure)
}

func TestLoadNormalizesURL(t *testing.T) {
	t.Setenv("DATABASE_URL", " postgres://u:p@db.example.com/jwfoods ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgresql://u:p@db.example.com/jwfoods", cfg.DatabaseURL)
}
