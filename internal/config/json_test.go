package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"database_dsn":            "postgres://localhost/trust",
		"token_secret":            "my_secret_key",
		"token_validity_duration": "30m",
		"session_ttl":             "5m",
		"sweep_interval":          "1m",
		"fake_challenge_key":      "decoy-key",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "postgres://localhost/trust", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.TokenSecret)
		assert.Equal(t, 30*time.Minute, cfg.TokenValidityDuration)
		assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
		assert.Equal(t, 1*time.Minute, cfg.SweepInterval)
		assert.Equal(t, "decoy-key", cfg.FakeChallengeKey)
	})

	t.Run("no config flag leaves values untouched", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			DatabaseDSN: "keep-me",
			TokenSecret: "keep-me-too",
		}
		parseJson(cfg)

		assert.Equal(t, "keep-me", cfg.DatabaseDSN)
		assert.Equal(t, "keep-me-too", cfg.TokenSecret)
	})

	t.Run("panics on missing file", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "does-not-exist.json")}

		cfg := &Config{}
		assert.Panics(t, func() { parseJson(cfg) })
	})
}
