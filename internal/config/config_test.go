package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, c.DatabaseDSN, "")
	assert.Equal(t, c.TokenSecret, "secretKey")
	assert.Equal(t, c.TokenValidityDuration, 15*time.Minute)
	assert.Equal(t, c.SessionTTL, 5*time.Minute)
	assert.Equal(t, c.SweepInterval, 1*time.Minute)
	assert.Equal(t, c.FakeChallengeKey, "")
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Equal(t, c.TokenSecret, "secretKey")
	assert.Equal(t, c.TokenValidityDuration, 15*time.Minute)
	assert.Equal(t, c.SessionTTL, 5*time.Minute)
	assert.Equal(t, c.SweepInterval, 1*time.Minute)
}
