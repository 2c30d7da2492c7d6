// Package config handles configuration for the trust layer, including
// defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the trust layer.
//
// Fields:
//   - DatabaseDSN: PostgreSQL DSN for the identity store; empty selects
//     the in-memory store.
//   - TokenSecret: HMAC secret for signing bearer tokens (HS256). Do not
//     use test defaults in prod.
//   - TokenValidityDuration: bearer token lifetime.
//   - SessionTTL: how long a pending login attempt stays valid.
//   - SweepInterval: how often expired login sessions are purged.
//   - FakeChallengeKey: when set, unknown users receive decoy login
//     challenges derived from this key instead of an error.
type Config struct {
	DatabaseDSN           string
	TokenSecret           string
	TokenValidityDuration time.Duration
	SessionTTL            time.Duration
	SweepInterval         time.Duration
	FakeChallengeKey      string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = ""
	c.TokenSecret = "secretKey"
	c.TokenValidityDuration = 15 * time.Minute
	c.SessionTTL = 5 * time.Minute
	c.SweepInterval = 1 * time.Minute
	c.FakeChallengeKey = ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
