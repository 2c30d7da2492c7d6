package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/chattrust/internal/flagx"
	"github.com/dmitrijs2005/chattrust/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies
// on timex.Duration so JSON can specify intervals either as strings like
// "5m" or as integer nanoseconds. After parsing, values are copied into
// the runtime Config (which uses time.Duration).
type JsonConfig struct {
	DatabaseDSN           string         `json:"database_dsn"`
	TokenSecret           string         `json:"token_secret"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	SessionTTL            timex.Duration `json:"session_ttl"`
	SweepInterval         timex.Duration `json:"sweep_interval"`
	FakeChallengeKey      string         `json:"fake_challenge_key"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The lookup order for the JSON file path is the -c or -config
// command-line flags; if neither is set, no JSON file is loaded. If the
// file cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.DatabaseDSN = c.DatabaseDSN
	config.TokenSecret = c.TokenSecret
	config.TokenValidityDuration = time.Duration(c.TokenValidityDuration.Duration)
	config.SessionTTL = time.Duration(c.SessionTTL.Duration)
	config.SweepInterval = time.Duration(c.SweepInterval.Duration)
	config.FakeChallengeKey = c.FakeChallengeKey
}
