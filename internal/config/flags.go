package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/chattrust/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN (empty selects the in-memory store)
//	-s string   token HMAC secret key
//	-t int      bearer token validity, minutes
//	-l int      login session TTL, minutes
//	-w int      session sweep interval, minutes
//	-f string   fake-challenge HMAC key (empty disables decoys)
//
// The function first filters os.Args to only the flags it recognizes
// using flagx.FilterArgs, avoiding collisions with other components.
// Duration flags are accepted as integers in minutes and then converted
// to time.Duration values.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-s", "-t", "-l", "-w", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.TokenSecret, "s", config.TokenSecret, "token secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")
	sessionTTL := fs.Int("l", int(config.SessionTTL.Minutes()), "login session TTL (in minutes)")
	sweepInterval := fs.Int("w", int(config.SweepInterval.Minutes()), "session sweep interval (in minutes)")

	fs.StringVar(&config.FakeChallengeKey, "f", config.FakeChallengeKey, "fake challenge key")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
	config.SweepInterval = time.Duration(*sweepInterval) * time.Minute
}
