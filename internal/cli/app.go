// Package cli implements a local REPL for exercising the trust layer:
// registration, SRP login, message encryption and group-key
// distribution, all against the configured identity store.
package cli

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/crypto/curve25519"

	"github.com/dmitrijs2005/chattrust/internal/config"
	"github.com/dmitrijs2005/chattrust/internal/envelope"
	"github.com/dmitrijs2005/chattrust/internal/groupkey"
	"github.com/dmitrijs2005/chattrust/internal/identity"
	"github.com/dmitrijs2005/chattrust/internal/logging"
	"github.com/dmitrijs2005/chattrust/internal/signature"
	"github.com/dmitrijs2005/chattrust/internal/srp"
)

// localKeys holds the keypairs a user of this process controls. A real
// client would keep these in its own storage; the REPL keeps them in
// memory for the lifetime of the session.
type localKeys struct {
	box    []byte // X25519 private key
	boxPub []byte
	sig    *signature.KeyPair
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	identities  identity.Store
	auth        *srp.Authenticator
	cipher      *envelope.Cipher
	distributor *groupkey.Distributor

	keyring map[string]*localKeys
	out     io.Writer
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	var ids identity.Store
	if cfg.DatabaseDSN != "" {
		pg, err := identity.NewPostgresStore(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("identity store init: %w", err)
		}
		ids = pg
	} else {
		ids = identity.NewInMemoryStore()
	}

	sessions := srp.NewInMemorySessionStore(cfg.SessionTTL, nil)

	var opts []srp.Option
	if cfg.FakeChallengeKey != "" {
		opts = append(opts, srp.WithFakeChallenges([]byte(cfg.FakeChallengeKey)))
	}
	auth := srp.NewAuthenticator(ids, sessions, logger, opts...)
	auth.StartSweeper(ctx, cfg.SweepInterval)

	cipher, err := envelope.New(envelope.DefaultSuite, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		config:      cfg,
		logger:      logger,
		identities:  ids,
		auth:        auth,
		cipher:      cipher,
		distributor: groupkey.NewDistributor(cipher),
		keyring:     make(map[string]*localKeys),
		out:         os.Stdout,
	}, nil
}

// generateKeys creates the long-term keypairs for a freshly registered
// user.
func (a *App) generateKeys(username string) (*localKeys, error) {
	boxPriv := make([]byte, envelope.KeySize)
	if _, err := io.ReadFull(rand.Reader, boxPriv); err != nil {
		return nil, err
	}
	boxPriv[0] &= 248
	boxPriv[31] &= 127
	boxPriv[31] |= 64

	boxPub, err := curve25519.X25519(boxPriv, curve25519.Basepoint)
	if err != nil {
		return nil, err
	}

	sig, err := signature.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	keys := &localKeys{box: boxPriv, boxPub: boxPub, sig: sig}
	a.keyring[username] = keys
	return keys, nil
}

func (a *App) keysFor(username string) (*localKeys, error) {
	keys, ok := a.keyring[username]
	if !ok {
		return nil, fmt.Errorf("no local keys for %q; register the user first", username)
	}
	return keys, nil
}
