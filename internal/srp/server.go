package srp

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/chattrust/internal/common"
	"github.com/dmitrijs2005/chattrust/internal/identity"
	"github.com/dmitrijs2005/chattrust/internal/kdf"
	"github.com/dmitrijs2005/chattrust/internal/logging"
)

// sessionKeyContext is the domain-separation string for deriving the
// session key from the shared SRP secret.
const sessionKeyContext = "srp-session-key"

// DefaultSessionTTL bounds how long a login attempt may stay pending.
const DefaultSessionTTL = 5 * time.Minute

// Challenge is the server's answer to a login request.
type Challenge struct {
	SessionID             string
	Salt                  []byte
	ServerPublicEphemeral []byte
}

// Result is returned on successful login completion. ServerProof lets the
// client authenticate the server in turn (mutual authentication).
type Result struct {
	SessionKey  []byte
	ServerProof []byte
}

// Authenticator runs the server side of the SRP protocol. All methods are
// safe for concurrent use; the only shared mutable state is the injected
// session store.
type Authenticator struct {
	group       Group
	identities  identity.Store
	sessions    SessionStore
	logger      logging.Logger
	fakeSaltKey []byte
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithFakeChallenges makes BeginLogin return an indistinguishable decoy
// challenge for unknown users instead of ErrUnknownUser, hiding account
// existence. The salt of a decoy is derived deterministically from
// saltKey and the username so repeated probes see a stable value, like a
// real account would. Completing a decoy session always fails.
func WithFakeChallenges(saltKey []byte) Option {
	return func(a *Authenticator) {
		a.fakeSaltKey = saltKey
	}
}

// NewAuthenticator wires the authenticator to its identity store and
// session store. The group and hash are fixed here and never accepted
// from per-call input.
func NewAuthenticator(identities identity.Store, sessions SessionStore, logger logging.Logger, opts ...Option) *Authenticator {
	a := &Authenticator{
		group:      RFC3526Group2048,
		identities: identities,
		sessions:   sessions,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register stores (username, salt, verifier) for a new identity. It fails
// with common.ErrAlreadyRegistered if the identity already exists;
// replacing credentials is the distinct, explicit ReRegister operation.
func (a *Authenticator) Register(ctx context.Context, username string, salt, verifier []byte) error {
	if username == "" || len(salt) == 0 || len(verifier) == 0 {
		return common.ErrInvalidInput
	}

	_, err := a.identities.Get(ctx, username)
	if err == nil {
		return common.ErrAlreadyRegistered
	}
	if !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("identity lookup: %w", err)
	}

	return a.identities.Put(ctx, &identity.Identity{
		Username:    username,
		SRPSalt:     salt,
		SRPVerifier: verifier,
	})
}

// ReRegister replaces the stored credentials for an existing identity.
func (a *Authenticator) ReRegister(ctx context.Context, username string, salt, verifier []byte) error {
	if username == "" || len(salt) == 0 || len(verifier) == 0 {
		return common.ErrInvalidInput
	}

	existing, err := a.identities.Get(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUnknownUser
		}
		return fmt.Errorf("identity lookup: %w", err)
	}

	existing.SRPSalt = salt
	existing.SRPVerifier = verifier
	return a.identities.Put(ctx, existing)
}

// BeginLogin starts a login attempt: it generates the server ephemeral
// pair, stores the pending session and returns the challenge. Each call
// creates exactly one fresh session; nothing is ever reused across
// attempts.
//
// For unknown users it returns common.ErrUnknownUser, or a decoy
// challenge when fake challenges are enabled.
func (a *Authenticator) BeginLogin(ctx context.Context, username string) (*Challenge, error) {
	if username == "" {
		return nil, common.ErrInvalidInput
	}

	id, err := a.identities.Get(ctx, username)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("identity lookup: %w", err)
		}
		if a.fakeSaltKey == nil {
			return nil, common.ErrUnknownUser
		}
		return a.beginFakeLogin(username)
	}

	verifier := new(big.Int).SetBytes(id.SRPVerifier)
	return a.issueChallenge(username, id.SRPSalt, verifier, false)
}

// beginFakeLogin fabricates a challenge for a nonexistent account. The
// salt is HMAC(saltKey, username) truncated to the regular salt size, so
// probing the same username repeatedly returns the same salt; the
// verifier is random, so the proof can never match.
func (a *Authenticator) beginFakeLogin(username string) (*Challenge, error) {
	mac := hmac.New(sha256.New, a.fakeSaltKey)
	mac.Write([]byte(username))
	salt := mac.Sum(nil)[:kdf.SaltSize]

	verifier, err := a.group.generatePrivateKey()
	if err != nil {
		return nil, err
	}
	return a.issueChallenge(username, salt, verifier, true)
}

func (a *Authenticator) issueChallenge(username string, salt []byte, verifier *big.Int, fake bool) (*Challenge, error) {
	b, err := a.group.generatePrivateKey()
	if err != nil {
		return nil, err
	}

	// B = (k*v + g^b) mod N
	k := a.group.multiplier()
	gb := new(big.Int).Exp(a.group.G, b, a.group.N)
	kv := new(big.Int).Mul(k, verifier)
	bPub := new(big.Int).Mod(new(big.Int).Add(kv, gb), a.group.N)

	sessionID := uuid.NewString()
	a.sessions.Put(sessionID, &AuthSession{
		Username:              username,
		ServerEphemeralSecret: b,
		ServerEphemeralPublic: bPub,
		Salt:                  salt,
		Verifier:              verifier,
		fake:                  fake,
	})

	return &Challenge{
		SessionID:             sessionID,
		Salt:                  salt,
		ServerPublicEphemeral: a.group.Bytes(bPub),
	}, nil
}

// CompleteLogin verifies the client proof for a pending session. The
// session is consumed atomically before any verification, so a given
// session id can succeed at most once even under concurrent calls or a
// racing sweeper.
//
// It fails with common.ErrInvalidSession for unknown or expired ids and
// common.ErrProofMismatch for a bad proof; use Collapse before surfacing
// either to an external caller.
func (a *Authenticator) CompleteLogin(ctx context.Context, sessionID string, clientPublicEphemeral, clientProof []byte) (*Result, error) {
	if sessionID == "" || len(clientPublicEphemeral) == 0 || len(clientProof) == 0 {
		return nil, common.ErrInvalidInput
	}

	session, ok := a.sessions.Take(sessionID)
	if !ok {
		return nil, common.ErrInvalidSession
	}

	aPub := new(big.Int).SetBytes(clientPublicEphemeral)
	if new(big.Int).Mod(aPub, a.group.N).Sign() == 0 {
		// A mod N == 0 would force the shared secret to zero.
		return nil, common.ErrInvalidInput
	}

	key, err := a.sharedKey(session, aPub)
	if err != nil {
		return nil, err
	}

	expected := a.group.clientProof(session.Username, session.Salt, aPub, session.ServerEphemeralPublic, key)

	// Everything above runs unconditionally so the decoy-session check
	// and the proof check cannot be told apart by timing.
	match := subtle.ConstantTimeCompare(expected, clientProof)
	if session.fake {
		match = 0
	}
	if match != 1 {
		if a.logger != nil {
			a.logger.Warn(ctx, "login proof mismatch", "username", session.Username)
		}
		return nil, common.ErrProofMismatch
	}

	if a.logger != nil {
		a.logger.Info(ctx, "login completed", "username", session.Username)
	}

	return &Result{
		SessionKey:  key,
		ServerProof: a.group.serverProof(aPub, clientProof, key),
	}, nil
}

// sharedKey computes S = (A * v^u)^b mod N and expands it into the
// session key.
func (a *Authenticator) sharedKey(session *AuthSession, aPub *big.Int) ([]byte, error) {
	u := a.group.scrambler(aPub, session.ServerEphemeralPublic)

	vu := new(big.Int).Exp(session.Verifier, u, a.group.N)
	base := new(big.Int).Mod(new(big.Int).Mul(aPub, vu), a.group.N)
	s := new(big.Int).Exp(base, session.ServerEphemeralSecret, a.group.N)

	key, _, err := kdf.Expand(a.group.Bytes(s), session.Salt, sessionKeyContext)
	return key, err
}

// StartSweeper purges expired sessions every interval until ctx is
// cancelled. Lazy expiry in the store already protects correctness; the
// sweeper only bounds memory held by abandoned attempts.
func (a *Authenticator) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				purged := a.sessions.Sweep()
				if purged > 0 && a.logger != nil {
					a.logger.Info(ctx, "purged expired login sessions", "count", purged)
				}
			}
		}
	}()
}

// Collapse maps the detailed authentication errors onto the single
// generic failure reported externally, closing the account-enumeration
// and proof-vs-session oracle. Internal logs keep the distinction.
func Collapse(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrUnknownUser) ||
		errors.Is(err, common.ErrInvalidSession) ||
		errors.Is(err, common.ErrProofMismatch) {
		return common.ErrAuthenticationFailed
	}
	return err
}
