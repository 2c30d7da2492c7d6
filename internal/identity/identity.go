// Package identity holds the persistent account record used by the SRP
// authenticator and provides the store abstraction over it. The password
// itself is never part of the record; only the SRP salt and verifier
// computed client-side are stored.
package identity

import "context"

// Identity is an account as seen by the trust layer.
type Identity struct {
	Username          string
	SRPSalt           []byte
	SRPVerifier       []byte
	LongTermPublicKey []byte
}

// Store is the only access path the authenticator uses for identities.
type Store interface {
	// Get returns the identity for username or common.ErrNotFound.
	Get(ctx context.Context, username string) (*Identity, error)

	// Put inserts or replaces the identity for identity.Username.
	Put(ctx context.Context, identity *Identity) error
}
