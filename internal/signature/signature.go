// Package signature signs and verifies byte buffers with a user's
// long-term Ed25519 keypair.
package signature

import (
	"crypto/rand"

	"github.com/cloudflare/circl/sign/ed25519"

	"github.com/dmitrijs2005/chattrust/internal/common"
)

const (
	// PublicKeySize is the size of an encoded public key.
	PublicKeySize = ed25519.PublicKeySize

	// PrivateKeySize is the size of an encoded private key.
	PrivateKeySize = ed25519.PrivateKeySize

	// Size is the size of a signature.
	Size = ed25519.SignatureSize
)

// KeyPair holds a long-term Ed25519 identity keypair.
type KeyPair struct {
	PublicKey  []byte
	PrivateKey []byte
}

// GenerateKeyPair creates a new long-term Ed25519 keypair.
func GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &KeyPair{PublicKey: pub, PrivateKey: priv}, nil
}

// Sign signs data with the given private key.
func Sign(privateKey, data []byte) ([]byte, error) {
	if len(privateKey) != PrivateKeySize {
		return nil, common.ErrInvalidInput
	}
	return ed25519.Sign(ed25519.PrivateKey(privateKey), data), nil
}

// Verify checks sig over data against the given public key. It returns
// common.ErrSignatureInvalid when the signature does not verify; the
// underlying comparison is constant-time.
func Verify(publicKey, data, sig []byte) error {
	if len(publicKey) != PublicKeySize || len(sig) != Size {
		return common.ErrSignatureInvalid
	}
	if !ed25519.Verify(ed25519.PublicKey(publicKey), data, sig) {
		return common.ErrSignatureInvalid
	}
	return nil
}
