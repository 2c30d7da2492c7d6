// Package envelope encrypts single messages end to end: a fresh X25519
// key agreement per message, HKDF key expansion, ChaCha20-Poly1305
// sealing and an Ed25519 signature binding the ciphertext to the sender.
package envelope

import (
	"context"
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"

	"github.com/dmitrijs2005/chattrust/internal/common"
	"github.com/dmitrijs2005/chattrust/internal/kdf"
	"github.com/dmitrijs2005/chattrust/internal/logging"
	"github.com/dmitrijs2005/chattrust/internal/signature"
)

const (
	// KeySize is the X25519 key size.
	KeySize = 32

	// IVSize is the AEAD nonce size.
	IVSize = chacha20poly1305.NonceSize

	// TagSize is the AEAD authentication tag size.
	TagSize = chacha20poly1305.Overhead

	// expandContext separates message-encryption key derivation from
	// every other HKDF use of the same shared secret.
	expandContext = "message-encryption"
)

// Algorithm identifiers. The set is closed: the cipher only ever runs the
// suite fixed at construction, never one named in untrusted input.
const (
	CurveX25519          = "X25519"
	AEADChaCha20Poly1305 = "ChaCha20-Poly1305"
	KDFHKDFSHA256        = "HKDF-SHA256"
	SigEd25519           = "Ed25519"
)

// Suite names the algorithms an Envelope was produced with.
type Suite struct {
	Curve string
	AEAD  string
	KDF   string
	Sig   string
}

// DefaultSuite is the only suite currently implemented.
var DefaultSuite = Suite{
	Curve: CurveX25519,
	AEAD:  AEADChaCha20Poly1305,
	KDF:   KDFHKDFSHA256,
	Sig:   SigEd25519,
}

// Envelope is one encrypted message. It is immutable once created and
// serializes as JSON with binary fields base64-encoded.
type Envelope struct {
	EphemeralPublicKey []byte `json:"ephemeralPublicKey"`
	IV                 []byte `json:"iv"`
	AuthTag            []byte `json:"authTag"`
	Ciphertext         []byte `json:"ciphertext"`
	Signature          []byte `json:"signature"`
	KeyDerivationSalt  []byte `json:"keyDerivationSalt"`
}

// Cipher encrypts and decrypts envelopes using one fixed suite. Stateless
// and safe for concurrent use.
type Cipher struct {
	suite  Suite
	logger logging.Logger
}

// New validates the suite and returns a Cipher. Only DefaultSuite is
// supported; anything else is a configuration error, not a runtime
// negotiation.
func New(suite Suite, logger logging.Logger) (*Cipher, error) {
	if suite != DefaultSuite {
		return nil, errors.New("unsupported cipher suite")
	}
	return &Cipher{suite: suite, logger: logger}, nil
}

// Suite reports the fixed algorithm suite.
func (c *Cipher) Suite() Suite {
	return c.suite
}

// newEphemeralKeyPair generates a fresh clamped X25519 pair. One pair per
// message; reuse would break forward secrecy.
func newEphemeralKeyPair() (priv, pub []byte, err error) {
	priv = make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, priv); err != nil {
		return nil, nil, err
	}
	priv[0] &= 248
	priv[31] &= 127
	priv[31] |= 64

	pub, err = curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return nil, nil, err
	}
	return priv, pub, nil
}

// Encrypt seals plaintext for the holder of recipientPublicKey and signs
// the ciphertext with the sender's long-term key.
func (c *Cipher) Encrypt(plaintext, recipientPublicKey, senderPrivateKey []byte) (*Envelope, error) {
	if len(plaintext) == 0 || len(recipientPublicKey) != KeySize {
		return nil, common.ErrInvalidInput
	}

	ephPriv, ephPub, err := newEphemeralKeyPair()
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(ephPriv)

	shared, err := curve25519.X25519(ephPriv, recipientPublicKey)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(shared)

	key, salt, err := kdf.Expand(shared, nil, expandContext)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}

	iv := common.GenerateRandByteArray(IVSize)
	sealed := aead.Seal(nil, iv, plaintext, nil)
	ciphertext, tag := sealed[:len(sealed)-TagSize], sealed[len(sealed)-TagSize:]

	sig, err := signature.Sign(senderPrivateKey, ciphertext)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		EphemeralPublicKey: ephPub,
		IV:                 iv,
		AuthTag:            tag,
		Ciphertext:         ciphertext,
		Signature:          sig,
		KeyDerivationSalt:  salt,
	}, nil
}

// Decrypt opens an envelope. The signature over the ciphertext is
// verified before any decryption is attempted, and no partial plaintext
// is ever returned: every failure surfaces as common.ErrDecryptFailed.
// Internal logs keep the signature-vs-tag distinction.
func (c *Cipher) Decrypt(env *Envelope, recipientPrivateKey, senderPublicKey []byte) ([]byte, error) {
	ctx, err := c.decrypt(env, recipientPrivateKey, senderPublicKey)
	if err != nil {
		return nil, CollapseDecrypt(err)
	}
	return ctx, nil
}

func (c *Cipher) decrypt(env *Envelope, recipientPrivateKey, senderPublicKey []byte) ([]byte, error) {
	if env == nil || len(env.EphemeralPublicKey) != KeySize ||
		len(env.IV) != IVSize || len(env.AuthTag) != TagSize ||
		len(recipientPrivateKey) != KeySize {
		return nil, common.ErrInvalidInput
	}

	// Verify first, decrypt second. The reverse order would run the AEAD
	// on unauthenticated sender data.
	if err := signature.Verify(senderPublicKey, env.Ciphertext, env.Signature); err != nil {
		c.logf("envelope signature rejected")
		return nil, common.ErrSignatureInvalid
	}

	shared, err := curve25519.X25519(recipientPrivateKey, env.EphemeralPublicKey)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(shared)

	key, _, err := kdf.Expand(shared, env.KeyDerivationSalt, expandContext)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(env.Ciphertext)+TagSize)
	sealed = append(sealed, env.Ciphertext...)
	sealed = append(sealed, env.AuthTag...)

	plaintext, err := aead.Open(nil, env.IV, sealed, nil)
	if err != nil {
		c.logf("envelope authentication tag rejected")
		return nil, common.ErrTagMismatch
	}

	return plaintext, nil
}

func (c *Cipher) logf(msg string) {
	if c.logger != nil {
		c.logger.Warn(context.Background(), msg)
	}
}

// CollapseDecrypt maps the detailed decryption errors onto the single
// generic failure reported externally.
func CollapseDecrypt(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrSignatureInvalid) || errors.Is(err, common.ErrTagMismatch) {
		return common.ErrDecryptFailed
	}
	return err
}
