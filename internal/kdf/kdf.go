// Package kdf implements the two key-derivation modes used by the trust
// layer.
//
// Stretch is for low-entropy secrets (passwords): memory-hard and slow,
// built on Argon2id. Expand is for high-entropy secrets (Diffie-Hellman
// outputs): fast HMAC-based expansion, built on HKDF-SHA256. The two must
// never be conflated; expanding a password skips the memory-hard step and
// stretching a DH output wastes work without adding security.
package kdf

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"

	"github.com/dmitrijs2005/chattrust/internal/common"
)

const (
	// KeySize is the size of every derived key.
	KeySize = 32

	// SaltSize is the size of generated salts.
	SaltSize = 16

	// Argon2id parameters. Changing them invalidates every stored
	// verifier, so treat them as part of the on-disk format.
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// Stretch derives a 32-byte key from a low-entropy secret such as a
// password using Argon2id. If salt is nil a fresh random salt is
// generated; the salt actually used is returned alongside the key.
//
// Never use Stretch for DH outputs; use Expand instead.
func Stretch(secret, salt []byte) ([]byte, []byte, error) {
	if len(secret) == 0 {
		return nil, nil, common.ErrInvalidInput
	}
	if salt == nil {
		salt = common.GenerateRandByteArray(SaltSize)
	}

	key := argon2.IDKey(secret, salt, argonTime, argonMemory, argonThreads, KeySize)
	return key, salt, nil
}

// Expand derives a 32-byte key from a high-entropy secret such as an ECDH
// shared secret using HKDF-SHA256. The context string provides domain
// separation between unrelated derivations. If salt is nil a fresh random
// salt is generated; the salt actually used is returned alongside the key.
//
// Never use Expand for passwords; use Stretch instead.
func Expand(secret, salt []byte, context string) ([]byte, []byte, error) {
	if len(secret) == 0 {
		return nil, nil, common.ErrInvalidInput
	}
	if salt == nil {
		salt = common.GenerateRandByteArray(SaltSize)
	}

	reader := hkdf.New(sha256.New, secret, salt, []byte(context))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, nil, err
	}

	return key, salt, nil
}
