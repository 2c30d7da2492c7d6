package kdf

import (
	"bytes"
	"testing"

	"github.com/dmitrijs2005/chattrust/internal/common"
)

func TestStretch_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt-16byt")

	key1, _, err := Stretch(password, salt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key2, _, err := Stretch(password, salt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	if len(key1) != KeySize {
		t.Errorf("expected %d-byte key, got %d", KeySize, len(key1))
	}
}

func TestStretch_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")

	key1, _, err := Stretch(password, []byte("salt-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key2, _, err := Stretch(password, []byte("salt-2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestStretch_GeneratesFreshSalt(t *testing.T) {
	password := []byte("secret-password")

	key1, salt1, err := Stretch(password, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key2, salt2, err := Stretch(password, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(salt1) != SaltSize || len(salt2) != SaltSize {
		t.Fatalf("expected %d-byte salts, got %d and %d", SaltSize, len(salt1), len(salt2))
	}
	if bytes.Equal(salt1, salt2) {
		t.Errorf("expected fresh salt per derivation, got identical salts")
	}
	if bytes.Equal(key1, key2) {
		t.Errorf("expected different keys under different salts")
	}
}

func TestStretch_EmptySecret(t *testing.T) {
	_, _, err := Stretch(nil, []byte("salt"))
	if err != common.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestExpand_Deterministic(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	salt := []byte("fixed-salt-16byt")

	key1, _, err := Expand(secret, salt, "message-encryption")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key2, _, err := Expand(secret, salt, "message-encryption")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
}

func TestExpand_ContextSeparation(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	salt := []byte("fixed-salt-16byt")

	key1, _, err := Expand(secret, salt, "message-encryption")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key2, _, err := Expand(secret, salt, "session-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different keys for different contexts, got same")
	}
}

func TestExpand_EmptySecret(t *testing.T) {
	_, _, err := Expand(nil, []byte("salt"), "ctx")
	if err != common.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStretchAndExpand_Diverge(t *testing.T) {
	secret := []byte("same-input-secret")
	salt := []byte("fixed-salt-16byt")

	stretched, _, err := Stretch(secret, salt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expanded, _, err := Expand(secret, salt, "message-encryption")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bytes.Equal(stretched, expanded) {
		t.Errorf("stretch and expand must not produce the same key for one input")
	}
}
