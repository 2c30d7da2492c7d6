// Package common defines shared constants and sentinel errors used across
// the trust-layer components. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Input validation.
	ErrInvalidInput = errors.New("invalid input")

	// Store-level errors.
	ErrNotFound = errors.New("not found")

	// Registration errors.
	ErrAlreadyRegistered = errors.New("already registered")

	// Authentication phase. ErrUnknownUser, ErrInvalidSession and
	// ErrProofMismatch are internal; at the boundary they all collapse to
	// ErrAuthenticationFailed so callers cannot distinguish them.
	ErrUnknownUser          = errors.New("unknown user")
	ErrInvalidSession       = errors.New("invalid session")
	ErrProofMismatch        = errors.New("proof mismatch")
	ErrAuthenticationFailed = errors.New("authentication failed")

	// Message decryption. ErrSignatureInvalid and ErrTagMismatch are
	// internal; externally both collapse to ErrDecryptFailed.
	ErrSignatureInvalid = errors.New("signature invalid")
	ErrTagMismatch      = errors.New("authentication tag mismatch")
	ErrDecryptFailed    = errors.New("decryption failed")

	// Group-key phase. Safe to report precisely, no secret at risk.
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrInconsistentField  = errors.New("inconsistent field parameters")

	// Token lifecycle.
	ErrInvalidToken = errors.New("invalid token")
)
