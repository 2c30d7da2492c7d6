// Package groupkey distributes a group's decryption key among members by
// Shamir secret sharing, so that any t of n members reconstruct the key
// and fewer than t learn nothing about it.
//
// The scheme works byte-wise over GF(256): every byte of the secret is
// the constant term of its own random degree-(t-1) polynomial, and share
// i holds the evaluations of all those polynomials at the single
// x-coordinate i. This is the convention for secrets longer than one
// byte; all shares of one secret carry the same x-coordinate and a value
// exactly as long as the secret.
package groupkey

import (
	"github.com/dmitrijs2005/chattrust/internal/common"
)

// MaxShares is the number of distinct nonzero x-coordinates in GF(256).
const MaxShares = 255

// Share is one unencrypted Shamir share.
type Share struct {
	// Index is the nonzero x-coordinate, 1..255.
	Index byte

	// Value holds one polynomial evaluation per secret byte.
	Value []byte

	// Threshold is the number of distinct shares needed to reconstruct.
	Threshold int
}

// Split splits secret into n shares with reconstruction threshold t.
// The coefficients above the constant term are uniformly random, which is
// what makes any t-1 shares information-theoretically independent of the
// secret.
func Split(secret []byte, n, t int) ([]Share, error) {
	if len(secret) == 0 || t < 2 || t > n || n > MaxShares {
		return nil, common.ErrInvalidInput
	}

	// One polynomial per secret byte: coeffs[j][0] = secret[j], the rest
	// random.
	coeffs := make([][]byte, len(secret))
	for j := range secret {
		c := make([]byte, t)
		c[0] = secret[j]
		copy(c[1:], common.GenerateRandByteArray(t-1))
		coeffs[j] = c
	}

	shares := make([]Share, n)
	for i := 0; i < n; i++ {
		x := byte(i + 1)
		value := make([]byte, len(secret))
		for j := range secret {
			value[j] = evalPoly(coeffs[j], x)
		}
		shares[i] = Share{Index: x, Value: value, Threshold: t}
	}

	return shares, nil
}

// Reconstruct recovers the secret from at least Threshold distinct
// shares by Lagrange interpolation at x=0. It fails with
// common.ErrInsufficientShares when too few distinct shares are supplied
// and common.ErrInconsistentField when the shares disagree on threshold,
// length or carry duplicate or zero x-coordinates.
func Reconstruct(shares []Share) ([]byte, error) {
	if len(shares) == 0 {
		return nil, common.ErrInsufficientShares
	}

	t := shares[0].Threshold
	size := len(shares[0].Value)
	seen := make(map[byte]bool, len(shares))
	distinct := make([]Share, 0, len(shares))

	for _, s := range shares {
		if s.Threshold != t || len(s.Value) != size || s.Index == 0 {
			return nil, common.ErrInconsistentField
		}
		if seen[s.Index] {
			continue
		}
		seen[s.Index] = true
		distinct = append(distinct, s)
	}

	if len(distinct) < t {
		return nil, common.ErrInsufficientShares
	}
	// Interpolation through more than t points than the polynomial degree
	// supports would silently produce garbage for corrupted inputs; use
	// exactly t shares.
	distinct = distinct[:t]

	secret := make([]byte, size)
	for j := 0; j < size; j++ {
		var acc byte
		for i, si := range distinct {
			// Lagrange basis at x=0.
			num, den := byte(1), byte(1)
			for k, sk := range distinct {
				if k == i {
					continue
				}
				num = gfMul(num, sk.Index)
				den = gfMul(den, sk.Index^si.Index)
			}
			acc ^= gfMul(si.Value[j], gfDiv(num, den))
		}
		secret[j] = acc
	}

	return secret, nil
}
