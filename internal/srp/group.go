// Package srp implements the server side of the SRP-6a password-
// authenticated key exchange, plus the client-side helpers needed to
// compute verifiers and proofs.
//
// The protocol runs over the 2048-bit MODP group from RFC 3526 with
// generator 2 and SHA-256, following RFC 5054. The password itself never
// reaches the server: registration stores (salt, verifier) computed
// client-side, and login proves knowledge of the password through the
// mutual proof exchange.
package srp

import (
	"crypto/rand"
	"crypto/sha256"
	"math/big"
)

// Group represents the mod-p group the protocol runs in.
type Group struct {
	// G is the group generator.
	G *big.Int

	// N is the group modulus, a safe prime.
	N *big.Int
}

// RFC3526Group2048 is the 2048-bit MODP group from RFC 3526, the group
// also listed in RFC 5054 for SRP.
var RFC3526Group2048 Group

func init() {
	n, ok := new(big.Int).SetString("FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD129024E088A67CC74020BBEA63B139B22514A08798E3404DDEF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7EDEE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3DC2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F83655D23DCA3AD961C62F356208552BB9ED529077096966D670C354E4ABC9804F1746C08CA18217C32905E462E36CE3BE39E772C180E86039B2783A2EC07A28FB5C55DF06F4C52C9DE2BCBF6955817183995497CEA956AE515D2261898FA051015728E5A8AACAA68FFFFFFFFFFFFFFFF", 16)
	if !ok {
		panic("big.Int SetString failed")
	}
	RFC3526Group2048 = Group{G: big.NewInt(2), N: n}
}

// Bytes encodes x mod N left-padded to the byte length of N. Both sides
// must use this padding when hashing group elements or the derived values
// diverge.
func (g Group) Bytes(x *big.Int) []byte {
	z := new(big.Int).Mod(x, g.N)
	b := z.Bytes()
	size := (g.N.BitLen() + 7) / 8
	res := make([]byte, size)
	copy(res[size-len(b):], b)
	return res
}

// generatePrivateKey returns a random nonzero exponent below N.
func (g Group) generatePrivateKey() (*big.Int, error) {
	for {
		key, err := rand.Int(rand.Reader, g.N)
		if err != nil {
			return nil, err
		}
		if key.Sign() != 0 {
			return key, nil
		}
	}
}

// multiplier computes the SRP-6a parameter k = H(N | PAD(g)).
func (g Group) multiplier() *big.Int {
	h := sha256.New()
	h.Write(g.Bytes(g.N))
	h.Write(g.Bytes(g.G))
	return new(big.Int).SetBytes(h.Sum(nil))
}

// scrambler computes u = H(PAD(A) | PAD(B)).
func (g Group) scrambler(a, b *big.Int) *big.Int {
	h := sha256.New()
	h.Write(g.Bytes(a))
	h.Write(g.Bytes(b))
	return new(big.Int).SetBytes(h.Sum(nil))
}

// hashGroupParams computes H(N) xor H(PAD(g)), the leading term of the
// client proof.
func (g Group) hashGroupParams() []byte {
	hn := sha256.Sum256(g.Bytes(g.N))
	hg := sha256.Sum256(g.Bytes(g.G))
	out := make([]byte, len(hn))
	for i := range out {
		out[i] = hn[i] ^ hg[i]
	}
	return out
}

// clientProof computes M1 = H((H(N) xor H(g)) | H(username) | salt | PAD(A) | PAD(B) | K).
func (g Group) clientProof(username string, salt []byte, a, b *big.Int, key []byte) []byte {
	hu := sha256.Sum256([]byte(username))

	h := sha256.New()
	h.Write(g.hashGroupParams())
	h.Write(hu[:])
	h.Write(salt)
	h.Write(g.Bytes(a))
	h.Write(g.Bytes(b))
	h.Write(key)
	return h.Sum(nil)
}

// serverProof computes M2 = H(PAD(A) | M1 | K).
func (g Group) serverProof(a *big.Int, m1, key []byte) []byte {
	h := sha256.New()
	h.Write(g.Bytes(a))
	h.Write(m1)
	h.Write(key)
	return h.Sum(nil)
}
