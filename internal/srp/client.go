package srp

import (
	"crypto/subtle"
	"math/big"

	"github.com/dmitrijs2005/chattrust/internal/common"
	"github.com/dmitrijs2005/chattrust/internal/kdf"
)

// privateValue derives the SRP private value x from the password. The
// username is mixed in so a (salt, verifier) pair cannot be replayed for
// a different account, and the memory-hard stretch is what makes offline
// guessing against a stolen verifier expensive.
func privateValue(username, password string, salt []byte) (*big.Int, error) {
	secret := []byte(username + ":" + password)
	key, _, err := kdf.Stretch(secret, salt)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(key), nil
}

// ComputeVerifier derives the registration verifier v = g^x mod N for the
// given credentials. If salt is nil a fresh one is generated. The
// returned (salt, verifier) pair is what the client sends to Register;
// the password never leaves the client.
func ComputeVerifier(username, password string, salt []byte) ([]byte, []byte, error) {
	if username == "" || password == "" {
		return nil, nil, common.ErrInvalidInput
	}
	if salt == nil {
		salt = common.GenerateRandByteArray(kdf.SaltSize)
	}

	x, err := privateValue(username, password, salt)
	if err != nil {
		return nil, nil, err
	}

	g := RFC3526Group2048
	v := new(big.Int).Exp(g.G, x, g.N)
	return salt, g.Bytes(v), nil
}

// ClientSession is the client-side state of one login attempt.
type ClientSession struct {
	group    Group
	username string
	password string
	secret   *big.Int
	public   *big.Int
}

// NewClientSession generates the client ephemeral pair for one login
// attempt. Like the server ephemeral, it must never be reused.
func NewClientSession(username, password string) (*ClientSession, error) {
	if username == "" || password == "" {
		return nil, common.ErrInvalidInput
	}

	g := RFC3526Group2048
	a, err := g.generatePrivateKey()
	if err != nil {
		return nil, err
	}

	return &ClientSession{
		group:    g,
		username: username,
		password: password,
		secret:   a,
		public:   new(big.Int).Exp(g.G, a, g.N),
	}, nil
}

// PublicEphemeral returns A = g^a padded to the group size.
func (c *ClientSession) PublicEphemeral() []byte {
	return c.group.Bytes(c.public)
}

// Complete processes the server challenge and returns the client proof
// M1 together with the derived session key.
func (c *ClientSession) Complete(challenge *Challenge) (proof, sessionKey []byte, err error) {
	if challenge == nil || len(challenge.Salt) == 0 || len(challenge.ServerPublicEphemeral) == 0 {
		return nil, nil, common.ErrInvalidInput
	}

	bPub := new(big.Int).SetBytes(challenge.ServerPublicEphemeral)
	if new(big.Int).Mod(bPub, c.group.N).Sign() == 0 {
		return nil, nil, common.ErrInvalidInput
	}

	x, err := privateValue(c.username, c.password, challenge.Salt)
	if err != nil {
		return nil, nil, err
	}

	u := c.group.scrambler(c.public, bPub)
	k := c.group.multiplier()

	// S = (B - k*g^x)^(a + u*x) mod N
	gx := new(big.Int).Exp(c.group.G, x, c.group.N)
	kgx := new(big.Int).Mod(new(big.Int).Mul(k, gx), c.group.N)
	base := new(big.Int).Mod(new(big.Int).Sub(bPub, kgx), c.group.N)
	exp := new(big.Int).Add(c.secret, new(big.Int).Mul(u, x))
	s := new(big.Int).Exp(base, exp, c.group.N)

	key, _, err := kdf.Expand(c.group.Bytes(s), challenge.Salt, sessionKeyContext)
	if err != nil {
		return nil, nil, err
	}

	m1 := c.group.clientProof(c.username, challenge.Salt, c.public, bPub, key)
	return m1, key, nil
}

// VerifyServerProof checks the server's M2, authenticating the server to
// the client (mutual authentication).
func (c *ClientSession) VerifyServerProof(serverProof, clientProof, sessionKey []byte) error {
	expected := c.group.serverProof(c.public, clientProof, sessionKey)
	if subtle.ConstantTimeCompare(expected, serverProof) != 1 {
		return common.ErrProofMismatch
	}
	return nil
}
