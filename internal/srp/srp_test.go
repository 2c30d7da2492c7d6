package srp

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/chattrust/internal/common"
	"github.com/dmitrijs2005/chattrust/internal/identity"
)

func newTestAuthenticator(t *testing.T, opts ...Option) *Authenticator {
	t.Helper()
	store := NewInMemorySessionStore(DefaultSessionTTL, nil)
	return NewAuthenticator(identity.NewInMemoryStore(), store, nil, opts...)
}

func register(t *testing.T, a *Authenticator, username, password string) {
	t.Helper()
	salt, verifier, err := ComputeVerifier(username, password, nil)
	require.NoError(t, err)
	require.NoError(t, a.Register(context.Background(), username, salt, verifier))
}

// login runs the complete client side of one attempt.
func login(t *testing.T, a *Authenticator, username, password string) (*Result, *ClientSession, []byte, error) {
	t.Helper()
	ctx := context.Background()

	challenge, err := a.BeginLogin(ctx, username)
	require.NoError(t, err)

	client, err := NewClientSession(username, password)
	require.NoError(t, err)

	proof, clientKey, err := client.Complete(challenge)
	require.NoError(t, err)

	result, err := a.CompleteLogin(ctx, challenge.SessionID, client.PublicEphemeral(), proof)
	return result, client, clientKey, err
}

func TestLogin_CorrectPassword(t *testing.T) {
	a := newTestAuthenticator(t)
	register(t, a, "alice", "CorrectHorse1!")

	result, _, clientKey, err := login(t, a, "alice", "CorrectHorse1!")
	require.NoError(t, err)
	require.NotNil(t, result)

	// Both sides must agree on the session key.
	assert.Equal(t, clientKey, result.SessionKey)
	assert.NotEmpty(t, result.ServerProof)
}

func TestLogin_MutualAuthentication(t *testing.T) {
	a := newTestAuthenticator(t)
	register(t, a, "alice", "CorrectHorse1!")
	ctx := context.Background()

	challenge, err := a.BeginLogin(ctx, "alice")
	require.NoError(t, err)

	client, err := NewClientSession("alice", "CorrectHorse1!")
	require.NoError(t, err)

	proof, clientKey, err := client.Complete(challenge)
	require.NoError(t, err)

	result, err := a.CompleteLogin(ctx, challenge.SessionID, client.PublicEphemeral(), proof)
	require.NoError(t, err)

	assert.Equal(t, clientKey, result.SessionKey)
	assert.NoError(t, client.VerifyServerProof(result.ServerProof, proof, clientKey))

	// A tampered server proof must not verify.
	bad := make([]byte, len(result.ServerProof))
	copy(bad, result.ServerProof)
	bad[0] ^= 0x01
	assert.ErrorIs(t, client.VerifyServerProof(bad, proof, clientKey), common.ErrProofMismatch)
}

func TestLogin_WrongPassword(t *testing.T) {
	a := newTestAuthenticator(t)
	register(t, a, "alice", "CorrectHorse1!")

	result, _, _, err := login(t, a, "alice", "wrong-password")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, common.ErrProofMismatch)
	assert.ErrorIs(t, Collapse(err), common.ErrAuthenticationFailed)
}

func TestLogin_SessionIsSingleUse(t *testing.T) {
	a := newTestAuthenticator(t)
	register(t, a, "alice", "CorrectHorse1!")
	ctx := context.Background()

	challenge, err := a.BeginLogin(ctx, "alice")
	require.NoError(t, err)

	client, err := NewClientSession("alice", "CorrectHorse1!")
	require.NoError(t, err)
	proof, _, err := client.Complete(challenge)
	require.NoError(t, err)

	_, err = a.CompleteLogin(ctx, challenge.SessionID, client.PublicEphemeral(), proof)
	require.NoError(t, err)

	// Replaying the same session id must fail: the session was consumed.
	_, err = a.CompleteLogin(ctx, challenge.SessionID, client.PublicEphemeral(), proof)
	assert.ErrorIs(t, err, common.ErrInvalidSession)
}

func TestBeginLogin_FreshEphemeralPerAttempt(t *testing.T) {
	a := newTestAuthenticator(t)
	register(t, a, "alice", "CorrectHorse1!")
	ctx := context.Background()

	c1, err := a.BeginLogin(ctx, "alice")
	require.NoError(t, err)
	c2, err := a.BeginLogin(ctx, "alice")
	require.NoError(t, err)

	assert.NotEqual(t, c1.SessionID, c2.SessionID)
	assert.False(t, bytes.Equal(c1.ServerPublicEphemeral, c2.ServerPublicEphemeral))
	// The stored salt is stable for the account.
	assert.Equal(t, c1.Salt, c2.Salt)
}

func TestBeginLogin_UnknownUser(t *testing.T) {
	a := newTestAuthenticator(t)
	_, err := a.BeginLogin(context.Background(), "nobody")
	assert.ErrorIs(t, err, common.ErrUnknownUser)
	assert.ErrorIs(t, Collapse(err), common.ErrAuthenticationFailed)
}

func TestBeginLogin_FakeChallenges(t *testing.T) {
	saltKey := []byte("fake-salt-hmac-key")
	a := newTestAuthenticator(t, WithFakeChallenges(saltKey))
	ctx := context.Background()

	c1, err := a.BeginLogin(ctx, "nobody")
	require.NoError(t, err)
	require.NotNil(t, c1)

	// Decoy salts are deterministic per username, like a real account's.
	c2, err := a.BeginLogin(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, c1.Salt, c2.Salt)

	c3, err := a.BeginLogin(ctx, "somebody-else")
	require.NoError(t, err)
	assert.NotEqual(t, c1.Salt, c3.Salt)

	// Completing a decoy session always fails as a proof mismatch.
	client, err := NewClientSession("nobody", "any-password")
	require.NoError(t, err)
	proof, _, err := client.Complete(c1)
	require.NoError(t, err)

	_, err = a.CompleteLogin(ctx, c1.SessionID, client.PublicEphemeral(), proof)
	assert.ErrorIs(t, err, common.ErrProofMismatch)
}

func TestCompleteLogin_ExpiredSession(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	store := NewInMemorySessionStore(DefaultSessionTTL, func() time.Time { return clock() })
	a := NewAuthenticator(identity.NewInMemoryStore(), store, nil)
	register(t, a, "alice", "CorrectHorse1!")
	ctx := context.Background()

	challenge, err := a.BeginLogin(ctx, "alice")
	require.NoError(t, err)

	client, err := NewClientSession("alice", "CorrectHorse1!")
	require.NoError(t, err)
	proof, _, err := client.Complete(challenge)
	require.NoError(t, err)

	// Advance past the TTL; lazy expiry on Take must reject the session.
	clock = func() time.Time { return now.Add(DefaultSessionTTL + time.Second) }

	_, err = a.CompleteLogin(ctx, challenge.SessionID, client.PublicEphemeral(), proof)
	assert.ErrorIs(t, err, common.ErrInvalidSession)
}

func TestCompleteLogin_ZeroClientPublic(t *testing.T) {
	a := newTestAuthenticator(t)
	register(t, a, "alice", "CorrectHorse1!")
	ctx := context.Background()

	challenge, err := a.BeginLogin(ctx, "alice")
	require.NoError(t, err)

	zero := RFC3526Group2048.Bytes(RFC3526Group2048.N) // N mod N == 0
	_, err = a.CompleteLogin(ctx, challenge.SessionID, zero, []byte("proof"))
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestCompleteLogin_ConcurrentSucceedsAtMostOnce(t *testing.T) {
	a := newTestAuthenticator(t)
	register(t, a, "alice", "CorrectHorse1!")
	ctx := context.Background()

	challenge, err := a.BeginLogin(ctx, "alice")
	require.NoError(t, err)

	client, err := NewClientSession("alice", "CorrectHorse1!")
	require.NoError(t, err)
	proof, _, err := client.Complete(challenge)
	require.NoError(t, err)

	const attempts = 8
	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = a.CompleteLogin(ctx, challenge.SessionID, client.PublicEphemeral(), proof)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, common.ErrInvalidSession)
		}
	}
	assert.Equal(t, 1, successes)
}

func TestRegister_Duplicate(t *testing.T) {
	a := newTestAuthenticator(t)
	register(t, a, "alice", "CorrectHorse1!")

	salt, verifier, err := ComputeVerifier("alice", "OtherPassword2@", nil)
	require.NoError(t, err)
	err = a.Register(context.Background(), "alice", salt, verifier)
	assert.ErrorIs(t, err, common.ErrAlreadyRegistered)
}

func TestReRegister_ReplacesCredentials(t *testing.T) {
	a := newTestAuthenticator(t)
	register(t, a, "alice", "CorrectHorse1!")
	ctx := context.Background()

	salt, verifier, err := ComputeVerifier("alice", "NewPassword2@", nil)
	require.NoError(t, err)
	require.NoError(t, a.ReRegister(ctx, "alice", salt, verifier))

	// Old password no longer works, new one does.
	_, _, _, err = login(t, a, "alice", "CorrectHorse1!")
	assert.ErrorIs(t, err, common.ErrProofMismatch)

	result, _, _, err := login(t, a, "alice", "NewPassword2@")
	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionKey)
}

func TestReRegister_UnknownUser(t *testing.T) {
	a := newTestAuthenticator(t)
	salt, verifier, err := ComputeVerifier("ghost", "Password1!", nil)
	require.NoError(t, err)
	err = a.ReRegister(context.Background(), "ghost", salt, verifier)
	assert.ErrorIs(t, err, common.ErrUnknownUser)
}

func TestComputeVerifier_SaltChangesVerifier(t *testing.T) {
	salt1, v1, err := ComputeVerifier("alice", "CorrectHorse1!", nil)
	require.NoError(t, err)
	salt2, v2, err := ComputeVerifier("alice", "CorrectHorse1!", nil)
	require.NoError(t, err)

	assert.NotEqual(t, salt1, salt2)
	assert.NotEqual(t, v1, v2)
}

func TestCollapse(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"unknown user", common.ErrUnknownUser, common.ErrAuthenticationFailed},
		{"invalid session", common.ErrInvalidSession, common.ErrAuthenticationFailed},
		{"proof mismatch", common.ErrProofMismatch, common.ErrAuthenticationFailed},
		{"invalid input passes through", common.ErrInvalidInput, common.ErrInvalidInput},
		{"other errors pass through", errors.New("db down"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Collapse(tt.in)
			if tt.want == nil && tt.in != nil {
				assert.Equal(t, tt.in, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
