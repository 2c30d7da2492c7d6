package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/chattrust/internal/common"
	"github.com/dmitrijs2005/chattrust/internal/groupkey"
	"github.com/dmitrijs2005/chattrust/internal/srp"
	"github.com/dmitrijs2005/chattrust/internal/token"
)

// Register prompts for a password, computes the SRP verifier locally and
// registers the identity. The password never leaves this process.
func (a *App) Register(ctx context.Context, username string) error {
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	salt, verifier, err := srp.ComputeVerifier(username, string(password), nil)
	if err != nil {
		return err
	}

	if err := a.auth.Register(ctx, username, salt, verifier); err != nil {
		return err
	}

	keys, err := a.generateKeys(username)
	if err != nil {
		return err
	}

	// Publish the long-term signing key alongside the credentials.
	id, err := a.identities.Get(ctx, username)
	if err != nil {
		return err
	}
	id.LongTermPublicKey = keys.sig.PublicKey
	if err := a.identities.Put(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "registered %q\n", username)
	return nil
}

// Login runs the full SRP exchange against the authenticator and prints
// a bearer token on success. Failures are reported through the collapsed
// external error only.
func (a *App) Login(ctx context.Context, username string) error {
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	challenge, err := a.auth.BeginLogin(ctx, username)
	if err != nil {
		return srp.Collapse(err)
	}

	client, err := srp.NewClientSession(username, string(password))
	if err != nil {
		return err
	}

	proof, sessionKey, err := client.Complete(challenge)
	if err != nil {
		return err
	}

	result, err := a.auth.CompleteLogin(ctx, challenge.SessionID, client.PublicEphemeral(), proof)
	if err != nil {
		return srp.Collapse(err)
	}

	// Mutual authentication: the server proved it knows the verifier.
	if err := client.VerifyServerProof(result.ServerProof, proof, sessionKey); err != nil {
		return srp.Collapse(err)
	}

	bearer, err := token.Issue(username, result.SessionKey, []byte(a.config.TokenSecret), a.config.TokenValidityDuration)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "login ok\ntoken: %s\n", bearer)
	return nil
}

// EncryptDemo encrypts plaintext from one local user to another and
// prints the envelope JSON, then decrypts it back as the recipient.
func (a *App) EncryptDemo(from, to string, plaintext []byte) error {
	sender, err := a.keysFor(from)
	if err != nil {
		return err
	}
	recipient, err := a.keysFor(to)
	if err != nil {
		return err
	}

	env, err := a.cipher.Encrypt(plaintext, recipient.boxPub, sender.sig.PrivateKey)
	if err != nil {
		return err
	}

	wire, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s\n", wire)

	decrypted, err := a.cipher.Decrypt(env, recipient.box, sender.sig.PublicKey)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "decrypted by %q: %s\n", to, decrypted)
	return nil
}

// SplitDemo generates a fresh group key, distributes it among the named
// local users with the given threshold, and reconstructs it from the
// first t shares to show the round trip.
func (a *App) SplitDemo(threshold int, usernames []string) error {
	if len(usernames) < 2 {
		return common.ErrInvalidInput
	}

	distributorKeys, err := a.keysFor(usernames[0])
	if err != nil {
		return err
	}

	recipients := make([]groupkey.Recipient, len(usernames))
	members := make([]*localKeys, len(usernames))
	for i, name := range usernames {
		keys, err := a.keysFor(name)
		if err != nil {
			return err
		}
		members[i] = keys
		recipients[i] = groupkey.Recipient{Username: name, PublicKey: keys.boxPub}
	}

	groupKey := common.GenerateRandByteArray(32)
	groupID := groupkey.NewGroupID()

	wrapped, err := a.distributor.Distribute(groupID, groupKey, threshold, recipients, distributorKeys.sig.PrivateKey)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "group %s: %d shares, threshold %d\n", groupID, len(wrapped), threshold)

	shares := make([]groupkey.Share, 0, threshold)
	for i := 0; i < threshold; i++ {
		share, err := a.distributor.Unwrap(&wrapped[i], members[i].box, distributorKeys.sig.PublicKey)
		if err != nil {
			return err
		}
		shares = append(shares, *share)
	}

	recovered, err := groupkey.Reconstruct(shares)
	if err != nil {
		return err
	}

	if string(recovered) == string(groupKey) {
		fmt.Fprintln(a.out, "reconstructed group key matches")
	} else {
		fmt.Fprintln(a.out, "reconstruction mismatch")
	}
	return nil
}
