package groupkey

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/chattrust/internal/common"
	"github.com/dmitrijs2005/chattrust/internal/envelope"
)

// GroupKeyShare is one member's wrapped share of a group key. ShareValue
// carries the serialized envelope; a relay (including the server) learns
// only its size. The struct serializes as JSON with binary fields
// base64-encoded.
type GroupKeyShare struct {
	GroupID      string `json:"groupId"`
	ShareIndex   int    `json:"shareIndex"`
	ShareValue   []byte `json:"shareValue"`
	Threshold    int    `json:"threshold"`
	EncryptedFor string `json:"encryptedFor"`
}

// Recipient resolves one group member for distribution. PublicKey is the
// member's X25519 encryption key; resolving it (PKI, directory) is the
// caller's concern.
type Recipient struct {
	Username  string
	PublicKey []byte
}

// Distributor splits group keys and wraps each share for its recipient.
// Stateless and safe for concurrent use.
type Distributor struct {
	cipher *envelope.Cipher
}

func NewDistributor(cipher *envelope.Cipher) *Distributor {
	return &Distributor{cipher: cipher}
}

// NewGroupID returns a fresh group identifier.
func NewGroupID() string {
	return uuid.NewString()
}

// Distribute splits secret into one share per recipient with threshold t
// and encrypts each share value for its recipient, signed by the sender's
// long-term key.
func (d *Distributor) Distribute(groupID string, secret []byte, t int, recipients []Recipient, senderPrivateKey []byte) ([]GroupKeyShare, error) {
	if groupID == "" || len(recipients) == 0 {
		return nil, common.ErrInvalidInput
	}

	shares, err := Split(secret, len(recipients), t)
	if err != nil {
		return nil, err
	}

	out := make([]GroupKeyShare, len(shares))
	for i, share := range shares {
		env, err := d.cipher.Encrypt(share.Value, recipients[i].PublicKey, senderPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("wrapping share %d: %w", share.Index, err)
		}

		wrapped, err := json.Marshal(env)
		if err != nil {
			return nil, err
		}

		out[i] = GroupKeyShare{
			GroupID:      groupID,
			ShareIndex:   int(share.Index),
			ShareValue:   wrapped,
			Threshold:    share.Threshold,
			EncryptedFor: recipients[i].Username,
		}
	}

	return out, nil
}

// Unwrap decrypts one member's share. The recipient authenticates the
// distributor through the envelope signature.
func (d *Distributor) Unwrap(share *GroupKeyShare, recipientPrivateKey, senderPublicKey []byte) (*Share, error) {
	if share == nil || share.ShareIndex < 1 || share.ShareIndex > MaxShares {
		return nil, common.ErrInvalidInput
	}

	var env envelope.Envelope
	if err := json.Unmarshal(share.ShareValue, &env); err != nil {
		return nil, common.ErrInvalidInput
	}

	value, err := d.cipher.Decrypt(&env, recipientPrivateKey, senderPublicKey)
	if err != nil {
		return nil, err
	}

	return &Share{
		Index:     byte(share.ShareIndex),
		Value:     value,
		Threshold: share.Threshold,
	}, nil
}
