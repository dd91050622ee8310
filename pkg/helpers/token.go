package helpers

import (
	"crypto/rand"
	"encoding/hex"
)

// InvitationTokenBytes is the entropy of an invitation token; hex encoding
// doubles it to 64 characters on the wire.
const InvitationTokenBytes = 32

// NewInvitationToken returns a cryptographically random hex token.
// Uniqueness is backstopped by the database constraint on the token column.
func NewInvitationToken() (string, error) {
	b := make([]byte, InvitationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
