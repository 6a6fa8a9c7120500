package ledger

import (
	"crypto/sha256"
	"encoding/hex"
)

// Record keys are content-derived: the same inputs always produce the same
// key, so "already exists" is a creation-time conflict at the storage layer
// rather than a read-then-write race.

const (
	groupKeyNamespace       = "expense"
	participantKeyNamespace = "participant"
)

// GroupKey derives the expense group record key from the organizer and the
// caller-supplied expense identifier.
func GroupKey(organizerID, expenseID string) string {
	return deriveKey(groupKeyNamespace, organizerID, expenseID)
}

// ParticipantKey derives the participant record key from the group key and
// the payer identity.
func ParticipantKey(groupID, payerID string) string {
	return deriveKey(participantKeyNamespace, groupID, payerID)
}

func deriveKey(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		// Length prefix keeps ("ab","c") distinct from ("a","bc").
		h.Write([]byte{byte(len(part) >> 8), byte(len(part))})
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}
