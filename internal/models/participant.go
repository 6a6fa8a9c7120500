package models

// Participant records one accepted payment: a (group, payer) pair created
// exactly once, never mutated, never deleted. Creation and payment are atomic,
// so a Participant row existing implies the custody transfer happened.
type Participant struct {
	// ID is the deterministic record key derived from (group id, payer id).
	ID string

	// GroupID references the ExpenseGroup this payment belongs to.
	GroupID string

	// PayerID is the user who paid.
	PayerID string

	// AmountUnits is the native-token amount actually transferred into
	// custody, in base units.
	AmountUnits int64

	// PaidAt is the Unix timestamp when the payment was accepted.
	PaidAt int64
}
