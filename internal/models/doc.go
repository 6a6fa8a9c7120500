// Package models defines the core domain models for Splitvault.
//
// # Money representation
//
// Fiat amounts are integer cents; native-token amounts are integer base units
// (1e9 units per whole token). No floats anywhere in money paths - conversion
// between the two happens in the pricing package with big.Int intermediates.
//
// # Relationships
//
// An ExpenseGroup is created by its organizer and never deleted. Participants
// reference their group by ID (foreign key, not containment): the group does
// not hold a participant collection, and a Participant row exists only once a
// payment has been accepted. Custody funds live in an Account row keyed by
// the group ID; user wallets are Account rows keyed by the user ID.
package models
