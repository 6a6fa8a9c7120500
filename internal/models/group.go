package models

import "fmt"

// GroupStatus represents the lifecycle states of an expense group.
type GroupStatus uint8

const (
	// GroupOpen accepts payments; fewer participants have paid than the
	// group requires.
	GroupOpen GroupStatus = iota
	// GroupFullyPaid means every required participant has paid but the
	// organizer has not withdrawn yet.
	GroupFullyPaid
	// GroupSettled is terminal: custody has been swept to the organizer
	// and no further payments are accepted.
	GroupSettled
)

// Valid reports whether the status value is within the supported range.
func (s GroupStatus) Valid() bool {
	switch s {
	case GroupOpen, GroupFullyPaid, GroupSettled:
		return true
	default:
		return false
	}
}

func (s GroupStatus) String() string {
	switch s {
	case GroupOpen:
		return "open"
	case GroupFullyPaid:
		return "fully_paid"
	case GroupSettled:
		return "settled"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ExpenseGroup is one shared expense: a fiat obligation split equally among a
// fixed number of participants, each paying their share in the native token.
type ExpenseGroup struct {
	// ID is the deterministic record key derived from (organizer, expense id).
	ID string

	// ExpenseID is the caller-supplied (or generated) expense identifier,
	// unique per organizer.
	ExpenseID string

	// OrganizerID is the user who created the group and may settle it.
	OrganizerID string

	// Title is the display name, at most 50 characters.
	Title string

	// TotalCents is the full obligation in fiat cents.
	TotalCents int64

	// ShareCents is TotalCents / ParticipantCount, integer division.
	// The remainder (at most ParticipantCount-1 cents) is not collected.
	ShareCents int64

	// ParticipantCount is the number of payers required, at least 2.
	ParticipantCount int

	// PaidCount is the number of accepted payments. Monotone, never
	// exceeds ParticipantCount.
	PaidCount int

	// CustodyUnits is the native-token balance held for this group. It
	// equals the sum of accepted payment amounts until settlement sweeps
	// it to zero.
	CustodyUnits int64

	// Settled flips false to true exactly once, at settlement.
	Settled bool

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Status derives the lifecycle state from the counters and the settled flag.
func (g *ExpenseGroup) Status() GroupStatus {
	switch {
	case g.Settled:
		return GroupSettled
	case g.PaidCount >= g.ParticipantCount:
		return GroupFullyPaid
	default:
		return GroupOpen
	}
}

// Clone returns a copy so callers can mutate freely.
func (g *ExpenseGroup) Clone() *ExpenseGroup {
	if g == nil {
		return nil
	}
	clone := *g
	return &clone
}
