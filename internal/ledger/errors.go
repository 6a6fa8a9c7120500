package ledger

import "errors"

// Validation errors: the caller must correct the input, retrying does not help.
var (
	// ErrInvalidTitle rejects empty titles and titles over 50 characters.
	ErrInvalidTitle = errors.New("ledger: title must be 1-50 characters")

	// ErrInvalidAmount rejects non-positive total amounts.
	ErrInvalidAmount = errors.New("ledger: total amount must be positive")

	// ErrInvalidParticipantCount rejects counts below 2 or above the
	// configured cap.
	ErrInvalidParticipantCount = errors.New("ledger: invalid participant count")
)

// State-conflict errors: the caller must re-check state before retrying.
var (
	// ErrGroupExists means the (organizer, expense id) pair is taken.
	ErrGroupExists = errors.New("ledger: expense group already exists")

	// ErrGroupNotFound means the group does not exist.
	ErrGroupNotFound = errors.New("ledger: expense group not found")

	// ErrDuplicateParticipant means this payer already paid this group.
	ErrDuplicateParticipant = errors.New("ledger: payer has already paid")

	// ErrAlreadySettled means the group is closed to payment and to
	// further settlement.
	ErrAlreadySettled = errors.New("ledger: group already settled")

	// ErrGroupFull means every payment slot is taken.
	ErrGroupFull = errors.New("ledger: group has no open slots")

	// ErrNotFullyPaid blocks settlement while slots remain open, when the
	// strict settlement policy is enabled.
	ErrNotFullyPaid = errors.New("ledger: group not fully paid")
)

// Oracle-trust errors: the caller should fetch a fresh quote and resubmit.
var (
	// ErrInvalidPaymentAmount means the submitted amount lies outside the
	// slippage acceptance band.
	ErrInvalidPaymentAmount = errors.New("ledger: payment amount outside acceptance band")
)

// Authorization errors: fatal to the call, never retried.
var (
	// ErrUnauthorized means the caller is not the group's organizer.
	ErrUnauthorized = errors.New("ledger: caller is not the organizer")
)

// Custody errors.
var (
	// ErrInsufficientFunds means the payer's wallet cannot cover the
	// payment. The operation rolled back with no partial effect.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")
)
