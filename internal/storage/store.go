// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/splitvault/backend/internal/models"
)

// Sentinel errors surfaced by Store implementations. The ledger engine maps
// these onto its own error taxonomy; handlers map them onto HTTP statuses.
var (
	// ErrGroupExists means a group with the same (organizer, expense id)
	// derived key already exists. Uniqueness is enforced by the store's
	// key constraint, not by a read-then-write check.
	ErrGroupExists = errors.New("storage: expense group already exists")

	// ErrGroupNotFound means no group matches the given ID.
	ErrGroupNotFound = errors.New("storage: expense group not found")

	// ErrDuplicateParticipant means the (group, payer) pair already has a
	// participant row. Double-pay prevention is this creation conflict.
	ErrDuplicateParticipant = errors.New("storage: participant already exists")

	// ErrAlreadySettled means the group's settled flag was set when a
	// mutation re-checked it inside its transaction.
	ErrAlreadySettled = errors.New("storage: group already settled")

	// ErrGroupFull means paid_count reached participant_count.
	ErrGroupFull = errors.New("storage: group has no open slots")

	// ErrAccountNotFound means no ledger account matches the given ID.
	ErrAccountNotFound = errors.New("storage: account not found")

	// ErrInsufficientFunds means a debit would overdraw an account. The
	// enclosing transaction rolls back with no partial effect.
	ErrInsufficientFunds = errors.New("storage: insufficient funds")
)

// Store is the storage and custody substrate. Mutations on the same group are
// serialized by the implementation; every multi-step operation commits or
// fails as a whole.
type Store interface {
	// CreateUser persists a new user.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns (nil, nil) when
	// no user matches.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID. Returns (nil, nil) when no
	// user matches.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// CreateAccount opens a ledger account with a zero balance.
	CreateAccount(ctx context.Context, account *models.Account) error

	// GetAccount retrieves a ledger account by ID.
	GetAccount(ctx context.Context, id string) (*models.Account, error)

	// Deposit credits an account. Used by the dev faucet and tests; real
	// deployments fund wallets out of band.
	Deposit(ctx context.Context, accountID string, amountUnits int64) error

	// CreateGroup persists a new expense group and opens its custody
	// account in the same transaction. Fails with ErrGroupExists on a
	// key collision.
	CreateGroup(ctx context.Context, group *models.ExpenseGroup) error

	// GetGroup retrieves a group by ID, custody balance included.
	GetGroup(ctx context.Context, id string) (*models.ExpenseGroup, error)

	// AddParticipant executes the join-and-pay substrate step atomically:
	// insert the participant row, increment paid_count, and transfer
	// amount from the payer's wallet into group custody. The settled flag
	// and slot count are re-checked inside the transaction. Any failure
	// leaves no trace.
	AddParticipant(ctx context.Context, p *models.Participant) error

	// GetParticipant retrieves the participant row for a (group, payer)
	// pair. Returns (nil, nil) when the payer has not paid.
	GetParticipant(ctx context.Context, groupID, payerID string) (*models.Participant, error)

	// ListParticipants returns all participants of a group, oldest first.
	ListParticipants(ctx context.Context, groupID string) ([]*models.Participant, error)

	// SettleGroup atomically sweeps the full custody balance to the
	// organizer's wallet, zeroes custody, and sets settled. Returns the
	// units withdrawn. Fails with ErrAlreadySettled if settled was
	// already set.
	SettleGroup(ctx context.Context, groupID string) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}
