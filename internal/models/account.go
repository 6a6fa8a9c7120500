package models

// Account kinds stored in the ledger.
const (
	// AccountKindUser is a user wallet.
	AccountKindUser = "user"
	// AccountKindCustody holds funds collected for an expense group.
	AccountKindCustody = "custody"
)

// Account is one balance row in the custody ledger. User wallets and group
// custody accounts share the table; every value move is a transfer between
// two Account rows inside a single transaction.
type Account struct {
	// ID is the owner key: a user ID for wallets, a group ID for custody.
	ID string

	// Kind is AccountKindUser or AccountKindCustody.
	Kind string

	// BalanceUnits is the native-token balance in base units. Never
	// negative; debits that would overdraw fail the whole transaction.
	BalanceUnits int64

	// CreatedAt is the Unix timestamp when the account was opened.
	CreatedAt int64
}
