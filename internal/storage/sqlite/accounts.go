package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/splitvault/backend/internal/models"
	"github.com/splitvault/backend/internal/storage"
)

// CreateAccount opens a ledger account with a zero balance.
func (s *SQLiteStore) CreateAccount(ctx context.Context, account *models.Account) error {
	if account.CreatedAt == 0 {
		account.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO accounts (id, kind, balance_units, created_at) VALUES (?, ?, 0, ?)",
		account.ID, account.Kind, account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	account.BalanceUnits = 0
	return nil
}

// GetAccount retrieves a ledger account by ID.
func (s *SQLiteStore) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	account := &models.Account{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, kind, balance_units, created_at FROM accounts WHERE id = ?",
		id,
	).Scan(&account.ID, &account.Kind, &account.BalanceUnits, &account.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, storage.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// Deposit credits an account.
func (s *SQLiteStore) Deposit(ctx context.Context, accountID string, amountUnits int64) error {
	if amountUnits <= 0 {
		return fmt.Errorf("deposit amount must be positive")
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE accounts SET balance_units = balance_units + ? WHERE id = ?",
		amountUnits, accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to deposit: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to deposit: %w", err)
	}
	if rows == 0 {
		return storage.ErrAccountNotFound
	}
	return nil
}

// transferTx moves amount between two accounts inside the caller's
// transaction. The debit guard makes overdraws a rollback, never a negative
// balance.
func transferTx(ctx context.Context, tx *sql.Tx, fromID, toID string, amountUnits int64) error {
	if amountUnits < 0 {
		return fmt.Errorf("transfer amount must be non-negative")
	}
	if amountUnits == 0 {
		return nil
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE accounts SET balance_units = balance_units - ? WHERE id = ? AND balance_units >= ?",
		amountUnits, fromID, amountUnits,
	)
	if err != nil {
		return fmt.Errorf("failed to debit %s: %w", fromID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to debit %s: %w", fromID, err)
	}
	if rows == 0 {
		// Either the account is missing or the balance is short.
		var exists int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM accounts WHERE id = ?", fromID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to debit %s: %w", fromID, err)
		}
		if exists == 0 {
			return storage.ErrAccountNotFound
		}
		return storage.ErrInsufficientFunds
	}

	res, err = tx.ExecContext(ctx,
		"UPDATE accounts SET balance_units = balance_units + ? WHERE id = ?",
		amountUnits, toID,
	)
	if err != nil {
		return fmt.Errorf("failed to credit %s: %w", toID, err)
	}
	rows, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to credit %s: %w", toID, err)
	}
	if rows == 0 {
		return storage.ErrAccountNotFound
	}
	return nil
}
