package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/splitvault/backend/internal/models"
	"github.com/splitvault/backend/internal/storage"
)

// AddParticipant executes join-and-pay as one transaction: the participant
// row, the paid_count increment, and the wallet-to-custody transfer commit
// together or not at all. Settled and slot state are re-checked here, inside
// the transaction, so concurrent joins cannot both take the last slot.
func (s *SQLiteStore) AddParticipant(ctx context.Context, p *models.Participant) error {
	if p.PaidAt == 0 {
		p.PaidAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var settled, paidCount, participantCount int
	err = tx.QueryRowContext(ctx,
		"SELECT settled, paid_count, participant_count FROM expense_groups WHERE id = ?",
		p.GroupID,
	).Scan(&settled, &paidCount, &participantCount)
	if err == sql.ErrNoRows {
		return storage.ErrGroupNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load group: %w", err)
	}
	if settled != 0 {
		return storage.ErrAlreadySettled
	}
	if paidCount >= participantCount {
		return storage.ErrGroupFull
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO participants (id, group_id, payer_id, amount_units, paid_at) VALUES (?, ?, ?, ?, ?)",
		p.ID, p.GroupID, p.PayerID, p.AmountUnits, p.PaidAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicateParticipant
		}
		return fmt.Errorf("failed to insert participant: %w", err)
	}

	if err := transferTx(ctx, tx, p.PayerID, p.GroupID, p.AmountUnits); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE expense_groups SET paid_count = paid_count + 1 WHERE id = ?",
		p.GroupID,
	)
	if err != nil {
		return fmt.Errorf("failed to update paid count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetParticipant retrieves the participant row for a (group, payer) pair.
func (s *SQLiteStore) GetParticipant(ctx context.Context, groupID, payerID string) (*models.Participant, error) {
	p := &models.Participant{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, group_id, payer_id, amount_units, paid_at FROM participants WHERE group_id = ? AND payer_id = ?",
		groupID, payerID,
	).Scan(&p.ID, &p.GroupID, &p.PayerID, &p.AmountUnits, &p.PaidAt)

	if err == sql.ErrNoRows {
		return nil, nil // Not paid yet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

// ListParticipants returns all participants of a group, oldest first.
func (s *SQLiteStore) ListParticipants(ctx context.Context, groupID string) ([]*models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, group_id, payer_id, amount_units, paid_at FROM participants WHERE group_id = ? ORDER BY paid_at, id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		p := &models.Participant{}
		if err := rows.Scan(&p.ID, &p.GroupID, &p.PayerID, &p.AmountUnits, &p.PaidAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

// SettleGroup sweeps the entire custody balance to the organizer wallet and
// sets settled, in one transaction. The settled flag only commits together
// with the transfer, so a crash can never leave a settled-but-unpaid group.
func (s *SQLiteStore) SettleGroup(ctx context.Context, groupID string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var settled int
	var organizerID string
	err = tx.QueryRowContext(ctx,
		"SELECT settled, organizer_id FROM expense_groups WHERE id = ?",
		groupID,
	).Scan(&settled, &organizerID)
	if err == sql.ErrNoRows {
		return 0, storage.ErrGroupNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load group: %w", err)
	}
	if settled != 0 {
		return 0, storage.ErrAlreadySettled
	}

	var custody int64
	err = tx.QueryRowContext(ctx,
		"SELECT balance_units FROM accounts WHERE id = ?",
		groupID,
	).Scan(&custody)
	if err != nil {
		return 0, fmt.Errorf("failed to load custody balance: %w", err)
	}

	if err := transferTx(ctx, tx, groupID, organizerID, custody); err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE expense_groups SET settled = 1 WHERE id = ?",
		groupID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark settled: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return custody, nil
}
