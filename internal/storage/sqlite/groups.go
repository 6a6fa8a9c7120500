package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/splitvault/backend/internal/models"
	"github.com/splitvault/backend/internal/storage"
)

// CreateGroup persists a new expense group and opens its custody account in
// one transaction. A derived-key collision fails with ErrGroupExists.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.ExpenseGroup) error {
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expense_groups
		 (id, expense_id, organizer_id, title, total_cents, share_cents, participant_count, paid_count, settled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, ?)`,
		group.ID, group.ExpenseID, group.OrganizerID, group.Title,
		group.TotalCents, group.ShareCents, group.ParticipantCount, group.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrGroupExists
		}
		return fmt.Errorf("failed to insert group: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO accounts (id, kind, balance_units, created_at) VALUES (?, ?, 0, ?)",
		group.ID, models.AccountKindCustody, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to open custody account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	group.PaidCount = 0
	group.CustodyUnits = 0
	group.Settled = false
	return nil
}

// GetGroup retrieves a group by ID, custody balance included.
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*models.ExpenseGroup, error) {
	group := &models.ExpenseGroup{}
	var settled int
	err := s.db.QueryRowContext(ctx,
		`SELECT g.id, g.expense_id, g.organizer_id, g.title, g.total_cents, g.share_cents,
		        g.participant_count, g.paid_count, g.settled, g.created_at, a.balance_units
		 FROM expense_groups g
		 JOIN accounts a ON a.id = g.id
		 WHERE g.id = ?`,
		id,
	).Scan(&group.ID, &group.ExpenseID, &group.OrganizerID, &group.Title,
		&group.TotalCents, &group.ShareCents, &group.ParticipantCount,
		&group.PaidCount, &settled, &group.CreatedAt, &group.CustodyUnits)

	if err == sql.ErrNoRows {
		return nil, storage.ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	group.Settled = settled != 0
	return group, nil
}
