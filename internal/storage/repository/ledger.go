package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cardshowhub/subscription-engine/internal/models"
)

// InsertLedgerEntry добавляет строку в журнал платежей и возвращает её id.
func (s *Storage) InsertLedgerEntry(ctx context.Context, entry models.PaymentLedgerEntry) (int, error) {
	const op = "repository.InsertLedgerEntry"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payment_ledger
			  (user_uid, plan_id, amount_cents, currency, status, transaction_id, error_message, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, NOW()) RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		entry.UserUID, entry.PlanID, entry.AmountCents, entry.Currency,
		entry.Status, entry.TransactionID, entry.ErrorMessage).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListLedgerEntries возвращает записи журнала платежей пользователя,
// от новых к старым.
func (s *Storage) ListLedgerEntries(ctx context.Context, userUID string) ([]*models.PaymentLedgerEntry, error) {
	const op = "repository.ListLedgerEntries"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, plan_id, amount_cents, currency, status, transaction_id, error_message, created_at
			  FROM payment_ledger
			  WHERE user_uid = $1
			  ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.PaymentLedgerEntry
	for rows.Next() {
		var entry models.PaymentLedgerEntry
		var errMsg sql.NullString
		var createdAt sql.NullTime
		if err := rows.Scan(&entry.ID, &entry.UserUID, &entry.PlanID, &entry.AmountCents,
			&entry.Currency, &entry.Status, &entry.TransactionID, &errMsg, &createdAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if errMsg.Valid {
			entry.ErrorMessage = &errMsg.String
		}
		if createdAt.Valid {
			entry.CreatedAt = &createdAt.Time
		}
		result = append(result, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountLedgerEntries возвращает число записей журнала для пользователя.
func (s *Storage) CountLedgerEntries(ctx context.Context, userUID string) (int, error) {
	const op = "repository.CountLedgerEntries"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payment_ledger WHERE user_uid = $1`, userUID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
