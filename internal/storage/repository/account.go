package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cardshowhub/subscription-engine/internal/models"
)

// ErrAccountNotFound возвращается, когда учётная запись отсутствует.
var ErrAccountNotFound = errors.New("account not found")

// GetAccount возвращает учётную запись пользователя.
func (s *Storage) GetAccount(ctx context.Context, userUID string) (*models.Account, error) {
	const op = "repository.GetAccount"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, account_type, subscription_status, subscription_expiry,
	                 subscription_duration, payment_status, updated_at
			  FROM accounts
			  WHERE user_uid = $1`
	var acc models.Account
	var expiry sql.NullString
	var duration sql.NullString
	var updatedAt sql.NullTime
	err := s.DB.QueryRowContext(ctx, query, userUID).Scan(
		&acc.UserUID, &acc.AccountType, &acc.SubscriptionStatus,
		&expiry, &duration, &acc.PaymentStatus, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrAccountNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if expiry.Valid {
		acc.SubscriptionExpiry = &expiry.String
	}
	if duration.Valid {
		acc.SubscriptionDuration = duration.String
	}
	if updatedAt.Valid {
		acc.UpdatedAt = &updatedAt.Time
	}
	return &acc, nil
}

// ApplyPaidSubscription переводит учётную запись в оплаченное состояние:
// тип по плану, статус active, оплата paid, новая дата окончания.
func (s *Storage) ApplyPaidSubscription(ctx context.Context, userUID string, plan models.SubscriptionPlan, expiry time.Time) error {
	const op = "repository.ApplyPaidSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET account_type = $2,
			      subscription_status = $3,
			      payment_status = $4,
			      subscription_expiry = $5,
			      subscription_duration = $6,
			      updated_at = NOW()
			  WHERE user_uid = $1`
	res, err := s.DB.ExecContext(ctx, query, userUID,
		plan.Type, models.SubscriptionStatusActive, models.PaymentStatusPaid,
		expiry.UTC().Format(time.RFC3339), plan.Duration)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrAccountNotFound)
	}
	return nil
}

// CancelSubscription переводит подписку в expired. Статус оплаты trial
// сбрасывается в none (пробный период при отмене теряется), paid сохраняется.
func (s *Storage) CancelSubscription(ctx context.Context, userUID, paymentStatus string) error {
	const op = "repository.CancelSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts
			  SET subscription_status = $2,
			      payment_status = $3,
			      updated_at = NOW()
			  WHERE user_uid = $1`
	res, err := s.DB.ExecContext(ctx, query, userUID,
		models.SubscriptionStatusExpired, paymentStatus)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrAccountNotFound)
	}
	return nil
}
