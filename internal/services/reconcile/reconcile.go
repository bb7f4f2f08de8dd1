// Package reconcile применяет исход платежа к учётной записи и журналу
// платежей. Ключевой инвариант — полнота журнала: платёж, дошедший до
// сверки, оставляет ровно одну строку журнала независимо от того,
// удалось ли обновить учётную запись.
package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/cardshowhub/subscription-engine/internal/errlog"
	"github.com/cardshowhub/subscription-engine/internal/lib/sl"
	"github.com/cardshowhub/subscription-engine/internal/models"
)

// PostPaymentUpdateFailed пишется в журнал, когда платёж прошёл,
// а обновление учётной записи — нет. По таким строкам позже выполняется
// ручная сверка.
const PostPaymentUpdateFailed = "Post-payment profile update failed."

// AccountRepository определяет методы хранилища учётных записей.
type AccountRepository interface {
	GetAccount(ctx context.Context, userUID string) (*models.Account, error)
	ApplyPaidSubscription(ctx context.Context, userUID string, plan models.SubscriptionPlan, expiry time.Time) error
	CancelSubscription(ctx context.Context, userUID, paymentStatus string) error
}

// LedgerRepository определяет методы журнала платежей.
type LedgerRepository interface {
	InsertLedgerEntry(ctx context.Context, entry models.PaymentLedgerEntry) (int, error)
}

// ErrorReporter классифицирует и логирует ошибки.
type ErrorReporter interface {
	Report(ctx context.Context, raw error, opts ...errlog.Option) models.ErrorRecord
}

// Service выполняет сверку платежей и отмену подписок.
type Service struct {
	accounts AccountRepository
	ledger   LedgerRepository
	errors   ErrorReporter
	log      *slog.Logger
	now      func() time.Time
}

// New создает новый сервис сверки.
func New(accounts AccountRepository, ledger LedgerRepository, errors ErrorReporter, log *slog.Logger) *Service {
	return &Service{
		accounts: accounts,
		ledger:   ledger,
		errors:   errors,
		log:      log,
		now:      time.Now,
	}
}

// Apply применяет успешный платёж: обновляет учётную запись и пишет
// строку журнала. Никогда не возвращает ошибку вызывающему — сам платёж
// уже прошёл, все сбои здесь классифицируются и логируются внутри.
func (s *Service) Apply(ctx context.Context, userUID string, plan models.SubscriptionPlan, transactionID string) {
	const op = "reconcile.Apply"
	log := s.log.With(sl.Op(op), slog.String("user_uid", userUID), slog.String("plan_id", plan.ID))

	expiry := plan.ExpiryFrom(s.now().UTC())
	updateErr := s.accounts.ApplyPaidSubscription(ctx, userUID, plan, expiry)

	entry := models.PaymentLedgerEntry{
		UserUID:       userUID,
		PlanID:        plan.ID,
		AmountCents:   plan.PriceCents,
		Currency:      plan.Currency,
		Status:        models.LedgerStatusSucceeded,
		TransactionID: transactionID,
	}
	if updateErr != nil {
		msg := PostPaymentUpdateFailed
		entry.Status = models.LedgerStatusFailed
		entry.ErrorMessage = &msg
		s.errors.Report(ctx, updateErr,
			errlog.WithCategory(models.ErrorCategoryDatabase),
			errlog.WithContext(map[string]string{
				"user_uid":       userUID,
				"plan_id":        plan.ID,
				"transaction_id": transactionID,
			}))
		log.Error("account update failed after successful payment", sl.Err(updateErr))
	}

	if _, err := s.ledger.InsertLedgerEntry(ctx, entry); err != nil {
		s.errors.Report(ctx, err,
			errlog.WithCategory(models.ErrorCategoryDatabase),
			errlog.WithSeverity(models.ErrorSeverityCritical),
			errlog.WithContext(map[string]string{
				"user_uid":       userUID,
				"transaction_id": transactionID,
			}))
		log.Error("failed to write payment ledger entry", sl.Err(err))
		return
	}
	log.Info("payment reconciled", slog.String("ledger_status", entry.Status))
}

// Renew продлевает подписку. Отдельного состояния продления нет — это
// тот же путь сверки, что и первичная покупка.
func (s *Service) Renew(ctx context.Context, userUID string, plan models.SubscriptionPlan, transactionID string) {
	s.Apply(ctx, userUID, plan, transactionID)
}

// Cancel отменяет подписку: статус становится expired. Пробный статус
// оплаты сбрасывается в none — право на пробный период при отмене
// теряется; статус paid сохраняется как история оплат.
func (s *Service) Cancel(ctx context.Context, userUID string) error {
	const op = "reconcile.Cancel"

	acc, err := s.accounts.GetAccount(ctx, userUID)
	if err != nil {
		s.errors.Report(ctx, err,
			errlog.WithCategory(models.ErrorCategoryDatabase),
			errlog.WithContext(map[string]string{"user_uid": userUID}))
		return err
	}

	paymentStatus := acc.PaymentStatus
	if paymentStatus == models.PaymentStatusTrial {
		paymentStatus = models.PaymentStatusNone
	}

	if err := s.accounts.CancelSubscription(ctx, userUID, paymentStatus); err != nil {
		s.errors.Report(ctx, err,
			errlog.WithCategory(models.ErrorCategoryDatabase),
			errlog.WithContext(map[string]string{"user_uid": userUID}))
		return err
	}

	s.log.Info("subscription cancelled", sl.Op(op), slog.String("user_uid", userUID))
	return nil
}
