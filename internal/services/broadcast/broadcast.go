// Package broadcast отправляет рассылки участникам шоу в пределах квоты.
// Сервис потребляет интерфейс квот: владеет счётчиками и их сбросом
// внешняя инфраструктура.
package broadcast

import (
	"context"
	"log/slog"
	"time"

	"github.com/cardshowhub/subscription-engine/internal/errlog"
	"github.com/cardshowhub/subscription-engine/internal/lib/sl"
	"github.com/cardshowhub/subscription-engine/internal/models"
	"github.com/cardshowhub/subscription-engine/internal/quota"
)

// Message — рассылка, передаваемая внешнему отправителю уведомлений.
type Message struct {
	SenderUID string    `json:"sender_uid"`
	ShowID    string    `json:"show_id"`
	Phase     string    `json:"phase"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sent_at"`
}

// Outcome — результат попытки отправки. Отказ по квоте или по роли —
// штатный исход, а не ошибка.
type Outcome struct {
	Allowed   bool   `json:"allowed"`
	Remaining int    `json:"remaining"`
	Reason    string `json:"reason,omitempty"`
}

// Publisher передаёт рассылку внешнему отправителю уведомлений.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// ErrorReporter классифицирует и логирует ошибки.
type ErrorReporter interface {
	Report(ctx context.Context, raw error, opts ...errlog.Option) models.ErrorRecord
}

// Service проверяет права и квоту отправителя и публикует рассылку.
type Service struct {
	quotas    quota.Manager
	publisher Publisher
	errors    ErrorReporter
	log       *slog.Logger
	now       func() time.Time
}

// New создает сервис рассылок.
func New(quotas quota.Manager, publisher Publisher, errors ErrorReporter, log *slog.Logger) *Service {
	return &Service{
		quotas:    quotas,
		publisher: publisher,
		errors:    errors,
		log:       log,
		now:       time.Now,
	}
}

func allowedForPhase(accountType string, phase quota.Phase) bool {
	switch phase {
	case quota.PhasePreShow:
		return accountType == models.AccountTypeDealer || accountType == models.AccountTypeOrganizer
	case quota.PhasePostShow:
		return accountType == models.AccountTypeOrganizer
	}
	return false
}

// Send отправляет рассылку от имени senderUID для шоу showID.
// Отказ в праве отправки и исчерпанная квота возвращаются как обычный
// результат с Allowed=false; ошибкой считаются только сбои инфраструктуры.
func (s *Service) Send(ctx context.Context, senderUID, accountType, showID string, phase quota.Phase, body string) (Outcome, error) {
	const op = "broadcast.Send"
	log := s.log.With(sl.Op(op), slog.String("sender_uid", senderUID), slog.String("show_id", showID))

	if !allowedForPhase(accountType, phase) {
		log.Info("broadcast denied by role", slog.String("account_type", accountType), slog.String("phase", string(phase)))
		return Outcome{Allowed: false, Reason: "account type is not allowed to broadcast in this phase"}, nil
	}

	decision, err := s.quotas.CheckAndConsume(ctx, senderUID, showID, phase)
	if err != nil {
		s.errors.Report(ctx, err,
			errlog.WithCategory(models.ErrorCategoryDatabase),
			errlog.WithContext(map[string]string{"sender_uid": senderUID, "show_id": showID}))
		return Outcome{}, err
	}
	if !decision.Allowed {
		log.Info("broadcast denied by quota", slog.String("phase", string(phase)))
		return Outcome{Allowed: false, Remaining: 0, Reason: "broadcast quota exhausted"}, nil
	}

	msg := Message{
		SenderUID: senderUID,
		ShowID:    showID,
		Phase:     string(phase),
		Body:      body,
		SentAt:    s.now().UTC(),
	}
	if err := s.publisher.Publish(string(phase), msg); err != nil {
		s.errors.Report(ctx, err,
			errlog.WithCategory(models.ErrorCategoryNetwork),
			errlog.WithContext(map[string]string{"sender_uid": senderUID, "show_id": showID}))
		log.Error("failed to publish broadcast", sl.Err(err))
		return Outcome{}, err
	}

	log.Info("broadcast published", slog.String("phase", string(phase)), slog.Int("remaining", decision.Remaining))
	return Outcome{Allowed: true, Remaining: decision.Remaining}, nil
}
