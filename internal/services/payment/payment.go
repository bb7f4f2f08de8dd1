// Package payment управляет многошаговым платёжным потоком: сессия,
// создание платёжного интента на бэкенде, инициализация и показ
// платёжного листа шлюза, затем сверка результата.
package payment

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cardshowhub/subscription-engine/internal/errlog"
	"github.com/cardshowhub/subscription-engine/internal/lib/sl"
	"github.com/cardshowhub/subscription-engine/internal/models"
	"github.com/cardshowhub/subscription-engine/internal/paymentgateway"
	"github.com/cardshowhub/subscription-engine/internal/paymentintent"
	"github.com/cardshowhub/subscription-engine/internal/plans"
)

// Фиксированные сообщения об отказах платёжного потока.
const (
	MsgPlanNotFound    = "Subscription plan not found."
	MsgPaymentCanceled = "Payment was canceled."
	MsgNoActiveSession = "No active session."
)

var paymentAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "payment_attempts_total",
	Help: "Payment sheet attempts by outcome.",
}, []string{"outcome"})

// Result — типизированный результат платёжного потока. Ожидаемые отказы
// возвращаются значением, за границу оркестратора ошибки не выбрасываются.
type Result struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// SessionSource возвращает действующую сессию вызывающего пользователя.
type SessionSource interface {
	Session(ctx context.Context) (*models.Session, error)
}

// IntentClient создаёт платёжный интент на бэкенде.
type IntentClient interface {
	CreateIntent(ctx context.Context, accessToken string, req paymentintent.Request) (*paymentintent.Response, error)
}

// Reconciler применяет исход платежа к учётной записи и журналу.
type Reconciler interface {
	Apply(ctx context.Context, userUID string, plan models.SubscriptionPlan, transactionID string)
}

// ErrorReporter классифицирует и логирует ошибки.
type ErrorReporter interface {
	Report(ctx context.Context, raw error, opts ...errlog.Option) models.ErrorRecord
}

// Service — оркестратор платёжного потока.
type Service struct {
	catalog      *plans.Catalog
	intents      IntentClient
	gateway      paymentgateway.Gateway
	reconciler   Reconciler
	errors       ErrorReporter
	log          *slog.Logger
	merchantName string
}

// New создает оркестратор платёжного потока.
func New(catalog *plans.Catalog, intents IntentClient, gateway paymentgateway.Gateway,
	reconciler Reconciler, errors ErrorReporter, log *slog.Logger, merchantName string) *Service {
	return &Service{
		catalog:      catalog,
		intents:      intents,
		gateway:      gateway,
		reconciler:   reconciler,
		errors:       errors,
		log:          log,
		merchantName: merchantName,
	}
}

func failure(outcome, msg string) Result {
	paymentAttempts.WithLabelValues(outcome).Inc()
	return Result{Success: false, Error: msg}
}

// CreatePaymentSheet проводит один платёж от проверки плана до сверки.
// Шаги строго последовательны, следующий не начинается до завершения
// предыдущего. Сбой сверки не меняет успешный исход: сам платёж уже
// прошёл, расхождение фиксируется в журнале платежей отдельно.
func (s *Service) CreatePaymentSheet(ctx context.Context, sessions SessionSource, userUID, planID string) Result {
	const op = "payment.CreatePaymentSheet"
	log := s.log.With(sl.Op(op), slog.String("user_uid", userUID), slog.String("plan_id", planID))

	// Промах каталога терминален, никаких сетевых вызовов не делается.
	plan, err := s.catalog.FindByID(planID)
	if err != nil {
		return failure("plan_not_found", MsgPlanNotFound)
	}

	session, err := sessions.Session(ctx)
	if err != nil || session == nil {
		if err == nil {
			err = errors.New(MsgNoActiveSession)
		}
		s.errors.Report(ctx, err,
			errlog.WithCategory(models.ErrorCategoryAuthentication),
			errlog.WithContext(map[string]string{"user_uid": userUID}))
		log.Error("failed to retrieve auth session", sl.Err(err))
		return failure("session_error", err.Error())
	}

	intentResp, err := s.intents.CreateIntent(ctx, session.AccessToken, paymentintent.Request{
		UserID: userUID,
		PlanID: planID,
	})
	if err != nil {
		s.errors.Report(ctx, err,
			errlog.WithCategory(models.ErrorCategoryNetwork),
			errlog.WithContext(map[string]string{"user_uid": userUID, "plan_id": planID}))
		log.Error("failed to create payment intent", sl.Err(err))
		return failure("intent_error", err.Error())
	}

	if gwErr := s.gateway.InitPaymentSheet(ctx, paymentgateway.InitConfig{
		PaymentIntent:  intentResp.PaymentIntent,
		EphemeralKey:   intentResp.EphemeralKey,
		Customer:       intentResp.Customer,
		PublishableKey: intentResp.PublishableKey,
		MerchantName:   s.merchantName,
	}); gwErr != nil {
		s.errors.Report(ctx, gwErr,
			errlog.WithContext(map[string]string{"user_uid": userUID, "gateway_code": gwErr.Code}))
		log.Error("failed to init payment sheet", sl.Err(gwErr))
		return failure("init_error", "Initialization failed: "+gwErr.Message)
	}

	if gwErr := s.gateway.PresentPaymentSheet(ctx); gwErr != nil {
		// Отказ пользователя — штатный исход, в журнал ошибок не пишется.
		if gwErr.Canceled() {
			log.Info("payment sheet canceled by user")
			return failure("canceled", MsgPaymentCanceled)
		}
		s.errors.Report(ctx, gwErr,
			errlog.WithContext(map[string]string{"user_uid": userUID, "gateway_code": gwErr.Code}))
		log.Error("payment sheet failed", sl.Err(gwErr))
		return failure("present_error", "Payment failed: "+gwErr.Message)
	}

	s.reconciler.Apply(ctx, userUID, *plan, intentResp.PaymentIntent)

	paymentAttempts.WithLabelValues("succeeded").Inc()
	log.Info("payment completed", slog.String("transaction_id", intentResp.PaymentIntent))
	return Result{Success: true, TransactionID: intentResp.PaymentIntent}
}
