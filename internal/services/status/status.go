// Package status вычисляет производное состояние подписки из учётной
// записи и текущего момента времени. Все функции чистые: одинаковый вход
// всегда даёт одинаковый результат, побочных эффектов нет.
package status

import (
	"time"

	"github.com/cardshowhub/subscription-engine/internal/models"
	"github.com/cardshowhub/subscription-engine/internal/plans"
)

// Порог, ниже которого активная подписка без явного payment_status
// считается пробной. Ровно 7 дней пробным периодом не является.
const legacyTrialDays = 7

// Remaining — остаток подписки, целые дни и целые часы сверх них.
type Remaining struct {
	Days  int `json:"days"`
	Hours int `json:"hours"`
}

// Details агрегирует производное состояние подписки для одной учётной записи.
type Details struct {
	AccountType   string                   `json:"account_type"`
	Status        string                   `json:"status"`
	Expiry        *string                  `json:"expiry,omitempty"`
	IsActive      bool                     `json:"is_active"`
	TimeRemaining *Remaining               `json:"time_remaining,omitempty"`
	Plan          *models.SubscriptionPlan `json:"plan,omitempty"`
	IsPaid        bool                     `json:"is_paid"`
	IsTrialPeriod bool                     `json:"is_trial_period"`
}

// Evaluator вычисляет состояние подписки, сопоставляя учётную запись
// с каталогом планов.
type Evaluator struct {
	catalog *plans.Catalog
}

// NewEvaluator создает новый Evaluator поверх каталога планов.
func NewEvaluator(catalog *plans.Catalog) *Evaluator {
	return &Evaluator{catalog: catalog}
}

// parseExpiry разбирает сырую дату окончания подписки. Сравнения всегда
// идут по абсолютному моменту времени (UTC), а не по локальным полям
// календаря, поэтому результат не зависит от часового пояса устройства
// и переходов на летнее время.
func parseExpiry(raw *string) (time.Time, bool) {
	if raw == nil || *raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// IsActive сообщает, действует ли подписка в момент now.
// Требуются одновременно статус active и строго будущая дата окончания.
// Для collector подписки не применяются, всегда false.
// Отсутствующая или повреждённая дата тоже даёт false.
func (e *Evaluator) IsActive(acc models.Account, now time.Time) bool {
	if acc.AccountType == models.AccountTypeCollector {
		return false
	}
	if acc.SubscriptionStatus != models.SubscriptionStatusActive {
		return false
	}
	expiry, ok := parseExpiry(acc.SubscriptionExpiry)
	if !ok {
		return false
	}
	return expiry.After(now)
}

// IsExpired сообщает, истекла ли подписка в момент now. Истёкшей считается
// запись со статусом expired либо с датой окончания, меньшей или равной now.
// Граница намеренно несимметрична с IsActive: в момент, точно равный дате
// окончания, подписка одновременно «не активна» и «истекла».
// Повреждённая дата не означает «истекла» — это отдельное состояние, false.
func (e *Evaluator) IsExpired(acc models.Account, now time.Time) bool {
	if acc.AccountType == models.AccountTypeCollector {
		return false
	}
	if acc.SubscriptionStatus == models.SubscriptionStatusExpired {
		return true
	}
	expiry, ok := parseExpiry(acc.SubscriptionExpiry)
	if !ok {
		return false
	}
	return !expiry.After(now)
}

// RemainingTime возвращает остаток подписки в целых днях и часах.
// Для неактивной подписки и для записи без разбираемой даты возвращает nil.
// Отрицательная разница усечётся до нуля.
func (e *Evaluator) RemainingTime(acc models.Account, now time.Time) *Remaining {
	if !e.IsActive(acc, now) {
		return nil
	}
	expiry, ok := parseExpiry(acc.SubscriptionExpiry)
	if !ok {
		return nil
	}
	ms := expiry.Sub(now).Milliseconds()
	if ms < 0 {
		return &Remaining{}
	}
	const (
		msPerDay  = 24 * 60 * 60 * 1000
		msPerHour = 60 * 60 * 1000
	)
	return &Remaining{
		Days:  int(ms / msPerDay),
		Hours: int((ms % msPerDay) / msPerHour),
	}
}

// IsTrial сообщает, находится ли подписка в пробном периоде.
// Для записей с явным payment_status решает он: trial — да, paid — нет.
// Для старых записей без статуса оплаты действует запасная эвристика:
// активная подписка с остатком меньше семи полных дней считается пробной.
func (e *Evaluator) IsTrial(acc models.Account, now time.Time) bool {
	if !e.IsActive(acc, now) {
		return false
	}
	switch acc.PaymentStatus {
	case models.PaymentStatusTrial:
		return true
	case models.PaymentStatusPaid:
		return false
	}
	rem := e.RemainingTime(acc, now)
	return rem != nil && rem.Days < legacyTrialDays
}

// Details собирает полное производное состояние подписки.
// План подбирается по типу учётной записи и длительности; если пара
// не находится в каталоге, план остаётся nil. IsPaid выставляется для
// явного paid, а также для старых активных записей без статуса оплаты,
// не попавших под пробную эвристику.
func (e *Evaluator) Details(acc models.Account, now time.Time) Details {
	active := e.IsActive(acc, now)
	trial := e.IsTrial(acc, now)

	paid := acc.PaymentStatus == models.PaymentStatusPaid
	if !paid && active && !trial &&
		(acc.PaymentStatus == "" || acc.PaymentStatus == models.PaymentStatusNone) {
		paid = true
	}

	return Details{
		AccountType:   acc.AccountType,
		Status:        acc.SubscriptionStatus,
		Expiry:        acc.SubscriptionExpiry,
		IsActive:      active,
		TimeRemaining: e.RemainingTime(acc, now),
		Plan:          e.catalog.Match(acc.AccountType, acc.SubscriptionDuration),
		IsPaid:        paid,
		IsTrialPeriod: trial,
	}
}
