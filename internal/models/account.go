// Package models содержит доменные структуры движка подписок:
// учётную запись пользователя, каталожный план, запись журнала платежей
// и нормализованную запись об ошибке.
package models

import "time"

// Возможные типы учётной записи.
const (
	AccountTypeCollector = "collector"
	AccountTypeDealer    = "dealer"
	AccountTypeOrganizer = "organizer"
)

// Возможные статусы подписки, хранящиеся в учётной записи.
const (
	SubscriptionStatusNone    = "none"
	SubscriptionStatusActive  = "active"
	SubscriptionStatusExpired = "expired"
)

// Возможные статусы оплаты.
const (
	PaymentStatusNone  = "none"
	PaymentStatusTrial = "trial"
	PaymentStatusPaid  = "paid"
)

// Account представляет учётную запись пользователя приложения.
// Поле SubscriptionExpiry хранится как сырая ISO-8601 строка: у старых
// записей значение может быть пустым или повреждённым, поэтому оно
// разбирается только в момент вычисления статуса и никогда не считается
// достоверным само по себе.
type Account struct {
	UserUID              string     // Уникальный идентификатор пользователя
	AccountType          string     // collector, dealer или organizer
	SubscriptionStatus   string     // none, active или expired
	SubscriptionExpiry   *string    // Сырая ISO-8601 дата окончания подписки, может быть nil или мусором
	SubscriptionDuration string     // monthly или annual; пустая строка у записей без подписки
	PaymentStatus        string     // none, trial или paid
	UpdatedAt            *time.Time // Дата последнего изменения записи
}
