package models

import "time"

// Статусы записи журнала платежей.
const (
	LedgerStatusSucceeded = "succeeded"
	LedgerStatusFailed    = "failed"
)

// PaymentLedgerEntry представляет одну строку журнала платежей.
// Журнал append-only: каждая попытка оплаты, дошедшая до сверки,
// оставляет ровно одну строку независимо от результата обновления
// учётной записи.
type PaymentLedgerEntry struct {
	ID            int        `json:"id"`
	UserUID       string     `json:"user_uid"`
	PlanID        string     `json:"plan_id"`
	AmountCents   int        `json:"amount_cents"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"` // succeeded или failed
	TransactionID string     `json:"transaction_id"`
	ErrorMessage  *string    `json:"error_message,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}
