package models

import "time"

// Типы и длительности планов подписки.
const (
	PlanTypeDealer    = "dealer"
	PlanTypeOrganizer = "organizer"

	PlanDurationMonthly = "monthly"
	PlanDurationAnnual  = "annual"
)

// SubscriptionPlan описывает неизменяемую запись каталога планов.
type SubscriptionPlan struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`     // dealer или organizer
	Duration   string   `json:"duration"` // monthly или annual
	PriceCents int      `json:"price_cents"`
	Currency   string   `json:"currency"`
	Features   []string `json:"features"`
}

// ExpiryFrom возвращает дату окончания подписки, купленной в момент start.
// Месячные планы продлеваются на календарный месяц, годовые — на год.
func (p SubscriptionPlan) ExpiryFrom(start time.Time) time.Time {
	if p.Duration == PlanDurationAnnual {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}
