// Package plans содержит каталог планов подписки. Каталог неизменяемый:
// движок только читает его при создании платежа и при определении
// текущего плана учётной записи.
package plans

import (
	"errors"

	"github.com/cardshowhub/subscription-engine/internal/models"
)

// ErrPlanNotFound возвращается при поиске несуществующего плана.
// Это терминальная ошибка валидации, повторять запрос бессмысленно.
var ErrPlanNotFound = errors.New("subscription plan not found")

// Catalog хранит закрытый набор планов подписки.
type Catalog struct {
	plans []models.SubscriptionPlan
}

// NewCatalog создаёт каталог из переданного набора планов.
func NewCatalog(entries []models.SubscriptionPlan) *Catalog {
	return &Catalog{plans: entries}
}

// Default возвращает каталог со штатным набором планов приложения.
func Default() *Catalog {
	return NewCatalog([]models.SubscriptionPlan{
		{
			ID:         "dealer-monthly",
			Type:       models.PlanTypeDealer,
			Duration:   models.PlanDurationMonthly,
			PriceCents: 999,
			Currency:   "usd",
			Features:   []string{"dealer badge", "show tables listing", "pre-show broadcasts"},
		},
		{
			ID:         "dealer-annual",
			Type:       models.PlanTypeDealer,
			Duration:   models.PlanDurationAnnual,
			PriceCents: 9999,
			Currency:   "usd",
			Features:   []string{"dealer badge", "show tables listing", "pre-show broadcasts"},
		},
		{
			ID:         "organizer-monthly",
			Type:       models.PlanTypeOrganizer,
			Duration:   models.PlanDurationMonthly,
			PriceCents: 1999,
			Currency:   "usd",
			Features:   []string{"show management", "pre-show broadcasts", "post-show broadcasts"},
		},
		{
			ID:         "organizer-annual",
			Type:       models.PlanTypeOrganizer,
			Duration:   models.PlanDurationAnnual,
			PriceCents: 19999,
			Currency:   "usd",
			Features:   []string{"show management", "pre-show broadcasts", "post-show broadcasts"},
		},
	})
}

// FindByID ищет план по идентификатору.
func (c *Catalog) FindByID(id string) (*models.SubscriptionPlan, error) {
	for i := range c.plans {
		if c.plans[i].ID == id {
			return &c.plans[i], nil
		}
	}
	return nil, ErrPlanNotFound
}

// Match подбирает план по типу учётной записи и длительности подписки.
// Возвращает nil, если подходящего плана нет (например, для collector).
func (c *Catalog) Match(accountType, duration string) *models.SubscriptionPlan {
	for i := range c.plans {
		if c.plans[i].Type == accountType && c.plans[i].Duration == duration {
			return &c.plans[i]
		}
	}
	return nil
}

// All возвращает копию списка планов.
func (c *Catalog) All() []models.SubscriptionPlan {
	out := make([]models.SubscriptionPlan, len(c.plans))
	copy(out, c.plans)
	return out
}
