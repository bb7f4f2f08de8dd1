package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardshowhub/subscription-engine/internal/models"
	"github.com/cardshowhub/subscription-engine/internal/plans"
)

func strPtr(s string) *string { return &s }

func dealerAccount(expiry *string, paymentStatus string) models.Account {
	return models.Account{
		UserUID:              "user-1",
		AccountType:          models.AccountTypeDealer,
		SubscriptionStatus:   models.SubscriptionStatusActive,
		SubscriptionExpiry:   expiry,
		SubscriptionDuration: models.PlanDurationMonthly,
		PaymentStatus:        paymentStatus,
	}
}

func TestEvaluator_IsActiveIsExpired_Boundaries(t *testing.T) {
	ev := NewEvaluator(plans.Default())
	now := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		acc         models.Account
		wantActive  bool
		wantExpired bool
	}{
		{
			name:        "expiry exactly equal to now is not active and expired",
			acc:         dealerAccount(strPtr(now.Format(time.RFC3339)), models.PaymentStatusPaid),
			wantActive:  false,
			wantExpired: true,
		},
		{
			name:        "expiry one millisecond in the future",
			acc:         dealerAccount(strPtr(now.Add(time.Millisecond).Format(time.RFC3339Nano)), models.PaymentStatusPaid),
			wantActive:  true,
			wantExpired: false,
		},
		{
			name:        "expiry one millisecond in the past",
			acc:         dealerAccount(strPtr(now.Add(-time.Millisecond).Format(time.RFC3339Nano)), models.PaymentStatusPaid),
			wantActive:  false,
			wantExpired: true,
		},
		{
			name: "expired status without expiry date",
			acc: models.Account{
				AccountType:        models.AccountTypeDealer,
				SubscriptionStatus: models.SubscriptionStatusExpired,
			},
			wantActive:  false,
			wantExpired: true,
		},
		{
			name:        "malformed expiry is neither active nor expired",
			acc:         dealerAccount(strPtr("not-a-date"), models.PaymentStatusPaid),
			wantActive:  false,
			wantExpired: false,
		},
		{
			name:        "missing expiry is neither active nor expired",
			acc:         dealerAccount(nil, models.PaymentStatusPaid),
			wantActive:  false,
			wantExpired: false,
		},
		{
			name: "collector accounts are always inactive and never expired",
			acc: models.Account{
				AccountType:        models.AccountTypeCollector,
				SubscriptionStatus: models.SubscriptionStatusExpired,
				SubscriptionExpiry: strPtr(now.Add(-time.Hour).Format(time.RFC3339)),
			},
			wantActive:  false,
			wantExpired: false,
		},
		{
			name: "active status with past expiry is expired",
			acc: func() models.Account {
				a := dealerAccount(strPtr(now.Add(-48*time.Hour).Format(time.RFC3339)), models.PaymentStatusPaid)
				return a
			}(),
			wantActive:  false,
			wantExpired: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantActive, ev.IsActive(tt.acc, now))
			assert.Equal(t, tt.wantExpired, ev.IsExpired(tt.acc, now))
		})
	}
}

func TestEvaluator_IsActive_StableAcrossTimezones(t *testing.T) {
	ev := NewEvaluator(plans.Default())
	now := time.Date(2025, 3, 30, 1, 30, 0, 0, time.UTC)

	// Та же дата окончания, записанная со смещением +02:00 — один и тот же
	// абсолютный момент, результат не должен зависеть от представления.
	utc := dealerAccount(strPtr("2025-03-30T02:00:00Z"), models.PaymentStatusPaid)
	offset := dealerAccount(strPtr("2025-03-30T04:00:00+02:00"), models.PaymentStatusPaid)

	assert.Equal(t, ev.IsActive(utc, now), ev.IsActive(offset, now))
	assert.True(t, ev.IsActive(offset, now))
}

func TestEvaluator_RemainingTime(t *testing.T) {
	ev := NewEvaluator(plans.Default())
	now := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		acc  models.Account
		want *Remaining
	}{
		{
			name: "whole days and leftover hours",
			acc:  dealerAccount(strPtr(now.Add(3*24*time.Hour+5*time.Hour+59*time.Minute).Format(time.RFC3339)), models.PaymentStatusPaid),
			want: &Remaining{Days: 3, Hours: 5},
		},
		{
			name: "less than an hour left",
			acc:  dealerAccount(strPtr(now.Add(30*time.Minute).Format(time.RFC3339)), models.PaymentStatusPaid),
			want: &Remaining{Days: 0, Hours: 0},
		},
		{
			name: "inactive subscription yields nil",
			acc: models.Account{
				AccountType:        models.AccountTypeDealer,
				SubscriptionStatus: models.SubscriptionStatusExpired,
				SubscriptionExpiry: strPtr(now.Add(24 * time.Hour).Format(time.RFC3339)),
			},
			want: nil,
		},
		{
			name: "malformed expiry yields nil",
			acc:  dealerAccount(strPtr("garbage"), models.PaymentStatusPaid),
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ev.RemainingTime(tt.acc, now))
		})
	}
}

func TestEvaluator_IsTrial(t *testing.T) {
	ev := NewEvaluator(plans.Default())
	now := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		acc  models.Account
		want bool
	}{
		{
			name: "explicit trial status",
			acc:  dealerAccount(strPtr(now.Add(20*24*time.Hour).Format(time.RFC3339)), models.PaymentStatusTrial),
			want: true,
		},
		{
			name: "explicit paid status is never trial even with short remainder",
			acc:  dealerAccount(strPtr(now.Add(2*24*time.Hour).Format(time.RFC3339)), models.PaymentStatusPaid),
			want: false,
		},
		{
			name: "legacy record with six remaining days is trial",
			acc:  dealerAccount(strPtr(now.Add(6*24*time.Hour+3*time.Hour).Format(time.RFC3339)), models.PaymentStatusNone),
			want: true,
		},
		{
			name: "legacy record with exactly seven remaining days is not trial",
			acc:  dealerAccount(strPtr(now.Add(7*24*time.Hour).Format(time.RFC3339)), models.PaymentStatusNone),
			want: false,
		},
		{
			name: "legacy record with empty payment status uses the fallback",
			acc:  dealerAccount(strPtr(now.Add(24*time.Hour).Format(time.RFC3339)), ""),
			want: true,
		},
		{
			name: "inactive subscription is never trial",
			acc: models.Account{
				AccountType:        models.AccountTypeDealer,
				SubscriptionStatus: models.SubscriptionStatusExpired,
				PaymentStatus:      models.PaymentStatusTrial,
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ev.IsTrial(tt.acc, now))
		})
	}
}

func TestEvaluator_Details(t *testing.T) {
	ev := NewEvaluator(plans.Default())
	now := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)

	t.Run("paid dealer resolves plan from catalog", func(t *testing.T) {
		acc := dealerAccount(strPtr(now.Add(20*24*time.Hour).Format(time.RFC3339)), models.PaymentStatusPaid)
		d := ev.Details(acc, now)

		require.NotNil(t, d.Plan)
		assert.Equal(t, "dealer-monthly", d.Plan.ID)
		assert.True(t, d.IsActive)
		assert.True(t, d.IsPaid)
		assert.False(t, d.IsTrialPeriod)
		require.NotNil(t, d.TimeRemaining)
		assert.Equal(t, 20, d.TimeRemaining.Days)
	})

	t.Run("legacy active record without payment status is treated as paid", func(t *testing.T) {
		acc := dealerAccount(strPtr(now.Add(30*24*time.Hour).Format(time.RFC3339)), "")
		d := ev.Details(acc, now)

		assert.True(t, d.IsPaid)
		assert.False(t, d.IsTrialPeriod)
	})

	t.Run("collector account has no plan and no remaining time", func(t *testing.T) {
		acc := models.Account{
			AccountType:        models.AccountTypeCollector,
			SubscriptionStatus: models.SubscriptionStatusNone,
		}
		d := ev.Details(acc, now)

		assert.Nil(t, d.Plan)
		assert.Nil(t, d.TimeRemaining)
		assert.False(t, d.IsActive)
		assert.False(t, d.IsPaid)
	})

	t.Run("unknown duration yields nil plan", func(t *testing.T) {
		acc := dealerAccount(strPtr(now.Add(24*time.Hour).Format(time.RFC3339)), models.PaymentStatusPaid)
		acc.SubscriptionDuration = "weekly"
		d := ev.Details(acc, now)

		assert.Nil(t, d.Plan)
		assert.True(t, d.IsActive)
	})
}
