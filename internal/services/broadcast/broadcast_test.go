package broadcast

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cardshowhub/subscription-engine/internal/errlog"
	"github.com/cardshowhub/subscription-engine/internal/models"
	"github.com/cardshowhub/subscription-engine/internal/quota"
)

type QuotaMock struct{ mock.Mock }

func (m *QuotaMock) CheckAndConsume(ctx context.Context, senderUID, showID string, phase quota.Phase) (quota.Decision, error) {
	args := m.Called(ctx, senderUID, showID, phase)
	return args.Get(0).(quota.Decision), args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(routingKey string, message any) error {
	return m.Called(routingKey, message).Error(0)
}

type ReporterMock struct{ mock.Mock }

func (m *ReporterMock) Report(ctx context.Context, raw error, opts ...errlog.Option) models.ErrorRecord {
	args := m.Called(ctx, raw)
	return args.Get(0).(models.ErrorRecord)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestSend_PublishesWithinQuota(t *testing.T) {
	quotas := new(QuotaMock)
	publisher := new(PublisherMock)
	reporter := new(ReporterMock)
	svc := New(quotas, publisher, reporter, newNoopLogger())

	quotas.On("CheckAndConsume", mock.Anything, "dealer-1", "show-1", quota.PhasePreShow).
		Return(quota.Decision{Allowed: true, Remaining: 2}, nil).Once()
	publisher.On("Publish", "pre_show", mock.MatchedBy(func(m any) bool {
		msg, ok := m.(Message)
		return ok && msg.SenderUID == "dealer-1" && msg.ShowID == "show-1" && msg.Body == "tables open at 9am"
	})).Return(nil).Once()

	out, err := svc.Send(context.Background(), "dealer-1", models.AccountTypeDealer, "show-1", quota.PhasePreShow, "tables open at 9am")

	require.NoError(t, err)
	assert.True(t, out.Allowed)
	assert.Equal(t, 2, out.Remaining)
	publisher.AssertExpectations(t)
}

func TestSend_QuotaExhaustedIsNormalDenial(t *testing.T) {
	quotas := new(QuotaMock)
	publisher := new(PublisherMock)
	reporter := new(ReporterMock)
	svc := New(quotas, publisher, reporter, newNoopLogger())

	quotas.On("CheckAndConsume", mock.Anything, "org-1", "show-1", quota.PhasePostShow).
		Return(quota.Decision{Allowed: false, Remaining: 0}, nil).Once()

	out, err := svc.Send(context.Background(), "org-1", models.AccountTypeOrganizer, "show-1", quota.PhasePostShow, "thanks for coming")

	require.NoError(t, err)
	assert.False(t, out.Allowed)
	assert.Equal(t, "broadcast quota exhausted", out.Reason)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	reporter.AssertNotCalled(t, "Report", mock.Anything, mock.Anything)
}

func TestSend_RoleGate(t *testing.T) {
	tests := []struct {
		name        string
		accountType string
		phase       quota.Phase
		wantAllowed bool
	}{
		{"dealer may send pre-show", models.AccountTypeDealer, quota.PhasePreShow, true},
		{"organizer may send pre-show", models.AccountTypeOrganizer, quota.PhasePreShow, true},
		{"dealer may not send post-show", models.AccountTypeDealer, quota.PhasePostShow, false},
		{"collector may not broadcast at all", models.AccountTypeCollector, quota.PhasePreShow, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quotas := new(QuotaMock)
			publisher := new(PublisherMock)
			reporter := new(ReporterMock)
			svc := New(quotas, publisher, reporter, newNoopLogger())

			if tt.wantAllowed {
				quotas.On("CheckAndConsume", mock.Anything, "u-1", "show-1", tt.phase).
					Return(quota.Decision{Allowed: true, Remaining: 1}, nil).Once()
				publisher.On("Publish", string(tt.phase), mock.Anything).Return(nil).Once()
			}

			out, err := svc.Send(context.Background(), "u-1", tt.accountType, "show-1", tt.phase, "hello")

			require.NoError(t, err)
			assert.Equal(t, tt.wantAllowed, out.Allowed)
			if !tt.wantAllowed {
				quotas.AssertNotCalled(t, "CheckAndConsume", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestSend_PublishFailureIsReported(t *testing.T) {
	quotas := new(QuotaMock)
	publisher := new(PublisherMock)
	reporter := new(ReporterMock)
	svc := New(quotas, publisher, reporter, newNoopLogger())

	pubErr := errors.New("channel closed")
	quotas.On("CheckAndConsume", mock.Anything, "org-1", "show-1", quota.PhasePreShow).
		Return(quota.Decision{Allowed: true, Remaining: 0}, nil).Once()
	publisher.On("Publish", "pre_show", mock.Anything).Return(pubErr).Once()
	reporter.On("Report", mock.Anything, pubErr).Return(models.ErrorRecord{}).Once()

	_, err := svc.Send(context.Background(), "org-1", models.AccountTypeOrganizer, "show-1", quota.PhasePreShow, "hello")

	assert.Error(t, err)
	reporter.AssertExpectations(t)
}
