package errlog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cardshowhub/subscription-engine/internal/models"
)

type StoreMock struct{ mock.Mock }

func (m *StoreMock) Append(ctx context.Context, rec models.ErrorRecord, max int) error {
	return m.Called(ctx, rec, max).Error(0)
}
func (m *StoreMock) List(ctx context.Context) ([]models.ErrorRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ErrorRecord), args.Error(1)
}
func (m *StoreMock) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type RemoteMock struct{ mock.Mock }

func (m *RemoteMock) Send(ctx context.Context, rec models.ErrorRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		raw          error
		opts         []Option
		wantMessage  string
		wantCategory string
		wantCode     string
	}{
		{
			name:         "nil error becomes fixed unknown message",
			raw:          nil,
			wantMessage:  "An unknown error occurred",
			wantCategory: models.ErrorCategoryUnknown,
		},
		{
			name:         "plain error keeps its message",
			raw:          errors.New("connection refused"),
			wantMessage:  "connection refused",
			wantCategory: models.ErrorCategoryUnknown,
		},
		{
			name:         "backend unique violation maps to validation",
			raw:          &BackendError{Code: "23505", Message: "duplicate key value violates unique constraint"},
			wantMessage:  "duplicate key value violates unique constraint",
			wantCategory: models.ErrorCategoryValidation,
			wantCode:     "23505",
		},
		{
			name:         "backend row security violation maps to permission",
			raw:          &BackendError{Code: "42501", Message: "new row violates row-level security policy"},
			wantMessage:  "new row violates row-level security policy",
			wantCategory: models.ErrorCategoryPermission,
			wantCode:     "42501",
		},
		{
			name:         "backend error with unrecognized code stays unknown",
			raw:          &BackendError{Code: "XX000", Message: "internal error"},
			wantMessage:  "internal error",
			wantCategory: models.ErrorCategoryUnknown,
			wantCode:     "XX000",
		},
		{
			name:         "pg driver error without known code maps to database",
			raw:          &pgconn.PgError{Code: "57014", Message: "canceling statement due to statement timeout"},
			wantMessage:  "canceling statement due to statement timeout",
			wantCategory: models.ErrorCategoryDatabase,
			wantCode:     "57014",
		},
		{
			name:         "pg driver unique violation maps to validation",
			raw:          &pgconn.PgError{Code: "23505", Message: "duplicate key"},
			wantMessage:  "duplicate key",
			wantCategory: models.ErrorCategoryValidation,
			wantCode:     "23505",
		},
		{
			name:         "call site category override wins",
			raw:          errors.New("token expired"),
			opts:         []Option{WithCategory(models.ErrorCategoryAuthentication)},
			wantMessage:  "token expired",
			wantCategory: models.ErrorCategoryAuthentication,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Classify(tt.raw, tt.opts...)
			assert.Equal(t, tt.wantMessage, rec.Message)
			assert.Equal(t, tt.wantCategory, rec.Category)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.False(t, rec.Timestamp.IsZero())
		})
	}
}

func TestClassify_Options(t *testing.T) {
	rec := Classify(errors.New("boom"),
		WithSeverity(models.ErrorSeverityCritical),
		WithContext(map[string]string{"user_uid": "u-1"}))

	assert.Equal(t, models.ErrorSeverityCritical, rec.Severity)
	assert.Equal(t, "u-1", rec.Context["user_uid"])
}

func TestService_Log_WritesToEnabledSinks(t *testing.T) {
	store := new(StoreMock)
	remote := new(RemoteMock)
	svc := New(newNoopLogger(), Config{Console: true, Storage: true, Remote: true, MaxStored: 25}, store, remote)

	rec := Classify(errors.New("boom"))
	store.On("Append", mock.Anything, rec, 25).Return(nil).Once()
	remote.On("Send", mock.Anything, rec).Return(nil).Once()

	svc.Log(context.Background(), rec)

	store.AssertExpectations(t)
	remote.AssertExpectations(t)
}

func TestService_Log_StoreFailureIsSwallowed(t *testing.T) {
	store := new(StoreMock)
	svc := New(newNoopLogger(), Config{Console: false, Storage: true, MaxStored: 10}, store, nil)

	rec := Classify(errors.New("boom"))
	store.On("Append", mock.Anything, rec, 10).Return(errors.New("redis down")).Once()

	assert.NotPanics(t, func() {
		svc.Log(context.Background(), rec)
	})
	store.AssertExpectations(t)
}

func TestService_Log_DisabledStorageSkipsStore(t *testing.T) {
	store := new(StoreMock)
	svc := New(newNoopLogger(), Config{Console: false, Storage: false}, store, nil)

	svc.Log(context.Background(), Classify(errors.New("boom")))

	store.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
}

func TestFriendlyMessage(t *testing.T) {
	tests := []struct {
		name string
		rec  models.ErrorRecord
		want string
	}{
		{
			name: "known unique violation code",
			rec:  models.ErrorRecord{Code: "23505", Message: "duplicate key value violates unique constraint \"accounts_pkey\"", Category: models.ErrorCategoryValidation},
			want: "This information already exists in our system.",
		},
		{
			name: "short clean message passes through",
			rec:  models.ErrorRecord{Message: "Payment was canceled.", Category: models.ErrorCategoryUnknown},
			want: "Payment was canceled.",
		},
		{
			name: "technical message replaced by category default",
			rec:  models.ErrorRecord{Message: "dial tcp 10.0.0.1:443: connect: connection refused", Category: models.ErrorCategoryNetwork},
			want: "Connection problem. Please check your internet and try again.",
		},
		{
			name: "overlong message replaced by category default",
			rec: models.ErrorRecord{
				Message:  "the subscription purchase could not be completed because the upstream provider rejected the request for an unspecified reason",
				Category: models.ErrorCategoryUnknown,
			},
			want: "Something went wrong. Please try again.",
		},
		{
			name: "empty message falls back to generic copy",
			rec:  models.ErrorRecord{Message: "   ", Category: models.ErrorCategoryAuthentication},
			want: "Please sign in again to continue.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FriendlyMessage(tt.rec))
		})
	}
}
