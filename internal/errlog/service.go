package errlog

import (
	"context"
	"log/slog"

	"github.com/cardshowhub/subscription-engine/internal/lib/sl"
	"github.com/cardshowhub/subscription-engine/internal/models"
)

// Config — явная конфигурация логгера ошибок, передаётся при создании
// сервиса. Глобального изменяемого состояния у пакета нет.
type Config struct {
	Console   bool `yaml:"console" env:"ERRLOG_CONSOLE" env-default:"true"`
	Storage   bool `yaml:"storage" env:"ERRLOG_STORAGE" env-default:"true"`
	Remote    bool `yaml:"remote" env:"ERRLOG_REMOTE" env-default:"false"`
	MaxStored int  `yaml:"max_stored" env:"ERRLOG_MAX_STORED" env-default:"50"`
}

// Store хранит ограниченную историю записей об ошибках.
type Store interface {
	// Append добавляет запись, удерживая длину истории не больше max
	// (самые старые записи вытесняются первыми).
	Append(ctx context.Context, rec models.ErrorRecord, max int) error
	// List возвращает историю от старых записей к новым.
	List(ctx context.Context) ([]models.ErrorRecord, error)
	// Clear удаляет историю целиком.
	Clear(ctx context.Context) error
}

// RemoteSink отправляет записи во внешнюю систему мониторинга.
type RemoteSink interface {
	Send(ctx context.Context, rec models.ErrorRecord) error
}

// Service пишет классифицированные ошибки в консоль, хранилище и внешний
// приёмник. Каждый приёмник независим и best-effort: сбой записи сам
// логируется в консоль и никогда не доходит до вызывающего кода.
type Service struct {
	cfg    Config
	log    *slog.Logger
	store  Store
	remote RemoteSink
}

// New создает сервис логирования ошибок с фиксированной конфигурацией.
func New(log *slog.Logger, cfg Config, store Store, remote RemoteSink) *Service {
	if cfg.MaxStored <= 0 {
		cfg.MaxStored = 50
	}
	return &Service{cfg: cfg, log: log, store: store, remote: remote}
}

// Log записывает готовую запись во все включённые приёмники.
func (s *Service) Log(ctx context.Context, rec models.ErrorRecord) {
	if s.cfg.Console {
		s.console(rec)
	}
	if s.cfg.Storage && s.store != nil {
		if err := s.store.Append(ctx, rec, s.cfg.MaxStored); err != nil {
			s.log.Warn("failed to persist error record", sl.Err(err))
		}
	}
	if s.cfg.Remote && s.remote != nil {
		if err := s.remote.Send(ctx, rec); err != nil {
			s.log.Warn("failed to send error record to remote sink", sl.Err(err))
		}
	}
}

// Report классифицирует ошибку, логирует её и возвращает запись.
func (s *Service) Report(ctx context.Context, raw error, opts ...Option) models.ErrorRecord {
	rec := Classify(raw, opts...)
	s.Log(ctx, rec)
	return rec
}

// History возвращает сохранённую историю ошибок.
func (s *Service) History(ctx context.Context) ([]models.ErrorRecord, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.List(ctx)
}

// Clear очищает сохранённую историю ошибок.
func (s *Service) Clear(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return s.store.Clear(ctx)
}

func (s *Service) console(rec models.ErrorRecord) {
	attrs := []any{
		slog.String("category", rec.Category),
		slog.String("severity", rec.Severity),
	}
	if rec.Code != "" {
		attrs = append(attrs, slog.String("code", rec.Code))
	}
	for k, v := range rec.Context {
		attrs = append(attrs, slog.String(k, v))
	}
	switch rec.Severity {
	case models.ErrorSeverityWarning:
		s.log.Warn(rec.Message, attrs...)
	default:
		s.log.Error(rec.Message, attrs...)
	}
}
