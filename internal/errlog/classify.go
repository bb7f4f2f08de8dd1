// Package errlog нормализует произвольные ошибки в типизированные записи,
// пишет их в настраиваемые приёмники и хранит ограниченную историю.
package errlog

import (
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cardshowhub/subscription-engine/internal/models"
)

// unknownMessage подставляется вместо nil и нераспознанных значений.
const unknownMessage = "An unknown error occurred"

// BackendError представляет структурированную ошибку внешнего бэкенда:
// пара код/сообщение, как её возвращает API поверх Postgres.
type BackendError struct {
	Code    string
	Message string
	Details string
}

func (e *BackendError) Error() string {
	return e.Message
}

// Коды, которые классификатор распознаёт как нарушение ограничений
// уникальности/целостности и как отказ в доступе на уровне строк.
var (
	constraintCodes = map[string]struct{}{
		pgerrcode.UniqueViolation:     {},
		pgerrcode.ForeignKeyViolation: {},
		pgerrcode.CheckViolation:      {},
	}
	permissionCodes = map[string]struct{}{
		pgerrcode.InsufficientPrivilege: {},
		"PGRST301":                      {},
	}
)

// Option уточняет запись об ошибке в месте вызова.
type Option func(*models.ErrorRecord)

// WithCategory принудительно выставляет категорию; сетевые и
// аутентификационные вызовы помечают свои ошибки независимо от формы.
func WithCategory(category string) Option {
	return func(r *models.ErrorRecord) {
		r.Category = category
	}
}

// WithSeverity переопределяет уровень серьёзности.
func WithSeverity(severity string) Option {
	return func(r *models.ErrorRecord) {
		r.Severity = severity
	}
}

// WithContext добавляет произвольные пары ключ/значение к записи.
func WithContext(ctx map[string]string) Option {
	return func(r *models.ErrorRecord) {
		if r.Context == nil {
			r.Context = make(map[string]string, len(ctx))
		}
		for k, v := range ctx {
			r.Context[k] = v
		}
	}
}

func categoryByCode(code string) string {
	if _, ok := constraintCodes[code]; ok {
		return models.ErrorCategoryValidation
	}
	if _, ok := permissionCodes[code]; ok {
		return models.ErrorCategoryPermission
	}
	return ""
}

// Classify приводит произвольную ошибку к ErrorRecord.
// Структурированные ошибки бэкенда и драйвера Postgres распознаются по коду,
// обычные ошибки дают свою строку сообщения, nil — фиксированную заглушку.
func Classify(raw error, opts ...Option) models.ErrorRecord {
	rec := models.ErrorRecord{
		Category:  models.ErrorCategoryUnknown,
		Severity:  models.ErrorSeverityError,
		Timestamp: time.Now().UTC(),
	}

	var backendErr *BackendError
	var pgErr *pgconn.PgError
	switch {
	case raw == nil:
		rec.Message = unknownMessage
	case errors.As(raw, &backendErr):
		rec.Message = backendErr.Message
		rec.Code = backendErr.Code
		if cat := categoryByCode(backendErr.Code); cat != "" {
			rec.Category = cat
		}
	case errors.As(raw, &pgErr):
		rec.Message = pgErr.Message
		rec.Code = pgErr.Code
		if cat := categoryByCode(pgErr.Code); cat != "" {
			rec.Category = cat
		} else {
			rec.Category = models.ErrorCategoryDatabase
		}
	default:
		rec.Message = raw.Error()
	}
	if rec.Message == "" {
		rec.Message = unknownMessage
	}

	for _, opt := range opts {
		opt(&rec)
	}
	return rec
}
