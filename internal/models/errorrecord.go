package models

import "time"

// Категории нормализованных ошибок.
const (
	ErrorCategoryValidation     = "validation"
	ErrorCategoryPermission     = "permission"
	ErrorCategoryNetwork        = "network"
	ErrorCategoryAuthentication = "authentication"
	ErrorCategoryDatabase       = "database"
	ErrorCategoryUnknown        = "unknown"
)

// Уровни серьёзности ошибок.
const (
	ErrorSeverityWarning  = "warning"
	ErrorSeverityError    = "error"
	ErrorSeverityCritical = "critical"
)

// ErrorRecord — нормализованная запись об ошибке, полученная
// классификатором из произвольного значения. Хранится в ограниченном
// по длине журнале, самые старые записи вытесняются первыми.
type ErrorRecord struct {
	Message   string            `json:"message"`
	Category  string            `json:"category"`
	Severity  string            `json:"severity"`
	Code      string            `json:"code,omitempty"`
	Context   map[string]string `json:"context,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
