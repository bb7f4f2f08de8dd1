package errlog

import (
	"strings"

	"github.com/jackc/pgerrcode"

	"github.com/cardshowhub/subscription-engine/internal/models"
)

const genericFriendly = "Something went wrong. Please try again."

// Короткие человеческие формулировки для известных кодов бэкенда.
var friendlyByCode = map[string]string{
	pgerrcode.UniqueViolation:       "This information already exists in our system.",
	pgerrcode.ForeignKeyViolation:   "This record is linked to other data and cannot be changed.",
	pgerrcode.CheckViolation:        "Some of the entered information is not valid.",
	pgerrcode.InsufficientPrivilege: "You don't have permission to perform this action.",
	"PGRST301":                      "You don't have permission to perform this action.",
}

// Формулировки по умолчанию для каждой категории.
var friendlyByCategory = map[string]string{
	models.ErrorCategoryValidation:     "Please check the information you entered and try again.",
	models.ErrorCategoryPermission:     "You don't have permission to perform this action.",
	models.ErrorCategoryNetwork:        "Connection problem. Please check your internet and try again.",
	models.ErrorCategoryAuthentication: "Please sign in again to continue.",
	models.ErrorCategoryDatabase:       "We couldn't save your changes. Please try again.",
	models.ErrorCategoryUnknown:        genericFriendly,
}

// Подстроки, выдающие техническое сообщение, которое нельзя показывать
// пользователю как есть.
var technicalMarkers = []string{
	"sql", "pgx", "pq:", "error:", "sqlstate", "violates", "constraint",
	"nil pointer", "panic", "stack", "dial tcp", "eof", "_",
}

// FriendlyMessage подбирает короткий текст для показа пользователю.
// Известный код бэкенда даёт фиксированную формулировку; исходное
// сообщение проходит насквозь, только если выглядит безопасным для
// конечного пользователя, иначе подставляется формулировка категории.
func FriendlyMessage(rec models.ErrorRecord) string {
	if msg, ok := friendlyByCode[rec.Code]; ok {
		return msg
	}
	if strings.TrimSpace(rec.Message) == "" || rec.Message == unknownMessage {
		if msg, ok := friendlyByCategory[rec.Category]; ok {
			return msg
		}
		return genericFriendly
	}
	if looksEndUserSafe(rec.Message) {
		return rec.Message
	}
	if msg, ok := friendlyByCategory[rec.Category]; ok {
		return msg
	}
	return genericFriendly
}

func looksEndUserSafe(msg string) bool {
	if len(msg) > 80 {
		return false
	}
	lower := strings.ToLower(msg)
	for _, marker := range technicalMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}
