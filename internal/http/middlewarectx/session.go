package middlewarectx

import (
	"context"
	"errors"

	"github.com/cardshowhub/subscription-engine/internal/models"
)

// ErrNoSession возвращается, когда в контексте запроса нет данных сессии.
var ErrNoSession = errors.New("no active session")

// SessionSource отдаёт сессию пользователя из контекста запроса,
// заполненного SessionMiddleware. Реализует источник сессии для
// платёжного оркестратора.
type SessionSource struct{}

// Session возвращает сессию текущего запроса или ErrNoSession.
func (SessionSource) Session(ctx context.Context) (*models.Session, error) {
	uid, _ := ctx.Value(UserUID).(string)
	token, _ := ctx.Value(AccessToken).(string)
	if uid == "" || token == "" {
		return nil, ErrNoSession
	}
	return &models.Session{UserUID: uid, AccessToken: token}, nil
}
