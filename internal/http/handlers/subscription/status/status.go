// Package status обрабатывает запрос статуса подписки пользователя.
package status

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/cardshowhub/subscription-engine/internal/http/middlewarectx"
	"github.com/cardshowhub/subscription-engine/internal/http/response"
	"github.com/cardshowhub/subscription-engine/internal/lib/sl"
	"github.com/cardshowhub/subscription-engine/internal/models"
	svcstatus "github.com/cardshowhub/subscription-engine/internal/services/status"
	"github.com/cardshowhub/subscription-engine/internal/storage/repository"
)

// AccountProvider определяет доступ к учётной записи пользователя.
type AccountProvider interface {
	GetAccount(ctx context.Context, userUID string) (*models.Account, error)
}

// Evaluator определяет вычисление производного состояния подписки.
type Evaluator interface {
	Details(acc models.Account, now time.Time) svcstatus.Details
}

// Handler обрабатывает запросы статуса подписки.
type Handler struct {
	log       *slog.Logger
	accounts  AccountProvider
	evaluator Evaluator
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, accounts AccountProvider, evaluator Evaluator) *Handler {
	return &Handler{
		log:       log,
		accounts:  accounts,
		evaluator: evaluator,
	}
}

// ServeHTTP godoc
// @Summary Получить статус подписки
// @Description Возвращает производное состояние подписки текущего пользователя
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} response.Response "Состояние подписки"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Учётная запись не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /subscriptions/status [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.status"
	log := h.log.With(sl.Op(op))

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user UID not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	acc, err := h.accounts.GetAccount(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			log.Error("account not found", slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("account not found"))
			return
		}
		log.Error("failed to get account", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	details := h.evaluator.Details(*acc, time.Now())
	render.JSON(w, r, response.OKWithData(details))
}
