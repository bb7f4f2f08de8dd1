// Package cancel обрабатывает отмену подписки пользователя.
package cancel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/cardshowhub/subscription-engine/internal/http/middlewarectx"
	"github.com/cardshowhub/subscription-engine/internal/http/response"
	"github.com/cardshowhub/subscription-engine/internal/lib/sl"
	"github.com/cardshowhub/subscription-engine/internal/storage/repository"
)

// Service определяет интерфейс отмены подписки.
type Service interface {
	Cancel(ctx context.Context, userUID string) error
}

// Handler обрабатывает запросы на отмену подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отменить подписку
// @Description Переводит подписку текущего пользователя в состояние expired
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} response.Response "Подписка отменена"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Учётная запись не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /subscriptions/cancel [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.cancel"
	log := h.log.With(sl.Op(op))

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user UID not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.Cancel(r.Context(), userUID); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			log.Error("account not found", slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("account not found"))
			return
		}
		log.Error("failed to cancel subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("subscription canceled", slog.String("user_uid", userUID))
	render.JSON(w, r, response.OKWithData(nil))
}
