// Package errorlog отдаёт и очищает сохранённую историю ошибок.
package errorlog

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/cardshowhub/subscription-engine/internal/http/response"
	"github.com/cardshowhub/subscription-engine/internal/lib/sl"
	"github.com/cardshowhub/subscription-engine/internal/models"
)

// Service определяет доступ к истории ошибок.
type Service interface {
	History(ctx context.Context) ([]models.ErrorRecord, error)
	Clear(ctx context.Context) error
}

// Handler обрабатывает запросы к истории ошибок.
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

// List godoc
// @Summary Получить историю ошибок
// @Description Возвращает сохранённые записи об ошибках от старых к новым
// @Tags Errors
// @Produce  json
// @Success 200 {object} response.Response "История ошибок"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /errors [get]
// @Security BearerAuth
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.errorlog.List"
	log := h.log.With(sl.Op(op))

	records, err := h.service.History(r.Context())
	if err != nil {
		log.Error("failed to load error history", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}
	if records == nil {
		records = []models.ErrorRecord{}
	}
	render.JSON(w, r, response.OKWithData(records))
}

// Clear godoc
// @Summary Очистить историю ошибок
// @Description Удаляет все сохранённые записи об ошибках
// @Tags Errors
// @Produce  json
// @Success 200 {object} response.Response "История очищена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /errors [delete]
// @Security BearerAuth
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.errorlog.Clear"
	log := h.log.With(sl.Op(op))

	if err := h.service.Clear(r.Context()); err != nil {
		log.Error("failed to clear error history", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}
	render.JSON(w, r, response.OKWithData(nil))
}
