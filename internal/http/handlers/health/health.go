// Package health отдаёт состояние зависимостей сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/cardshowhub/subscription-engine/internal/http/response"
	"github.com/cardshowhub/subscription-engine/internal/lib/sl"
)

// Pinger проверяет доступность одной зависимости.
type Pinger interface {
	Healthcheck(ctx context.Context) error
}

// Handler обрабатывает запросы проверки работоспособности.
type Handler struct {
	log   *slog.Logger
	cache Pinger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, cache Pinger) *Handler {
	return &Handler{
		log:   log,
		cache: cache,
	}
}

// ServeHTTP godoc
// @Summary Проверка работоспособности
// @Description Возвращает статус сервиса и его зависимостей
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response "Сервис работает"
// @Failure 503 {object} response.ErrorResponse "Зависимость недоступна"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	if h.cache != nil {
		if err := h.cache.Healthcheck(r.Context()); err != nil {
			h.log.Error("cache healthcheck failed", sl.Op(op), sl.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("cache unavailable"))
			return
		}
	}
	render.JSON(w, r, response.OKWithData(map[string]string{"status": "healthy"}))
}
