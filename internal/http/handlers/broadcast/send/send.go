// Package send обрабатывает отправку рассылки участникам шоу.
package send

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/cardshowhub/subscription-engine/internal/http/middlewarectx"
	"github.com/cardshowhub/subscription-engine/internal/http/response"
	"github.com/cardshowhub/subscription-engine/internal/lib/sl"
	"github.com/cardshowhub/subscription-engine/internal/quota"
	"github.com/cardshowhub/subscription-engine/internal/services/broadcast"
)

// Request представляет запрос на отправку рассылки.
type Request struct {
	ShowID  string `json:"show_id" validate:"required,uuid"`
	Phase   string `json:"phase" validate:"required,oneof=pre_show post_show"`
	Message string `json:"message" validate:"required,max=500"`
}

// Service определяет интерфейс сервиса рассылок.
type Service interface {
	Send(ctx context.Context, senderUID, accountType, showID string, phase quota.Phase, body string) (broadcast.Outcome, error)
}

// Handler обрабатывает запросы на отправку рассылки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Отправить рассылку
// @Description Отправляет рассылку участникам шоу в пределах квоты отправителя
// @Tags Broadcasts
// @Accept  json
// @Produce  json
// @Param request body Request true "Рассылка"
// @Success 200 {object} response.Response "Результат отправки"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /broadcasts [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.broadcast.send"
	log := h.log.With(sl.Op(op))

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user UID not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	accountType, _ := r.Context().Value(middlewarectx.AccountType).(string)

	outcome, err := h.service.Send(r.Context(), userUID, accountType, req.ShowID, quota.Phase(req.Phase), req.Message)
	if err != nil {
		log.Error("failed to send broadcast", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OKWithData(outcome))
}
