// Package sheetcreate обрабатывает создание платёжного листа.
package sheetcreate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/cardshowhub/subscription-engine/internal/errlog"
	"github.com/cardshowhub/subscription-engine/internal/http/middlewarectx"
	"github.com/cardshowhub/subscription-engine/internal/http/response"
	"github.com/cardshowhub/subscription-engine/internal/lib/sl"
	"github.com/cardshowhub/subscription-engine/internal/models"
	"github.com/cardshowhub/subscription-engine/internal/services/payment"
)

// Request представляет запрос на создание платёжного листа.
type Request struct {
	PlanID string `json:"plan_id" validate:"required"`
}

// Service определяет интерфейс платёжного оркестратора.
type Service interface {
	CreatePaymentSheet(ctx context.Context, sessions payment.SessionSource, userUID, planID string) payment.Result
}

// Handler обрабатывает запросы на создание платёжного листа.
type Handler struct {
	log      *slog.Logger
	payments Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, payments Service) *Handler {
	return &Handler{
		log:      log,
		payments: payments,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Провести оплату подписки
// @Description Создаёт платёжный лист для выбранного плана и проводит оплату
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body Request true "План подписки"
// @Success 200 {object} response.Response "Платёж проведён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.ErrorResponse "Платёж не прошёл"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /payments/sheet [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.sheetcreate"
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

	result := h.payments.CreatePaymentSheet(r.Context(), middlewarectx.SessionSource{}, userUID, req.PlanID)
	if !result.Success {
		// Пользователю уходит только короткое классифицированное сообщение.
		friendly := errlog.FriendlyMessage(models.ErrorRecord{
			Message:  result.Error,
			Category: models.ErrorCategoryUnknown,
		})
		w.WriteHeader(http.StatusPaymentRequired)
		render.JSON(w, r, response.Error(friendly))
		return
	}

	log.Info("payment sheet completed", slog.String("transaction_id", result.TransactionID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"transaction_id": result.TransactionID,
	}))
}
