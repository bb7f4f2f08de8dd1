// Package engine предоставляет маршруты движка подписок.
package engine

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/cardshowhub/subscription-engine/internal/cache"
	"github.com/cardshowhub/subscription-engine/internal/errlog"
	sendhandler "github.com/cardshowhub/subscription-engine/internal/http/handlers/broadcast/send"
	errorloghandler "github.com/cardshowhub/subscription-engine/internal/http/handlers/errorlog"
	healthhandler "github.com/cardshowhub/subscription-engine/internal/http/handlers/health"
	"github.com/cardshowhub/subscription-engine/internal/http/handlers/payment/sheetcreate"
	cancelhandler "github.com/cardshowhub/subscription-engine/internal/http/handlers/subscription/cancel"
	statushandler "github.com/cardshowhub/subscription-engine/internal/http/handlers/subscription/status"
	"github.com/cardshowhub/subscription-engine/internal/http/middlewarectx"
	libjwt "github.com/cardshowhub/subscription-engine/internal/lib/jwt"
	broadcastservice "github.com/cardshowhub/subscription-engine/internal/services/broadcast"
	paymentservice "github.com/cardshowhub/subscription-engine/internal/services/payment"
	reconcileservice "github.com/cardshowhub/subscription-engine/internal/services/reconcile"
	statusservice "github.com/cardshowhub/subscription-engine/internal/services/status"
	"github.com/cardshowhub/subscription-engine/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты движка.
func RegisterRoutes(r chi.Router, logger *slog.Logger, maker libjwt.Maker,
	db *repository.Storage, evaluator *statusservice.Evaluator, reconciler *reconcileservice.Service,
	payments *paymentservice.Service, broadcasts *broadcastservice.Service,
	errorLog *errlog.Service, cacheRedis *cache.Cache) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", healthhandler.New(logger, cacheRedis).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.SessionMiddleware(maker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/subscriptions/status", statushandler.New(logger, db, evaluator).ServeHTTP)
			r.Post("/subscriptions/cancel", cancelhandler.New(logger, reconciler).ServeHTTP)
			r.Post("/payments/sheet", sheetcreate.New(logger, payments).ServeHTTP)
			r.Post("/broadcasts", sendhandler.New(logger, broadcasts).ServeHTTP)

			errorsHandler := errorloghandler.New(logger, errorLog)
			r.Get("/errors", errorsHandler.List)
			r.Delete("/errors", errorsHandler.Clear)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
