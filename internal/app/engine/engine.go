package engine

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/cardshowhub/subscription-engine/internal/cache"
	"github.com/cardshowhub/subscription-engine/internal/config"
	"github.com/cardshowhub/subscription-engine/internal/errlog"
	libjwt "github.com/cardshowhub/subscription-engine/internal/lib/jwt"
	"github.com/cardshowhub/subscription-engine/internal/migrations"
	"github.com/cardshowhub/subscription-engine/internal/paymentgateway"
	"github.com/cardshowhub/subscription-engine/internal/paymentintent"
	"github.com/cardshowhub/subscription-engine/internal/plans"
	"github.com/cardshowhub/subscription-engine/internal/quota"
	"github.com/cardshowhub/subscription-engine/internal/rabbitmq"
	broadcastservice "github.com/cardshowhub/subscription-engine/internal/services/broadcast"
	paymentservice "github.com/cardshowhub/subscription-engine/internal/services/payment"
	reconcileservice "github.com/cardshowhub/subscription-engine/internal/services/reconcile"
	statusservice "github.com/cardshowhub/subscription-engine/internal/services/status"
	"github.com/cardshowhub/subscription-engine/internal/storage/repository"
)

// MerchantName — имя продавца, отображаемое в платёжном листе.
const MerchantName = "Card Show Hub"

// App собирает зависимости движка подписок и владеет HTTP-сервером.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New инициализирует хранилище, кэш, брокер и сервисы движка.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitConnection.URL, cfg.RabbitConnection.ConnectRetries, cfg.RabbitConnection.RetryDelay)
	if err != nil {
		return nil, err
	}
	rabbitCh, err := rabbitmq.SetupChannel(rabbitConn, rabbitmq.DefaultQueues())
	if err != nil {
		return nil, err
	}

	errorLog := errlog.New(logger, cfg.ErrorLog, cacheRedis, nil)

	catalog := plans.Default()
	evaluator := statusservice.NewEvaluator(catalog)
	reconciler := reconcileservice.New(db, db, errorLog, logger)

	intents := paymentintent.NewClient(cfg.PaymentBackend.BaseURL, cfg.PaymentBackend.RequestTimeout)
	gateway := paymentgateway.NewClient(cfg.PaymentGateway.APIURL, cfg.PaymentGateway.SecretKey)
	payments := paymentservice.New(catalog, intents, gateway, reconciler, errorLog, logger, MerchantName)

	quotas := quota.NewRedisManager(cacheRedis.Db, quota.Limits{
		PreShow:  cfg.BroadcastQuota.PreShowLimit,
		PostShow: cfg.BroadcastQuota.PostShowLimit,
	})
	broadcasts := broadcastservice.New(quotas, rabbitmq.NewPublisher(rabbitCh), errorLog, logger)

	maker := libjwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, maker, db, evaluator, reconciler, payments, broadcasts, errorLog, cacheRedis)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
