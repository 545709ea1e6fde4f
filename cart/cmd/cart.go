package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/Alturino/storefront/cart/internal/client"
	"github.com/Alturino/storefront/cart/internal/controller"
	"github.com/Alturino/storefront/cart/internal/service"
	"github.com/Alturino/storefront/cart/internal/store"
	"github.com/Alturino/storefront/internal/common/constants"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	commonOtel "github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/infra"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/metrics"
	"github.com/Alturino/storefront/internal/middleware"
	"github.com/Alturino/storefront/internal/otel"
)

func newStores(c context.Context, cfg *config.Config) (store.Stores, func(), error) {
	switch cfg.Checkout.Store {
	case config.StoreMemory, "":
		return store.NewMemoryStores(), func() {}, nil
	case config.StoreRedis:
		cache, err := infra.NewCacheClient(c, cfg.Cache)
		if err != nil {
			return nil, nil, fmt.Errorf("failed creating redis store with error=%w", err)
		}
		return store.NewRedisStores(cache, cfg.Checkout.TokenTTL), func() {
			if err := cache.Close(); err != nil {
				zerolog.Ctx(c).Error().Err(err).Msg("failed closing cache")
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("failed creating store=%s with error=%w", cfg.Checkout.Store, commonErrors.ErrUnknownStoreDriver)
}

func NewRouter(cfg *config.Config, cartService *service.CartService) *mux.Router {
	router := mux.NewRouter()
	router.Use(otelmux.Middleware(constants.APP_CART_SERVICE), middleware.Logging, middleware.RecoverPanic, metrics.Middleware)
	metrics.Attach(router)

	api := router.NewRoute().Subrouter()
	api.Use(middleware.Auth(cfg.Application.SecretKey))
	controller.AttachCartController(api, cartService)
	return router
}

func RunCartService(c context.Context) {
	c, span := commonOtel.Tracer.Start(c, "RunCartService")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.APP_CART_SERVICE).
		Str(log.KeyTag, "main RunCartService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "init config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.APP_CART_SERVICE)
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	otelShutdowns, err := otel.InitOtelSdk(c, constants.APP_CART_SERVICE, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Fatal().Err(err).Msg(err.Error())
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(c), 5*time.Second)
		defer cancel()
		if err := otel.ShutdownOtel(shutdownCtx, otelShutdowns); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().
		Str(log.KeyProcess, "initializing cart store").
		Str("store", cfg.Checkout.Store).
		Logger()
	logger.Info().Msg("initializing cart store")
	c = logger.WithContext(c)
	stores, closeStores, err := newStores(c, cfg)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Fatal().Err(err).Msg(err.Error())
	}
	defer closeStores()
	logger.Info().Msg("initialized cart store")

	logger = logger.With().Str(log.KeyProcess, "initializing cart service").Logger()
	logger.Info().Msg("initializing cart service")
	orderClient := client.NewOrderClient(cfg.Checkout.OrderServiceURL, nil)
	cartService := service.NewCartService(stores, orderClient, cfg.Checkout.MinimumOrderAmount)
	defer cartService.CloseAll(c)
	logger.Info().Msg("initialized cart service")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := NewRouter(cfg, cartService)
	logger.Info().Msg("initialized router")

	infra.Serve(c, logger, &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext: func(net.Listener) context.Context { return c },
		Handler:     router,
		ReadTimeout: 45 * time.Second,
	})
}
