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

	"github.com/Alturino/storefront/internal/common/constants"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	commonOtel "github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/infra"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/metrics"
	"github.com/Alturino/storefront/internal/middleware"
	"github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/order/internal/controller"
	"github.com/Alturino/storefront/order/internal/repository"
	"github.com/Alturino/storefront/order/internal/service"
)

func NewRouter(cfg *config.Config, orderService *service.OrderService) *mux.Router {
	router := mux.NewRouter()
	router.Use(otelmux.Middleware(constants.APP_ORDER_SERVICE), middleware.Logging, middleware.RecoverPanic, metrics.Middleware)
	metrics.Attach(router)

	api := router.NewRoute().Subrouter()
	api.Use(middleware.Auth(cfg.Application.SecretKey))
	controller.AttachOrderController(api, orderService)
	return router
}

func RunOrderService(c context.Context) {
	c, span := commonOtel.Tracer.Start(c, "RunOrderService")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.APP_ORDER_SERVICE).
		Str(log.KeyTag, "main RunOrderService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "init config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.APP_ORDER_SERVICE)
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	otelShutdowns, err := otel.InitOtelSdk(c, constants.APP_ORDER_SERVICE, cfg.Otel)
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

	logger = logger.With().Str(log.KeyProcess, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	c = logger.WithContext(c)
	db := infra.NewDatabaseClient(c, cfg.Database)
	defer func() {
		logger.Info().Msg("shutting down database")
		db.Close()
		logger.Info().Msg("shutdown database")
	}()
	logger.Info().Msg("initialized database")

	logger = logger.With().Str(log.KeyProcess, "initializing order service").Logger()
	logger.Info().Msg("initializing order service")
	orderService := service.NewOrderService(
		repository.NewOrderRepository(db),
		cfg.Checkout.MinimumOrderAmount,
	)
	logger.Info().Msg("initialized order service")

	infra.Serve(c, logger, &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      NewRouter(cfg, orderService),
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	})
}
