package infra

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/log"
)

// NewCacheClient returns an instrumented redis client for the cart store.
// The client is closed again when it cannot be reached.
func NewCacheClient(c context.Context, cacheConfig config.Cache) (*redis.Client, error) {
	c, span := otel.Tracer.Start(c, "NewCacheClient")
	defer span.End()

	addr := net.JoinHostPort(cacheConfig.Host, strconv.Itoa(int(cacheConfig.Port)))
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "NewCacheClient").
		Str(log.KeyURL, addr).
		Int("database", cacheConfig.Database).
		Logger()

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cacheConfig.Password,
		DB:       cacheConfig.Database,
	})
	fail := func(err error) (*redis.Client, error) {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		_ = client.Close()
		return nil, err
	}

	logger = logger.With().Str(log.KeyProcess, "instrumenting redis client").Logger()
	attrs := redisotel.WithAttributes(semconv.DBSystemRedis)
	if err := redisotel.InstrumentTracing(client, attrs); err != nil {
		return fail(fmt.Errorf("failed instrumenting redis tracing with error=%w", err))
	}
	if err := redisotel.InstrumentMetrics(client, attrs); err != nil {
		return fail(fmt.Errorf("failed instrumenting redis metrics with error=%w", err))
	}
	logger.Trace().Msg("instrumented redis client")

	logger = logger.With().Str(log.KeyProcess, "pinging redis").Logger()
	if err := client.Ping(c).Err(); err != nil {
		return fail(fmt.Errorf("failed pinging redis with error=%w", err))
	}
	logger.Info().Msg("connected to redis")

	return client, nil
}
