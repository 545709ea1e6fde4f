package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Alturino/storefront/internal/common/constants"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	commonHttp "github.com/Alturino/storefront/internal/common/http"
	"github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/order/pkg/request"
)

type OrderClient struct {
	httpClient *http.Client
	url        string
}

// NewOrderClient targets baseURL + /api/orders/create/. A nil httpClient
// falls back to the otelhttp instrumented default client.
func NewOrderClient(baseURL string, httpClient *http.Client) *OrderClient {
	if httpClient == nil {
		httpClient = otelhttp.DefaultClient
	}
	return &OrderClient{
		httpClient: httpClient,
		url:        strings.TrimSuffix(baseURL, "/") + constants.PATH_CREATE_ORDER,
	}
}

// CreateOrder sends one order creation request. Any non 2xx response is
// reported as ErrOrderRejected.
func (cl *OrderClient) CreateOrder(c context.Context, token string, order request.CreateOrder) error {
	c, span := otel.Tracer.Start(c, "OrderClient CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderClient CreateOrder").
		Str(log.KeyURL, cl.url).
		Int(log.KeyCartItems, len(order.Items)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "encoding order").Logger()
	logger.Trace().Msg("encoding order")
	body, err := json.Marshal(order)
	if err != nil {
		err = fmt.Errorf("failed encoding order with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().Msg("encoded order")

	logger = logger.With().Str(log.KeyProcess, "creating request").Logger()
	req, err := http.NewRequestWithContext(c, http.MethodPost, cl.url, bytes.NewReader(body))
	if err != nil {
		err = fmt.Errorf("failed creating request with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	req.Header.Set(commonHttp.HeaderContentType, commonHttp.HeaderValueJson)
	req.Header.Set(commonHttp.HeaderAccept, commonHttp.HeaderValueJson)
	req.Header.Set(commonHttp.HeaderAuthorization, commonHttp.BearerPrefix+token)
	if requestID := log.RequestIDFromContext(c); requestID != "" {
		req.Header.Set(commonHttp.HeaderRequestID, requestID)
	}

	logger = logger.With().Str(log.KeyProcess, "sending order").Logger()
	logger.Info().Msg("sending order")
	resp, err := cl.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed sending order with error=%w: %w", commonErrors.ErrOrderRejected, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	span.SetAttributes(attribute.Int(log.KeyStatusCode, resp.StatusCode))
	logger = logger.With().Int(log.KeyStatusCode, resp.StatusCode).Logger()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		err = fmt.Errorf("failed sending order status=%d with error=%w", resp.StatusCode, commonErrors.ErrOrderRejected)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("sent order")

	return nil
}
