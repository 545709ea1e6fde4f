package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	commonHttp "github.com/Alturino/storefront/internal/common/http"
	"github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/common/token"
	"github.com/Alturino/storefront/internal/common/validate"
	"github.com/Alturino/storefront/internal/log"
	internalRequest "github.com/Alturino/storefront/order/internal/request"
	"github.com/Alturino/storefront/order/internal/service"
	"github.com/Alturino/storefront/order/pkg/request"
)

type OrderController struct {
	service  *service.OrderService
	validate *validator.Validate
}

func AttachOrderController(router *mux.Router, service *service.OrderService) {
	controller := OrderController{service: service, validate: validate.New()}

	r := router.PathPrefix("/api/orders").Subrouter()
	r.HandleFunc("/create/", controller.CreateOrder).Methods(http.MethodPost)
	r.HandleFunc("/{orderId}", controller.FindOrderById).Methods(http.MethodGet)
}

func (ctrl OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController CreateOrder").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "getting userId from jwtToken").Logger()
	userId, err := token.UserIdFromJwtToken(c)
	if err != nil {
		err = fmt.Errorf("failed getting userId from jwtToken with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, http.StatusUnauthorized, err)
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	reqBody := request.CreateOrder{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	if err := ctrl.validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	logger.Trace().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "creating order").Logger()
	logger.Info().Msg("creating order")
	c = logger.WithContext(c)
	order, err := ctrl.service.CreateOrder(c, userId, reqBody)
	if errors.Is(err, commonErrors.ErrBelowMinimumOrder) {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, http.StatusUnprocessableEntity, commonErrors.ErrBelowMinimumOrder)
		return
	}
	if err != nil {
		err = fmt.Errorf("failed creating order with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, http.StatusInternalServerError, err)
		return
	}
	logger.Info().Str(log.KeyOrderID, order.ID.String()).Msg("created order")

	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "successfully created order",
		"data": map[string]interface{}{
			"order": order,
		},
	})
}

func (ctrl OrderController) FindOrderById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController FindOrderById").
		Logger()

	pathValues := mux.Vars(r)
	logger = logger.With().Any(log.KeyPathValues, pathValues).Logger()
	orderId, err := uuid.Parse(pathValues["orderId"])
	if err != nil {
		err = fmt.Errorf("failed parsing orderId=%s with error=%w", pathValues["orderId"], err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	logger = logger.With().Str(log.KeyOrderID, orderId.String()).Logger()

	userId, err := token.UserIdFromJwtToken(c)
	if err != nil {
		err = fmt.Errorf("failed getting userId from jwtToken with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, http.StatusUnauthorized, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "finding order").Logger()
	c = logger.WithContext(c)
	order, err := ctrl.service.FindOrderById(c, internalRequest.FindOrderById{UserId: userId, OrderId: orderId})
	if errors.Is(err, commonErrors.ErrOrderNotFound) {
		commonHttp.WriteFailed(c, w, http.StatusNotFound, commonErrors.ErrOrderNotFound)
		return
	}
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, http.StatusInternalServerError, err)
		return
	}

	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("orderId=%s found", orderId.String()),
		"data": map[string]interface{}{
			"order": order,
		},
	})
}
