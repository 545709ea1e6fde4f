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

	"github.com/Alturino/storefront/cart/internal/service"
	"github.com/Alturino/storefront/cart/internal/view"
	"github.com/Alturino/storefront/cart/pkg/request"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	commonHttp "github.com/Alturino/storefront/internal/common/http"
	"github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/common/token"
	"github.com/Alturino/storefront/internal/common/validate"
	"github.com/Alturino/storefront/internal/log"
)

type CartController struct {
	service  *service.CartService
	validate *validator.Validate
}

func AttachCartController(router *mux.Router, service *service.CartService) {
	controller := CartController{service: service, validate: validate.New()}

	r := router.PathPrefix("/cart").Subrouter()
	r.HandleFunc("", controller.Screen).Methods(http.MethodGet)
	r.HandleFunc("/open", controller.Open).Methods(http.MethodPost)
	r.HandleFunc("/close", controller.Close).Methods(http.MethodPost)
	r.HandleFunc("/events", controller.Events).Methods(http.MethodGet)
	r.HandleFunc("/items", controller.AddItem).Methods(http.MethodPost)
	r.HandleFunc("/items/{itemId}", controller.RemoveItem).Methods(http.MethodDelete)
	r.HandleFunc("/order", controller.RequestOrder).Methods(http.MethodPost)
	r.HandleFunc("/order/submit", controller.SubmitOrder).Methods(http.MethodPost)
}

// statusCode maps view and store errors to HTTP status codes. Order
// validation and submission failures are part of the screen, not HTTP errors.
func statusCode(err error) int {
	switch {
	case errors.Is(err, commonErrors.ErrBelowMinimumOrder), errors.Is(err, commonErrors.ErrOrderRejected):
		return http.StatusOK
	case errors.Is(err, commonErrors.ErrInvalidTransition), errors.Is(err, commonErrors.ErrViewClosed):
		return http.StatusConflict
	case errors.Is(err, commonErrors.ErrCartItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, commonErrors.ErrEmptySubject), errors.Is(err, commonErrors.ErrEmptyAuth):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func (t CartController) session(r *http.Request) (string, string, error) {
	userId, err := token.UserIdFromJwtToken(r.Context())
	if err != nil {
		return "", "", err
	}
	return userId.String(), token.RawTokenFromContext(r.Context()), nil
}

func (t CartController) writeScreen(w http.ResponseWriter, r *http.Request, v *view.CartView, message string) {
	c := r.Context()
	logger := zerolog.Ctx(c)

	screen, err := v.Screen(c)
	if err != nil {
		err = fmt.Errorf("failed rendering cart with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, http.StatusInternalServerError, err)
		return
	}

	status := "success"
	if screen.Error != "" {
		status = "failed"
		message = screen.Error
	}
	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     status,
		"statusCode": http.StatusOK,
		"message":    message,
		"data": map[string]interface{}{
			"cart": screen,
		},
	})
}

func (t CartController) Open(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController Open")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController Open").Logger()

	session, accessToken, err := t.session(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, statusCode(err), err)
		return
	}
	logger = logger.With().Str(log.KeySessionID, session).Logger()

	logger = logger.With().Str(log.KeyProcess, "opening cart").Logger()
	logger.Info().Msg("opening cart")
	c = logger.WithContext(c)
	v, err := t.service.Open(c, session, accessToken)
	if err != nil {
		err = fmt.Errorf("failed opening cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, statusCode(err), err)
		return
	}
	logger.Info().Msg("opened cart")

	t.writeScreen(w, r.WithContext(c), v, "cart opened")
}

func (t CartController) Screen(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController Screen")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController Screen").Logger()

	session, accessToken, err := t.session(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, statusCode(err), err)
		return
	}

	c = logger.WithContext(c)
	v, err := t.service.View(c, session, accessToken)
	if err != nil {
		err = fmt.Errorf("failed getting cart view with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, statusCode(err), err)
		return
	}

	t.writeScreen(w, r.WithContext(c), v, "cart found")
}

func (t CartController) Close(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController Close")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController Close").Logger()

	session, _, err := t.session(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, statusCode(err), err)
		return
	}

	c = logger.WithContext(c)
	t.service.Close(c, session)

	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cart closed",
	})
}

func (t CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController AddItem").Logger()

	session, accessToken, err := t.session(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, statusCode(err), err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	reqBody := request.AddCartItem{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	if err := t.validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	logger.Trace().Msg("validated request body")

	logger = logger.With().
		Str(log.KeyProcess, "adding cart item").
		Str(log.KeyCartItemID, reqBody.ID.String()).
		Logger()
	logger.Info().Msg("adding cart item")
	c = logger.WithContext(c)
	if err := t.service.AddItem(c, session, reqBody.CartItem()); err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, statusCode(err), err)
		return
	}
	logger.Info().Msg("added cart item")

	v, err := t.service.View(c, session, accessToken)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, statusCode(err), err)
		return
	}
	t.writeScreen(w, r.WithContext(c), v, "cart item added")
}

func (t CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController RemoveItem").Logger()

	session, accessToken, err := t.session(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, statusCode(err), err)
		return
	}

	pathValues := mux.Vars(r)
	logger = logger.With().Any(log.KeyPathValues, pathValues).Logger()
	itemID, err := uuid.Parse(pathValues["itemId"])
	if err != nil {
		err = fmt.Errorf("failed parsing itemId=%s with error=%w", pathValues["itemId"], err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}

	logger = logger.With().
		Str(log.KeyProcess, "removing cart item").
		Str(log.KeyCartItemID, itemID.String()).
		Logger()
	logger.Info().Msg("removing cart item")
	c = logger.WithContext(c)
	if err := t.service.RemoveItem(c, session, itemID); err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, statusCode(err), err)
		return
	}
	logger.Info().Msg("removed cart item")

	v, err := t.service.View(c, session, accessToken)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, statusCode(err), err)
		return
	}
	t.writeScreen(w, r.WithContext(c), v, "cart item removed")
}

func (t CartController) RequestOrder(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RequestOrder")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController RequestOrder").Logger()

	session, accessToken, err := t.session(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, statusCode(err), err)
		return
	}

	c = logger.WithContext(c)
	v, err := t.service.View(c, session, accessToken)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, statusCode(err), err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "requesting order").Logger()
	logger.Info().Msg("requesting order")
	if err := v.RequestOrder(c); err != nil && statusCode(err) != http.StatusOK {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, statusCode(err), err)
		return
	}
	logger.Info().Str(log.KeyPhase, v.State().Phase.String()).Msg("requested order")

	t.writeScreen(w, r.WithContext(c), v, "collecting order details")
}

func (t CartController) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController SubmitOrder")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController SubmitOrder").Logger()

	session, accessToken, err := t.session(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, statusCode(err), err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	reqBody := request.OrderData{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	if err := t.validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, http.StatusBadRequest, err)
		return
	}
	logger.Trace().Msg("validated request body")

	c = logger.WithContext(c)
	v, err := t.service.View(c, session, accessToken)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, statusCode(err), err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "submitting order").Logger()
	logger.Info().Msg("submitting order")
	c = logger.WithContext(c)
	if err := v.SubmitOrder(c, reqBody); err != nil && statusCode(err) != http.StatusOK {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, statusCode(err), err)
		return
	}
	logger.Info().Str(log.KeyPhase, v.State().Phase.String()).Msg("submitted order")

	t.writeScreen(w, r.WithContext(c), v, view.MessageSucceeded)
}

// Events streams one server-sent event per cart change until the client
// disconnects.
func (t CartController) Events(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController Events")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartController Events").Logger()

	session, _, err := t.session(r)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, statusCode(err), err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		err = errors.New("streaming is not supported")
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, http.StatusInternalServerError, err)
		return
	}

	c = logger.WithContext(c)
	events, unsubscribe, err := t.service.Subscribe(c, session)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteFailed(c, w, http.StatusInternalServerError, err)
		return
	}
	defer unsubscribe()

	w.Header().Set(commonHttp.HeaderContentType, commonHttp.HeaderValueSSE)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	logger.Info().Msg("streaming cart events")
	for {
		select {
		case <-c.Done():
			logger.Info().Msg("stopped streaming cart events")
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				logger.Error().Err(err).Msg("failed encoding cart event")
				continue
			}
			if _, err := fmt.Fprintf(w, "event: cart\ndata: %s\n\n", payload); err != nil {
				logger.Error().Err(err).Msg("failed writing cart event")
				return
			}
			flusher.Flush()
		}
	}
}
