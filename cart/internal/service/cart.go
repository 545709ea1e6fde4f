package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/cart/internal/store"
	"github.com/Alturino/storefront/cart/internal/view"
	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/cart/pkg/response"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/log"
)

// CartService keeps one mounted CartView per session. Mounting always starts
// from a fresh view state; the cart itself lives in the store.
type CartService struct {
	stores  store.Stores
	orders  view.OrderCreator
	minimum decimal.Decimal

	mu    sync.Mutex
	views map[string]*view.CartView
}

func NewCartService(stores store.Stores, orders view.OrderCreator, minimum decimal.Decimal) *CartService {
	return &CartService{
		stores:  stores,
		orders:  orders,
		minimum: minimum,
		views:   map[string]*view.CartView{},
	}
}

// Open mounts a new view for the session, replacing any mounted one, and
// records the access token the order will be sent with.
func (svc *CartService) Open(c context.Context, session string, accessToken string) (*view.CartView, error) {
	c, span := otel.Tracer.Start(c, "CartService Open")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Open").
		Str(log.KeySessionID, session).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "storing access token").Logger()
	logger.Trace().Msg("storing access token")
	s := svc.stores.ForSession(session)
	c = logger.WithContext(c)
	if err := s.Dispatch(c, store.SetAccessToken(accessToken)); err != nil {
		err = fmt.Errorf("failed storing access token with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Trace().Msg("stored access token")

	logger = logger.With().Str(log.KeyProcess, "mounting cart view").Logger()
	v := view.New(s, svc.orders, svc.minimum)

	svc.mu.Lock()
	previous, ok := svc.views[session]
	svc.views[session] = v
	svc.mu.Unlock()

	if ok {
		previous.Close()
		logger.Trace().Msg("closed previous cart view")
	}
	logger.Info().Msg("mounted cart view")
	return v, nil
}

// View returns the mounted view of the session, mounting one when needed.
// The stored access token is replaced when the request carries another one.
func (svc *CartService) View(c context.Context, session string, accessToken string) (*view.CartView, error) {
	svc.mu.Lock()
	v, ok := svc.views[session]
	svc.mu.Unlock()
	if !ok {
		return svc.Open(c, session, accessToken)
	}
	if err := svc.refreshAccessToken(c, session, accessToken); err != nil {
		return nil, err
	}
	return v, nil
}

func (svc *CartService) refreshAccessToken(c context.Context, session string, accessToken string) error {
	c, span := otel.Tracer.Start(c, "CartService refreshAccessToken")
	defer span.End()

	if accessToken == "" {
		return nil
	}

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService refreshAccessToken").
		Str(log.KeySessionID, session).
		Logger()

	s := svc.stores.ForSession(session)
	current, err := s.AccessToken(c)
	if err != nil && !errors.Is(err, commonErrors.ErrEmptyAccessToken) {
		err = fmt.Errorf("failed getting access token with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if current == accessToken {
		return nil
	}

	logger = logger.With().Str(log.KeyProcess, "refreshing access token").Logger()
	logger.Trace().Msg("refreshing access token")
	if err := s.Dispatch(c, store.SetAccessToken(accessToken)); err != nil {
		err = fmt.Errorf("failed refreshing access token with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().Msg("refreshed access token")
	return nil
}

func (svc *CartService) Close(c context.Context, session string) {
	svc.mu.Lock()
	v, ok := svc.views[session]
	delete(svc.views, session)
	svc.mu.Unlock()

	if ok {
		v.Close()
		zerolog.Ctx(c).Info().
			Str(log.KeyTag, "CartService Close").
			Str(log.KeySessionID, session).
			Msg("unmounted cart view")
	}
}

func (svc *CartService) CloseAll(c context.Context) {
	svc.mu.Lock()
	views := svc.views
	svc.views = map[string]*view.CartView{}
	svc.mu.Unlock()

	for _, v := range views {
		v.Close()
	}
	zerolog.Ctx(c).Info().
		Str(log.KeyTag, "CartService CloseAll").
		Int("views", len(views)).
		Msg("unmounted all cart views")
}

func (svc *CartService) Screen(c context.Context, session string, accessToken string) (response.Screen, error) {
	v, err := svc.View(c, session, accessToken)
	if err != nil {
		return response.Screen{}, err
	}
	return v.Screen(c)
}

func (svc *CartService) AddItem(c context.Context, session string, item request.CartItem) error {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	if err := svc.stores.ForSession(session).Dispatch(c, store.AddItem(item)); err != nil {
		err = fmt.Errorf("failed adding cartItemId=%s with error=%w", item.ID, err)
		commonErrors.HandleError(err, span)
		return err
	}
	return nil
}

func (svc *CartService) RemoveItem(c context.Context, session string, itemID uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	if err := svc.stores.ForSession(session).Dispatch(c, store.RemoveItem(itemID)); err != nil {
		err = fmt.Errorf("failed removing cartItemId=%s with error=%w", itemID, err)
		commonErrors.HandleError(err, span)
		return err
	}
	return nil
}

func (svc *CartService) Subscribe(c context.Context, session string) (<-chan store.Event, func(), error) {
	return svc.stores.ForSession(session).Subscribe(c)
}
