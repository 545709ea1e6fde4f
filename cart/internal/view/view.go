package view

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/cart/internal/store"
	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/cart/pkg/response"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/metrics"
	orderRequest "github.com/Alturino/storefront/order/pkg/request"
)

type OrderCreator interface {
	CreateOrder(c context.Context, token string, order orderRequest.CreateOrder) error
}

func MinimumOrderMessage(minimum decimal.Decimal) string {
	return fmt.Sprintf("Total amount has to be at least %s eur", minimum.String())
}

// CartView holds the checkout state of one mounted cart. It reads items and
// the access token from its store and dispatches ClearCart after a
// successful order.
type CartView struct {
	store   store.Store
	orders  OrderCreator
	minimum decimal.Decimal

	mu     sync.Mutex
	state  State
	closed bool
}

func New(store store.Store, orders OrderCreator, minimum decimal.Decimal) *CartView {
	return &CartView{store: store, orders: orders, minimum: minimum}
}

func (v *CartView) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *CartView) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// Close unmounts the view. A submission still in flight completes against the
// store but no longer changes the view state.
func (v *CartView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}

func (v *CartView) Screen(c context.Context) (response.Screen, error) {
	c, span := otel.Tracer.Start(c, "CartView Screen")
	defer span.End()

	items, err := v.store.Items(c)
	if err != nil {
		err = fmt.Errorf("failed getting cart items with error=%w", err)
		commonErrors.HandleError(err, span)
		return response.Screen{}, err
	}
	return Render(v.State(), items), nil
}

// RequestOrder moves an idle view to order detail collection when the cart
// total reaches the minimum. Below the minimum it only sets the error.
func (v *CartView) RequestOrder(c context.Context) error {
	c, span := otel.Tracer.Start(c, "CartView RequestOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartView RequestOrder").
		Logger()

	if err := v.expect(Idle); err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	logger = logger.With().Str(log.KeyProcess, "computing total").Logger()
	logger.Trace().Msg("computing total")
	items, err := v.store.Items(c)
	if err != nil {
		err = fmt.Errorf("failed getting cart items with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	total := Total(items)
	logger = logger.With().Str(log.KeyCartTotal, total.String()).Logger()
	logger.Trace().Msg("computed total")

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return commonErrors.ErrViewClosed
	}
	if v.state.Phase != Idle {
		return fmt.Errorf("failed requesting order in phase=%s with error=%w", v.state.Phase, commonErrors.ErrInvalidTransition)
	}

	if total.LessThan(v.minimum) {
		v.state.Err = MinimumOrderMessage(v.minimum)
		metrics.OrderValidationFailures.Inc()
		err = fmt.Errorf("failed requesting order total=%s with error=%w", total, commonErrors.ErrBelowMinimumOrder)
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return err
	}

	v.state = State{Phase: Collecting}
	logger.Info().Msg("collecting order details")
	return nil
}

// SubmitOrder sends the order for the current cart with the stored access
// token. It is only accepted while collecting order details, so a second
// submission cannot start while one is in flight.
func (v *CartView) SubmitOrder(c context.Context, data request.OrderData) error {
	c, span := otel.Tracer.Start(c, "CartView SubmitOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartView SubmitOrder").
		Logger()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return commonErrors.ErrViewClosed
	}
	if v.state.Phase != Collecting {
		phase := v.state.Phase
		v.mu.Unlock()
		err := fmt.Errorf("failed submitting order in phase=%s with error=%w", phase, commonErrors.ErrInvalidTransition)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	v.state = State{Phase: Submitting}
	v.mu.Unlock()

	c = logger.WithContext(c)
	err := v.send(c, data)
	if err != nil {
		metrics.OrderSubmissions.WithLabelValues(metrics.ResultFailed).Inc()
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		v.settle(State{Phase: Collecting, Err: MessageSubmitFailed})
		return err
	}
	metrics.OrderSubmissions.WithLabelValues(metrics.ResultSuccess).Inc()

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart")
	if err := v.store.Dispatch(c, store.ClearCart()); err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	} else {
		logger.Info().Msg("cleared cart")
	}

	v.settle(State{Phase: Succeeded})
	return nil
}

func (v *CartView) send(c context.Context, data request.OrderData) error {
	logger := zerolog.Ctx(c).With().Str(log.KeyProcess, "sending order").Logger()

	items, err := v.store.Items(c)
	if err != nil {
		return fmt.Errorf("failed getting cart items with error=%w: %w", commonErrors.ErrOrderRejected, err)
	}
	token, err := v.store.AccessToken(c)
	if err != nil {
		return fmt.Errorf("failed getting access token with error=%w: %w", commonErrors.ErrOrderRejected, err)
	}

	logger.Info().Int(log.KeyCartItems, len(items)).Msg("sending order")
	c = logger.WithContext(c)
	if err = v.orders.CreateOrder(c, token, orderRequest.NewCreateOrder(data, items)); err != nil {
		return fmt.Errorf("failed sending order with error=%w: %w", commonErrors.ErrOrderRejected, err)
	}
	logger.Info().Msg("sent order")
	return nil
}

func (v *CartView) settle(state State) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.state = state
}

func (v *CartView) expect(phase Phase) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return commonErrors.ErrViewClosed
	}
	if v.state.Phase != phase {
		return fmt.Errorf("failed expecting phase=%s in phase=%s with error=%w", phase, v.state.Phase, commonErrors.ErrInvalidTransition)
	}
	return nil
}
