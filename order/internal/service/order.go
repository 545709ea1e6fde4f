package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/metrics"
	internalRequest "github.com/Alturino/storefront/order/internal/request"
	"github.com/Alturino/storefront/order/pkg/request"
	"github.com/Alturino/storefront/order/pkg/response"
)

const StatusCreated = "created"

type OrderRepository interface {
	InsertOrder(c context.Context, order response.Order) (response.Order, error)
	FindOrderById(c context.Context, userId uuid.UUID, orderId uuid.UUID) (response.Order, error)
}

type OrderService struct {
	repository OrderRepository
	minimum    decimal.Decimal
}

func NewOrderService(repository OrderRepository, minimum decimal.Decimal) *OrderService {
	return &OrderService{repository: repository, minimum: minimum}
}

func Total(param request.CreateOrder) decimal.Decimal {
	total := decimal.Zero
	for _, item := range param.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Amount))))
	}
	return total
}

// CreateOrder turns a submitted cart into an order owned by userId. Items with
// the same id are merged.
func (s *OrderService) CreateOrder(
	c context.Context,
	userId uuid.UUID,
	param request.CreateOrder,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService CreateOrder").
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating total").Logger()
	total := Total(param)
	logger = logger.With().Str(log.KeyCartTotal, total.String()).Logger()
	if total.LessThan(s.minimum) {
		err := fmt.Errorf("failed creating order total=%s minimum=%s with error=%w", total, s.minimum, commonErrors.ErrBelowMinimumOrder)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Trace().Msg("validated total")

	logger = logger.With().Str(log.KeyProcess, "merging order items").Logger()
	orderId := uuid.New()
	merged := map[uuid.UUID]int{}
	items := []response.OrderItem{}
	for _, item := range param.Items {
		if i, ok := merged[item.ID]; ok {
			items[i].Amount += int32(item.Amount)
			continue
		}
		merged[item.ID] = len(items)
		items = append(items, response.OrderItem{
			ID:        uuid.New(),
			OrderId:   orderId,
			ProductId: item.ID,
			Name:      item.Name,
			Price:     item.Price,
			Amount:    int32(item.Amount),
		})
	}
	logger.Trace().Int(log.KeyOrderItems, len(items)).Msg("merged order items")

	logger = logger.With().
		Str(log.KeyProcess, "inserting order").
		Str(log.KeyOrderID, orderId.String()).
		Logger()
	logger.Info().Msg("inserting order")
	c = logger.WithContext(c)
	order, err := s.repository.InsertOrder(c, response.Order{
		ID:         orderId,
		UserId:     userId,
		Name:       param.Name,
		Phone:      param.Phone,
		Address:    param.Address,
		Status:     StatusCreated,
		Total:      total,
		OrderItems: items,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting order with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	metrics.OrdersCreated.Inc()
	logger.Info().Msg("inserted order")

	return order, nil
}

func (s *OrderService) FindOrderById(
	c context.Context,
	param internalRequest.FindOrderById,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrderById").
		Str(log.KeyProcess, "finding order by id").
		Logger()

	logger.Trace().Msg("finding order by id")
	c = logger.WithContext(c)
	order, err := s.repository.FindOrderById(c, param.UserId, param.OrderId)
	if err != nil {
		err = fmt.Errorf("failed finding order by id with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Trace().Msg("found order by id")

	return order, nil
}
