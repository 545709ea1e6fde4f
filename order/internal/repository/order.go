package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/order/pkg/response"
)

const (
	insertOrder = `INSERT INTO orders (id, user_id, name, phone, address, total, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at, updated_at`

	insertOrderItem = `INSERT INTO order_items (id, order_id, product_id, name, price, amount)
VALUES ($1, $2, $3, $4, $5, $6)`

	findOrderById = `SELECT id, user_id, name, phone, address, total, status, created_at, updated_at
FROM orders
WHERE id = $1 AND user_id = $2`

	findOrderItemsByOrderId = `SELECT id, order_id, product_id, name, price, amount
FROM order_items
WHERE order_id = $1
ORDER BY name, id`
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// InsertOrder stores the order and its items in one transaction and returns
// the order with its database timestamps.
func (r *OrderRepository) InsertOrder(c context.Context, order response.Order) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderRepository InsertOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderRepository InsertOrder").
		Str(log.KeyOrderID, order.ID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Trace().Msg("initializing transaction")
	tx, err := r.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	defer func() {
		if err := tx.Rollback(c); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()
	logger.Trace().Msg("initialized transaction")

	logger = logger.With().Str(log.KeyProcess, "inserting order").Logger()
	logger.Trace().Msg("inserting order")
	err = tx.QueryRow(
		c,
		insertOrder,
		order.ID,
		order.UserId,
		order.Name,
		order.Phone,
		order.Address,
		numeric(order.Total),
		order.Status,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		err = fmt.Errorf("failed inserting order with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Trace().Msg("inserted order")

	logger = logger.With().
		Str(log.KeyProcess, "inserting order items").
		Int(log.KeyOrderItems, len(order.OrderItems)).
		Logger()
	logger.Trace().Msg("inserting order items")
	batch := &pgx.Batch{}
	for _, item := range order.OrderItems {
		batch.Queue(
			insertOrderItem,
			item.ID,
			item.OrderId,
			item.ProductId,
			item.Name,
			numeric(item.Price),
			item.Amount,
		)
	}
	if err = tx.SendBatch(c, batch).Close(); err != nil {
		err = fmt.Errorf("failed inserting order items with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Trace().Msg("inserted order items")

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	if err = tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("committed transaction")

	return order, nil
}

func (r *OrderRepository) FindOrderById(c context.Context, userId uuid.UUID, orderId uuid.UUID) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderRepository FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderRepository FindOrderById").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyOrderID, orderId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding order").Logger()
	order := response.Order{}
	total := pgtype.Numeric{}
	err := r.pool.QueryRow(c, findOrderById, orderId, userId).Scan(
		&order.ID,
		&order.UserId,
		&order.Name,
		&order.Phone,
		&order.Address,
		&total,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("failed finding orderId=%s with error=%w", orderId, commonErrors.ErrOrderNotFound)
		commonErrors.HandleError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if err != nil {
		err = fmt.Errorf("failed finding orderId=%s with error=%w", orderId, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	order.Total = fromNumeric(total)
	logger.Trace().Msg("found order")

	logger = logger.With().Str(log.KeyProcess, "finding order items").Logger()
	rows, err := r.pool.Query(c, findOrderItemsByOrderId, orderId)
	if err != nil {
		err = fmt.Errorf("failed finding order items with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (response.OrderItem, error) {
		item := response.OrderItem{}
		price := pgtype.Numeric{}
		err := row.Scan(&item.ID, &item.OrderId, &item.ProductId, &item.Name, &price, &item.Amount)
		item.Price = fromNumeric(price)
		return item, err
	})
	if err != nil {
		err = fmt.Errorf("failed scanning order items with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	order.OrderItems = items
	logger.Trace().Int(log.KeyOrderItems, len(items)).Msg("found order items")

	return order, nil
}
