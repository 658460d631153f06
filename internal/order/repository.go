package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type Repository interface {
	CreateOrder(ctx context.Context, order *Order) (uuid.UUID, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, result PaymentResult, paidAt time.Time) error
	MarkDelivered(ctx context.Context, orderID uuid.UUID, deliveredAt time.Time) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const orderColumns = `o.id, o.user_id, u.name, u.email, o.order_items, o.shipping_address, o.payment_method,
	o.payment_result, o.items_price, o.shipping_price, o.tax_price, o.total_price,
	o.is_paid, o.paid_at, o.is_delivered, o.delivered_at, o.created_at, o.updated_at`

// CreateOrder takes the ordered slots from every product and inserts the order
// in a single transaction. A product without enough slots aborts the whole
// order with ErrSlotsExhausted.
func (r *postgresRepository) CreateOrder(ctx context.Context, orderInput *Order) (orderID uuid.UUID, err error) {
	finalOrderID := orderInput.ID
	if finalOrderID == uuid.Nil {
		genID, genErr := uuid.NewV4()
		if genErr != nil {
			log.Error().Err(genErr).Msg("repository: failed to generate order ID")
			return uuid.Nil, fmt.Errorf("repository: failed to generate order ID: %w", genErr)
		}
		finalOrderID = genID
	}
	orderInput.ID = finalOrderID

	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic_value", p).Stringer("order_id_attempted", finalOrderID).Msg("Panic recovered during CreateOrder, rolling back")
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id_attempted", finalOrderID).Msg("Failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			log.Warn().Err(err).Stringer("order_id_attempted", finalOrderID).Msg("Transaction for CreateOrder failed, rolling back")
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id_attempted", finalOrderID).Msg("Failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				log.Error().Err(commitErr).Stringer("order_id", finalOrderID).Msg("Failed to commit transaction")
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	for _, item := range orderInput.OrderItems {
		if err = takeSlots(ctx, tx, item.ProductID, item.Qty); err != nil {
			return uuid.Nil, err
		}
	}

	createdAt := time.Now().UTC()
	queryOrder := `
		INSERT INTO orders (id, user_id, order_items, shipping_address, payment_method,
			items_price, shipping_price, tax_price, total_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = tx.Exec(ctx, queryOrder,
		finalOrderID,
		orderInput.UserID,
		orderInput.OrderItems,
		orderInput.ShippingAddress,
		orderInput.PaymentMethod,
		orderInput.ItemsPrice,
		orderInput.ShippingPrice,
		orderInput.TaxPrice,
		orderInput.TotalPrice,
		createdAt,
		createdAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to insert order: %w", err)
	}

	orderInput.CreatedAt = createdAt
	orderInput.UpdatedAt = createdAt

	return finalOrderID, nil
}

func takeSlots(ctx context.Context, tx pgx.Tx, productID uuid.UUID, qty int) error {
	cmdTag, err := tx.Exec(ctx, `
		UPDATE products
		SET slots_available = slots_available - $2, updated_at = now()
		WHERE id = $1 AND slots_available >= $2
	`, productID, qty)
	if err != nil {
		return fmt.Errorf("repository: failed to reserve slots for product %s: %w", productID, err)
	}
	if cmdTag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("repository: failed to check product %s: %w", productID, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	return fmt.Errorf("%w: %s", ErrSlotsExhausted, productID)
}

func (r *postgresRepository) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1
	`

	order, err := scanOrder(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", orderID, err)
	}

	return order, nil
}

func (r *postgresRepository) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC
	`
	orders, err := r.queryOrders(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders for user id %s: %w", userID, err)
	}
	return orders, nil
}

func (r *postgresRepository) ListOrders(ctx context.Context) ([]Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC
	`
	orders, err := r.queryOrders(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	return orders, nil
}

func (r *postgresRepository) queryOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *postgresRepository) MarkPaid(ctx context.Context, orderID uuid.UUID, result PaymentResult, paidAt time.Time) error {
	query := `
		UPDATE orders
		SET is_paid = TRUE, paid_at = $2, payment_result = $3, updated_at = $2
		WHERE id = $1 AND NOT is_paid
	`
	return r.updateStatus(ctx, orderID, StatusPaid, query, orderID, paidAt, result)
}

func (r *postgresRepository) MarkDelivered(ctx context.Context, orderID uuid.UUID, deliveredAt time.Time) error {
	query := `
		UPDATE orders
		SET is_delivered = TRUE, delivered_at = $2, updated_at = $2
		WHERE id = $1 AND is_paid AND NOT is_delivered
	`
	return r.updateStatus(ctx, orderID, StatusDelivered, query, orderID, deliveredAt)
}

func (r *postgresRepository) updateStatus(ctx context.Context, orderID uuid.UUID, newStatus Status, query string, args ...any) error {
	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("repository: failed to update order status")
		return fmt.Errorf("repository: failed to update order status %s: %w", orderID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		log.Warn().Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("repository: order not in a state allowing the update")
		return ErrInvalidStatusTransition
	}

	return nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var order Order
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.UserName,
		&order.UserEmail,
		&order.OrderItems,
		&order.ShippingAddress,
		&order.PaymentMethod,
		&order.PaymentResult,
		&order.ItemsPrice,
		&order.ShippingPrice,
		&order.TaxPrice,
		&order.TotalPrice,
		&order.IsPaid,
		&order.PaidAt,
		&order.IsDelivered,
		&order.DeliveredAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
