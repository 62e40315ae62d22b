package store

import (
	"context"
	"errors"
	"fmt"

	ordererrors "github.com/akopato/storefront/internal/order/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore implements OrderStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of OrderStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

const orderColumns = `id, user_id, status, total_price, version, created_at`
const orderItemColumns = `id, order_id, product_id, quantity, price_per_item, price`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalPrice, &o.Version, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// FindByID retrieves a single order with its lines.
// Returns ErrOrderNotFound if no order exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Order, []OrderItem, error) {
	order, err := scanOrder(p.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ordererrors.ErrOrderNotFound
		}
		return nil, nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	rows, err := p.db.Query(ctx,
		`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = $1`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find order items: %w", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.Quantity, &item.PricePerItem, &item.Price); err != nil {
			return nil, nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate order items: %w", err)
	}
	return order, items, nil
}

// FindOrdersByUserID returns the user's orders, newest first.
func (p *PgStore) FindOrdersByUserID(ctx context.Context, params ListParams) ([]Order, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id
		 LIMIT $2 OFFSET $3`,
		params.UserID, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to find user orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return orders, nil
}

// CreateOrder atomically inserts the order with its lines and decrements product stock.
// Returns ErrInsufficientStock when any product cannot cover its requested quantity.
func (p *PgStore) CreateOrder(ctx context.Context, userID uuid.UUID, totalPrice int64, items []CreateItemParams) (*Order, []OrderItem, error) {
	var createdOrder *Order
	var createdItems []OrderItem

	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		order, err := scanOrder(tx.QueryRow(ctx,
			`INSERT INTO orders (user_id, status, total_price)
			 VALUES ($1, $2, $3)
			 RETURNING `+orderColumns,
			userID, StatusPending, totalPrice))
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		orderItems := make([]OrderItem, 0, len(items))
		for _, item := range items {
			// Stock is decremented in the same transaction; a failed guard
			// means another order got there first.
			tag, err := tx.Exec(ctx,
				`UPDATE products
				 SET stock_quantity = stock_quantity - $2, version = version + 1
				 WHERE id = $1 AND stock_quantity >= $2`,
				item.ProductID, item.Quantity)
			if err != nil {
				return fmt.Errorf("failed to decrement stock: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("product %s: %w", item.ProductID, ordererrors.ErrInsufficientStock)
			}

			var orderItem OrderItem
			err = tx.QueryRow(ctx,
				`INSERT INTO order_items (order_id, product_id, quantity, price_per_item, price)
				 VALUES ($1, $2, $3, $4, $5)
				 RETURNING `+orderItemColumns,
				order.ID, item.ProductID, item.Quantity, item.PricePerItem, item.Price).
				Scan(&orderItem.ID, &orderItem.OrderID, &orderItem.ProductID,
					&orderItem.Quantity, &orderItem.PricePerItem, &orderItem.Price)
			if err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
			orderItems = append(orderItems, orderItem)
		}

		createdOrder = order
		createdItems = orderItems
		return nil
	})
	if txErr != nil {
		return nil, nil, txErr
	}
	return createdOrder, createdItems, nil
}

// UpdateStatus changes the order's status, gated by version.
// Returns ErrOrderNotFound or ErrOptimisticLock accordingly.
func (p *PgStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string, version int32) (*Order, error) {
	order, err := scanOrder(p.db.QueryRow(ctx,
		`UPDATE orders
		 SET status = $2, version = version + 1
		 WHERE id = $1 AND version = $3
		 RETURNING `+orderColumns,
		id, status, version))
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	// Distinguish a missing order from an optimistic lock conflict.
	_, err = scanOrder(p.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ordererrors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to re-read order: %w", err)
	}
	return nil, ordererrors.ErrOptimisticLock
}

func (p *PgStore) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("failed to roll back transaction: %w", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
