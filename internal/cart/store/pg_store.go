package store

import (
	"context"
	"fmt"

	carterrors "github.com/akopato/storefront/internal/cart/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore implements CartStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of CartStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// ItemsByUser returns all cart lines for the user, oldest first.
func (p *PgStore) ItemsByUser(ctx context.Context, userID uuid.UUID) ([]CartItem, error) {
	rows, err := p.db.Query(ctx,
		`SELECT user_id, product_id, quantity, created_at
		 FROM cart_items WHERE user_id = $1
		 ORDER BY created_at, product_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	var items []CartItem
	for rows.Next() {
		var item CartItem
		if err := rows.Scan(&item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cart items: %w", err)
	}
	return items, nil
}

// Upsert sets the quantity for a product line, inserting it if absent.
func (p *PgStore) Upsert(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*CartItem, error) {
	var item CartItem
	err := p.db.QueryRow(ctx,
		`INSERT INTO cart_items (user_id, product_id, quantity)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, product_id)
		 DO UPDATE SET quantity = EXCLUDED.quantity
		 RETURNING user_id, product_id, quantity, created_at`,
		userID, productID, quantity).
		Scan(&item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert cart item: %w", err)
	}
	return &item, nil
}

// Remove deletes a product line.
// Returns ErrItemNotFound if the line does not exist.
func (p *PgStore) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	tag, err := p.db.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return carterrors.ErrItemNotFound
	}
	return nil
}

// Clear empties the user's cart.
func (p *PgStore) Clear(ctx context.Context, userID uuid.UUID) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
