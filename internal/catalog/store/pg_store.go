package store

import (
	"context"
	"errors"
	"fmt"

	catalogerrors "github.com/akopato/storefront/internal/catalog/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

const productColumns = `id, name, description, price, stock_quantity, category, brand, image_urls, version, created_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity,
		&p.Category, &p.Brand, &p.ImageURLs, &p.Version, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalogerrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// List retrieves one page of products and the total count under the same filter.
// A page past the end of the collection yields an empty slice, not an error.
func (p *PgStore) List(ctx context.Context, params ListParams) ([]Product, int64, error) {
	const filter = ` WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
	                   AND ($2 = '' OR category = $2)`

	var total int64
	err := p.db.QueryRow(ctx,
		`SELECT count(*) FROM products`+filter,
		params.Search, params.Category).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	rows, err := p.db.Query(ctx,
		`SELECT `+productColumns+` FROM products`+filter+`
		 ORDER BY created_at, id
		 LIMIT $3 OFFSET $4`,
		params.Search, params.Category, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0, params.Limit)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate product rows: %w", err)
	}
	return products, total, nil
}

// Create adds a new product to the system.
// Returns an error if the product cannot be created.
func (p *PgStore) Create(ctx context.Context, params CreateParams) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`INSERT INTO products (name, description, price, stock_quantity, category, brand, image_urls)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+productColumns,
		params.Name, params.Description, params.Price, params.Stock,
		params.Category, params.Brand, params.ImageURLs)
	product, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// Update modifies an existing product's details.
// Returns ErrProductNotFound if no product exists with the given ID and version.
func (p *PgStore) Update(ctx context.Context, params UpdateParams) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`UPDATE products
		 SET name = $2, description = $3, price = $4, stock_quantity = $5,
		     category = $6, brand = $7, image_urls = $8, version = version + 1
		 WHERE id = $1 AND version = $9
		 RETURNING `+productColumns,
		params.ID, params.Name, params.Description, params.Price, params.Stock,
		params.Category, params.Brand, params.ImageURLs, params.Version)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalogerrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// UpdateStock adjusts the stock quantity of a product.
// Returns ErrProductNotFound if no product exists with the given ID and version.
func (p *PgStore) UpdateStock(ctx context.Context, id uuid.UUID, stock int32, version int32) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`UPDATE products
		 SET stock_quantity = $2, version = version + 1
		 WHERE id = $1 AND version = $3
		 RETURNING `+productColumns,
		id, stock, version)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalogerrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product stock: %w", err)
	}
	return product, nil
}

// DeleteByID removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID and version.
func (p *PgStore) DeleteByID(ctx context.Context, id uuid.UUID, version int32) error {
	tag, err := p.db.Exec(ctx,
		`DELETE FROM products WHERE id = $1 AND version = $2`, id, version)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalogerrors.ErrProductNotFound
	}
	return nil
}
