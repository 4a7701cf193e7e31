package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/HerbHall/tradeboard/internal/store"
	"github.com/HerbHall/tradeboard/pkg/models"
)

// ProductFilter controls which products are returned by List.
type ProductFilter struct {
	Status        string // Filter by ProductStatus value.
	Category      string // Exact category match.
	SellerID      string // Products of one seller.
	Search        string // Search name or SKU.
	MinPriceCents *int64 // Inclusive lower price bound.
	MaxPriceCents *int64 // Inclusive upper price bound.
}

// ProductRepository provides CRUD access to catalog products.
type ProductRepository interface {
	// Get returns a single product by ID.
	Get(ctx context.Context, id string) (*models.Product, error)

	// List returns a filtered, paginated list of products.
	List(ctx context.Context, filter ProductFilter, opts ListOptions) (*ListResult[models.Product], error)

	// Create inserts a new product. If product.ID is empty, a UUID is generated.
	Create(ctx context.Context, product *models.Product) error

	// Update modifies an existing product's mutable fields.
	Update(ctx context.Context, product *models.Product) error

	// Delete removes a product by ID.
	Delete(ctx context.Context, id string) error
}

// Compile-time interface guard.
var _ ProductRepository = (*SQLiteProductRepository)(nil)

// productSorts maps API sort keys to columns.
var productSorts = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"price":     "price_cents",
	"stock":     "stock",
}

// ProductSortKeys returns the sort keys List accepts.
func ProductSortKeys() []string { return sortKeys(productSorts) }

// SQLiteProductRepository implements ProductRepository using SQLite.
type SQLiteProductRepository struct {
	db  *sql.DB
	now Clock
}

// NewSQLiteProductRepository runs the product migrations and returns a repository.
func NewSQLiteProductRepository(ctx context.Context, st *store.SQLiteStore, opts ...Option) (*SQLiteProductRepository, error) {
	if err := st.Migrate(ctx, "products", productMigrations); err != nil {
		return nil, fmt.Errorf("product migrations: %w", err)
	}
	o := buildOptions(opts)
	return &SQLiteProductRepository{db: st.DB(), now: o.now}, nil
}

const productColumns = `id, seller_id, sku, name, category, status,
	price_cents, currency, stock, min_order_qty, created_at, updated_at`

func (r *SQLiteProductRepository) Get(ctx context.Context, id string) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product %q: %w", id, err)
	}
	return p, nil
}

func (r *SQLiteProductRepository) List(ctx context.Context, filter ProductFilter, opts ListOptions) (*ListResult[models.Product], error) {
	opts = normalizeListOptions(opts)

	where := []string{"1=1"}
	var args []any

	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.SellerID != "" {
		where = append(where, "seller_id = ?")
		args = append(args, filter.SellerID)
	}
	if filter.Search != "" {
		where = append(where, `(name LIKE ? ESCAPE '\' OR sku LIKE ? ESCAPE '\')`)
		pattern := containsPattern(filter.Search)
		args = append(args, pattern, pattern)
	}
	if filter.MinPriceCents != nil {
		where = append(where, "price_cents >= ?")
		args = append(args, *filter.MinPriceCents)
	}
	if filter.MaxPriceCents != nil {
		where = append(where, "price_cents <= ?")
		args = append(args, *filter.MaxPriceCents)
	}
	cond := strings.Join(where, " AND ")

	var total int
	//nolint:gosec // cond uses parameterized placeholders only
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products WHERE "+cond, args...,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	queryArgs := make([]any, 0, len(args)+2)
	queryArgs = append(queryArgs, args...)
	queryArgs = append(queryArgs, opts.Limit, opts.Offset)

	//nolint:gosec // cond and order are built from validated columns
	query := fmt.Sprintf(
		"SELECT %s FROM products WHERE %s ORDER BY %s LIMIT ? OFFSET ?",
		productColumns, cond, orderClause(opts, productSorts, "created_at"),
	)
	rows, err := r.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return &ListResult[models.Product]{Items: products, Total: total}, nil
}

func (r *SQLiteProductRepository) Create(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = models.ProductStatusDraft
	}
	if !p.Status.Valid() {
		return fmt.Errorf("product status %q: %w", p.Status, ErrInvalid)
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if p.MinOrderQty <= 0 {
		p.MinOrderQty = 1
	}
	now := r.now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = p.CreatedAt

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (
			id, seller_id, sku, name, category, status,
			price_cents, currency, stock, min_order_qty, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.SellerID, p.SKU, p.Name, p.Category, string(p.Status),
		p.PriceCents, p.Currency, p.Stock, p.MinOrderQty, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create product %q: %w", p.SKU, ErrAlreadyExists)
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *SQLiteProductRepository) Update(ctx context.Context, p *models.Product) error {
	if !p.Status.Valid() {
		return fmt.Errorf("product status %q: %w", p.Status, ErrInvalid)
	}
	p.UpdatedAt = r.now().UTC()

	res, err := r.db.ExecContext(ctx, `
		UPDATE products SET
			sku = ?, name = ?, category = ?, status = ?,
			price_cents = ?, currency = ?, stock = ?, min_order_qty = ?, updated_at = ?
		WHERE id = ?`,
		p.SKU, p.Name, p.Category, string(p.Status),
		p.PriceCents, p.Currency, p.Stock, p.MinOrderQty, p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(s rowScanner) (*models.Product, error) {
	var p models.Product
	var status string
	err := s.Scan(
		&p.ID, &p.SellerID, &p.SKU, &p.Name, &p.Category, &status,
		&p.PriceCents, &p.Currency, &p.Stock, &p.MinOrderQty, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = models.ProductStatus(status)
	return &p, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var productMigrations = []store.Migration{
	{
		Version:     1,
		Description: "create products table",
		Up: func(tx *sql.Tx) error {
			stmts := []string{
				`CREATE TABLE products (
					id            TEXT PRIMARY KEY,
					seller_id     TEXT     NOT NULL,
					sku           TEXT     NOT NULL,
					name          TEXT     NOT NULL,
					category      TEXT     NOT NULL DEFAULT '',
					status        TEXT     NOT NULL DEFAULT 'draft',
					price_cents   INTEGER  NOT NULL DEFAULT 0,
					currency      TEXT     NOT NULL DEFAULT 'USD',
					stock         INTEGER  NOT NULL DEFAULT 0,
					min_order_qty INTEGER  NOT NULL DEFAULT 1,
					created_at    DATETIME NOT NULL,
					updated_at    DATETIME NOT NULL,
					UNIQUE (seller_id, sku)
				)`,
				`CREATE INDEX idx_products_status ON products(status)`,
				`CREATE INDEX idx_products_category ON products(category)`,
				`CREATE INDEX idx_products_created_at ON products(created_at)`,
			}
			for _, stmt := range stmts {
				if _, err := tx.Exec(stmt); err != nil {
					return err
				}
			}
			return nil
		},
	},
}
