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

// OrderFilter controls which orders are returned by List.
type OrderFilter struct {
	Status   string // Filter by OrderStatus value.
	BuyerID  string // Orders placed by one buyer.
	SellerID string // Orders received by one seller.
	Search   string // Search order number.
}

// OrderRepository provides access to orders for the seller console and
// the back-office.
type OrderRepository interface {
	Get(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter, opts ListOptions) (*ListResult[models.Order], error)
	Create(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
}

var _ OrderRepository = (*SQLiteOrderRepository)(nil)

var orderSorts = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"total":     "total_cents",
	"status":    "status",
	"number":    "number",
}

// OrderSortKeys returns the sort keys List accepts.
func OrderSortKeys() []string { return sortKeys(orderSorts) }

// SQLiteOrderRepository implements OrderRepository using SQLite.
type SQLiteOrderRepository struct {
	db  *sql.DB
	now Clock
}

// NewSQLiteOrderRepository runs the order migrations and returns a repository.
func NewSQLiteOrderRepository(ctx context.Context, st *store.SQLiteStore, opts ...Option) (*SQLiteOrderRepository, error) {
	if err := st.Migrate(ctx, "orders", orderMigrations); err != nil {
		return nil, fmt.Errorf("order migrations: %w", err)
	}
	o := buildOptions(opts)
	return &SQLiteOrderRepository{db: st.DB(), now: o.now}, nil
}

const orderColumns = `id, number, buyer_id, seller_id, status,
	total_cents, currency, item_count, created_at, updated_at`

func (r *SQLiteOrderRepository) Get(ctx context.Context, id string) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order %q: %w", id, err)
	}
	return o, nil
}

func (r *SQLiteOrderRepository) List(ctx context.Context, filter OrderFilter, opts ListOptions) (*ListResult[models.Order], error) {
	opts = normalizeListOptions(opts)

	where := []string{"1=1"}
	var args []any
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.BuyerID != "" {
		where = append(where, "buyer_id = ?")
		args = append(args, filter.BuyerID)
	}
	if filter.SellerID != "" {
		where = append(where, "seller_id = ?")
		args = append(args, filter.SellerID)
	}
	if filter.Search != "" {
		where = append(where, `number LIKE ? ESCAPE '\'`)
		args = append(args, containsPattern(filter.Search))
	}
	cond := strings.Join(where, " AND ")

	var total int
	//nolint:gosec // cond uses parameterized placeholders only
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM orders WHERE "+cond, args...,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	queryArgs := append(append([]any{}, args...), opts.Limit, opts.Offset)

	//nolint:gosec // cond and order are built from validated columns
	query := fmt.Sprintf(
		"SELECT %s FROM orders WHERE %s ORDER BY %s LIMIT ? OFFSET ?",
		orderColumns, cond, orderClause(opts, orderSorts, "created_at"),
	)
	rows, err := r.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return &ListResult[models.Order]{Items: orders, Total: total}, nil
}

func (r *SQLiteOrderRepository) Create(ctx context.Context, o *models.Order) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.Status == "" {
		o.Status = models.OrderStatusPending
	}
	if !o.Status.Valid() {
		return fmt.Errorf("order status %q: %w", o.Status, ErrInvalid)
	}
	if o.Number == "" {
		o.Number = "PO-" + strings.ToUpper(o.ID[:8])
	}
	if o.Currency == "" {
		o.Currency = "USD"
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = r.now().UTC()
	}
	o.UpdatedAt = o.CreatedAt

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (
			id, number, buyer_id, seller_id, status,
			total_cents, currency, item_count, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Number, o.BuyerID, o.SellerID, string(o.Status),
		o.TotalCents, o.Currency, o.ItemCount, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create order %q: %w", o.Number, ErrAlreadyExists)
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *SQLiteOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("order status %q: %w", status, ErrInvalid)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), r.now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOrder(s rowScanner) (*models.Order, error) {
	var o models.Order
	var status string
	err := s.Scan(
		&o.ID, &o.Number, &o.BuyerID, &o.SellerID, &status,
		&o.TotalCents, &o.Currency, &o.ItemCount, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = models.OrderStatus(status)
	return &o, nil
}

var orderMigrations = []store.Migration{
	{
		Version:     1,
		Description: "create orders table",
		Up: func(tx *sql.Tx) error {
			stmts := []string{
				`CREATE TABLE orders (
					id          TEXT PRIMARY KEY,
					number      TEXT     NOT NULL UNIQUE,
					buyer_id    TEXT     NOT NULL,
					seller_id   TEXT     NOT NULL,
					status      TEXT     NOT NULL DEFAULT 'pending',
					total_cents INTEGER  NOT NULL DEFAULT 0,
					currency    TEXT     NOT NULL DEFAULT 'USD',
					item_count  INTEGER  NOT NULL DEFAULT 0,
					created_at  DATETIME NOT NULL,
					updated_at  DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_orders_seller ON orders(seller_id)`,
				`CREATE INDEX idx_orders_buyer ON orders(buyer_id)`,
				`CREATE INDEX idx_orders_created_at ON orders(created_at)`,
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
