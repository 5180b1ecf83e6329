package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ordering-service/internal/apperr"
	"ordering-service/internal/models"
)

// orderRow is the flat row shape for the orders table; user details nest in
// the JSON model but live in plain columns.
type orderRow struct {
	ID             string         `db:"id"`
	FirstName      string         `db:"first_name"`
	LastName       string         `db:"last_name"`
	Email          string         `db:"email"`
	TotalAmount    float64        `db:"total_amount"`
	OrderDate      time.Time      `db:"order_date"`
	Status         string         `db:"status"`
	IdempotencyKey sql.NullString `db:"idempotency_key"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r *orderRow) toModel() *models.Order {
	return &models.Order{
		ID: r.ID,
		UserDetails: models.UserDetails{
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Email:     r.Email,
		},
		TotalAmount:    r.TotalAmount,
		OrderDate:      r.OrderDate,
		Status:         r.Status,
		IdempotencyKey: r.IdempotencyKey.String,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// CreateOrder writes an order and its line items in a single transaction.
// On success the order's CreatedAt/UpdatedAt and item ids are filled in.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &apperr.StorageError{Op: "begin order tx", Err: err}
	}
	defer tx.Rollback()

	var idemKey sql.NullString
	if order.IdempotencyKey != "" {
		idemKey = sql.NullString{String: order.IdempotencyKey, Valid: true}
	}

	query := `
		INSERT INTO orders (id, first_name, last_name, email, total_amount, order_date, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err = tx.QueryRowxContext(ctx, query,
		order.ID, order.UserDetails.FirstName, order.UserDetails.LastName,
		order.UserDetails.Email, order.TotalAmount, order.OrderDate,
		order.Status, idemKey,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return &apperr.StorageError{Op: "insert order", Err: err}
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, name, category, price, description, quantity, is_custom)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err = tx.QueryRowxContext(ctx, itemQuery,
			item.OrderID, item.ProductID, item.Name, item.Category,
			item.Price, item.Description, item.Quantity, item.IsCustom,
		).Scan(&item.ID)
		if err != nil {
			return &apperr.StorageError{Op: "insert order item", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &apperr.StorageError{Op: "commit order tx", Err: err}
	}
	return nil
}

// GetOrderByID retrieves an order with its line items
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var row orderRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM orders WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &apperr.NotFoundError{Resource: "order", ID: id}
	}
	if err != nil {
		return nil, &apperr.StorageError{Op: "select order", Err: err}
	}

	order := row.toModel()
	if err := s.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrderByIdempotencyKey returns the order previously created with the
// given key, or nil when the key is unseen.
func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	var row orderRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM orders WHERE idempotency_key = $1", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &apperr.StorageError{Op: "select order by idempotency key", Err: err}
	}

	order := row.toModel()
	if err := s.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders retrieves all orders, newest first
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	var rows []orderRow
	err := s.db.SelectContext(ctx, &rows, "SELECT * FROM orders ORDER BY created_at DESC")
	if err != nil {
		return nil, &apperr.StorageError{Op: "select orders", Err: err}
	}

	orders := make([]models.Order, 0, len(rows))
	for i := range rows {
		order := rows[i].toModel()
		if err := s.loadItems(ctx, order); err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

func (s *Store) loadItems(ctx context.Context, order *models.Order) error {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", order.ID)
	if err != nil {
		return &apperr.StorageError{Op: "select order items", Err: err}
	}
	order.Items = items
	return nil
}
