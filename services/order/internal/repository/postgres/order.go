package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/sakibbengal/Bengal-Boats-sub000/pkg/database"
	apperrors "github.com/sakibbengal/Bengal-Boats-sub000/pkg/errors"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/order/internal/domain"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/order/internal/repository"
)

// Money columns are NUMERIC. They are written as decimal strings and read
// back with ::text so no precision passes through float64.
const orderColumns = `o.id, o.status, o.customer_name, o.customer_email, o.customer_phone,
	o.address, o.city, o.postal_code, o.payment_method, o.delivery_option,
	o.delivery_fee::text, o.subtotal::text, o.total::text, o.notes, o.canceled_reason,
	o.created_at, o.updated_at`

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

// Create inserts a new order and its items atomically within a transaction.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	orderQuery := `
		INSERT INTO orders (id, status, customer_name, customer_email, customer_phone, address, city, postal_code,
			payment_method, delivery_option, delivery_fee, subtotal, total, notes, canceled_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err = tx.Exec(ctx, orderQuery,
		o.ID,
		o.Status,
		o.Customer.Name,
		o.Customer.Email,
		o.Customer.Phone,
		o.Customer.Address,
		o.Customer.City,
		o.Customer.PostalCode,
		o.PaymentMethod,
		o.DeliveryOption,
		o.DeliveryFee.String(),
		o.Subtotal.String(),
		o.Total.String(),
		o.Notes,
		o.CanceledReason,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, name, price, quantity, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Name,
			item.Price.String(),
			item.Quantity,
			item.Image,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an order by its ID with its items aggregated in one query.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `,
			COALESCE(
				JSONB_AGG(
					JSONB_BUILD_OBJECT(
						'id', oi.id,
						'orderId', oi.order_id,
						'productId', oi.product_id,
						'name', oi.name,
						'price', oi.price::text,
						'quantity', oi.quantity,
						'image', oi.image
					) ORDER BY oi.created_at, oi.id
				) FILTER (WHERE oi.id IS NOT NULL),
				'[]'::jsonb
			) AS items
		FROM orders o
		LEFT JOIN order_items oi ON o.id = oi.order_id
		WHERE o.id = $1
		GROUP BY o.id`

	var (
		m         moneyColumns
		itemsJSON []byte
	)
	o := &domain.Order{}
	dest := append(orderDest(o, &m), &itemsJSON)

	if err := r.pool.QueryRow(ctx, query, id).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	if err := m.apply(o); err != nil {
		return nil, err
	}

	o.Items = []domain.OrderItem{}
	if len(itemsJSON) > 0 && string(itemsJSON) != "null" {
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal order items: %w", err)
		}
	}

	return o, nil
}

// List returns orders matching the given filter with the total count.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s,
			count(*) OVER() AS total_count
		FROM orders o
		%s
		ORDER BY o.created_at DESC
		LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var totalCount int
	orders := make([]domain.Order, 0)

	for rows.Next() {
		var (
			o domain.Order
			m moneyColumns
		)
		dest := append(orderDest(&o, &m), &totalCount)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		if err := m.apply(&o); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	if len(orders) > 0 {
		if err := r.attachItems(ctx, orders); err != nil {
			return nil, 0, err
		}
	}

	return orders, totalCount, nil
}

// attachItems batch-loads items for all orders in a single query.
func (r *OrderRepository) attachItems(ctx context.Context, orders []domain.Order) error {
	orderIDs := make([]string, len(orders))
	for i := range orders {
		orderIDs[i] = orders[i].ID
	}

	itemsQuery := `
		SELECT id, order_id, product_id, name, price::text, quantity, image
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, itemsQuery, orderIDs)
	if err != nil {
		return fmt.Errorf("batch load order items: %w", err)
	}
	defer rows.Close()

	itemsByOrderID := make(map[string][]domain.OrderItem, len(orders))
	for rows.Next() {
		var (
			item  domain.OrderItem
			price string
		)
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Name,
			&price,
			&item.Quantity,
			&item.Image,
		); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return fmt.Errorf("parse price of item %s: %w", item.ID, err)
		}
		itemsByOrderID[item.OrderID] = append(itemsByOrderID[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate batch order item rows: %w", err)
	}

	for i := range orders {
		if items, ok := itemsByOrderID[orders[i].ID]; ok {
			orders[i].Items = items
		} else {
			orders[i].Items = []domain.OrderItem{}
		}
	}
	return nil
}

// UpdateStatus changes the status of an order. The reason is recorded only
// when the order is canceled.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status string, reason string) error {
	if status != domain.OrderStatusCanceled {
		reason = ""
	}

	query := `
		UPDATE orders
		SET status = $1,
		    canceled_reason = CASE WHEN $1 = 'canceled' THEN $2 ELSE canceled_reason END,
		    updated_at = $3
		WHERE id = $4`

	ct, err := r.pool.Exec(ctx, query, status, reason, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

// moneyColumns receives the ::text money columns of an order row.
type moneyColumns struct {
	deliveryFee, subtotal, total string
}

func (m *moneyColumns) apply(o *domain.Order) error {
	var err error
	if o.DeliveryFee, err = decimal.NewFromString(m.deliveryFee); err != nil {
		return fmt.Errorf("parse delivery_fee of order %s: %w", o.ID, err)
	}
	if o.Subtotal, err = decimal.NewFromString(m.subtotal); err != nil {
		return fmt.Errorf("parse subtotal of order %s: %w", o.ID, err)
	}
	if o.Total, err = decimal.NewFromString(m.total); err != nil {
		return fmt.Errorf("parse total of order %s: %w", o.ID, err)
	}
	return nil
}

// orderDest returns scan targets matching orderColumns.
func orderDest(o *domain.Order, m *moneyColumns) []any {
	return []any{
		&o.ID,
		&o.Status,
		&o.Customer.Name,
		&o.Customer.Email,
		&o.Customer.Phone,
		&o.Customer.Address,
		&o.Customer.City,
		&o.Customer.PostalCode,
		&o.PaymentMethod,
		&o.DeliveryOption,
		&m.deliveryFee,
		&m.subtotal,
		&m.total,
		&o.Notes,
		&o.CanceledReason,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
}
