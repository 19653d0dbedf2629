package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/kiosk/internal/domain"
)

const opTimeout = 5 * time.Second

type orderStore struct {
	db *sql.DB
}

// NewOrderStore создаёт PostgreSQL-реализацию OrderStore.
func NewOrderStore(store *Store) domain.OrderStore {
	return &orderStore{db: store.DB()}
}

// Create сохраняет заказ и его строки в одной транзакции.
// Определение позиции и выбор сериализуются в JSONB: чек можно перепечатать
// из снимка даже после изменения живого каталога.
func (r *orderStore) Create(ctx context.Context, order domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, restaurant_id, number, order_type, table_id, payment_method,
			subtotal, tax, total, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		order.ID, order.RestaurantID, order.Number, string(order.Type), order.TableID,
		string(order.Method), order.Totals.Subtotal, order.Totals.Tax, order.Totals.Total,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, line := range order.Lines {
		var itemJSON, selectionJSON []byte
		if itemJSON, err = json.Marshal(line.Item); err != nil {
			return fmt.Errorf("marshal line item: %w", err)
		}
		if selectionJSON, err = json.Marshal(line.Selection); err != nil {
			return fmt.Errorf("marshal line selection: %w", err)
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (
				id, order_id, position, quantity, unit_price, instructions, item, selection, added_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`,
			line.ID, order.ID, i, line.Quantity, line.UnitPrice, line.Instructions,
			itemJSON, selectionJSON, line.AddedAt,
		); err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

// Get восстанавливает заказ вместе со строками.
func (r *orderStore) Get(ctx context.Context, id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var order domain.Order
	var orderType, method string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, restaurant_id, number, order_type, table_id, payment_method,
		       subtotal, tax, total, created_at
		FROM orders WHERE id = $1
	`, id).Scan(
		&order.ID, &order.RestaurantID, &order.Number, &orderType, &order.TableID,
		&method, &order.Totals.Subtotal, &order.Totals.Tax, &order.Totals.Total,
		&order.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}
	order.Type = domain.OrderType(orderType)
	order.Method = domain.PaymentMethod(method)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, quantity, unit_price, instructions, item, selection, added_at
		FROM order_lines WHERE order_id = $1 ORDER BY position
	`, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("select order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.CartLine
		var itemJSON, selectionJSON []byte
		if err := rows.Scan(
			&line.ID, &line.Quantity, &line.UnitPrice, &line.Instructions,
			&itemJSON, &selectionJSON, &line.AddedAt,
		); err != nil {
			return domain.Order{}, fmt.Errorf("scan order line: %w", err)
		}
		if err := json.Unmarshal(itemJSON, &line.Item); err != nil {
			return domain.Order{}, fmt.Errorf("unmarshal line item: %w", err)
		}
		if err := json.Unmarshal(selectionJSON, &line.Selection); err != nil {
			return domain.Order{}, fmt.Errorf("unmarshal line selection: %w", err)
		}
		order.Lines = append(order.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return domain.Order{}, fmt.Errorf("iterate order lines: %w", err)
	}

	return order, nil
}

// CountByRestaurant возвращает число заказов ресторана.
func (r *orderStore) CountByRestaurant(ctx context.Context, restaurantID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var count int
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM orders WHERE restaurant_id = $1
	`, restaurantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return count, nil
}

var _ domain.OrderStore = (*orderStore)(nil)
