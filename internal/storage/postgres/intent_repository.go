package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/kiosk/internal/domain"
)

type intentStore struct {
	db *sql.DB
}

// NewIntentStore создаёт PostgreSQL-реализацию IntentStore.
func NewIntentStore(store *Store) domain.IntentStore {
	return &intentStore{db: store.DB()}
}

// CreateIntent сохраняет новый интент со статусом pending.
func (r *intentStore) CreateIntent(ctx context.Context, intent domain.PaymentIntent) (domain.PaymentIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if intent.ID == "" {
		intent.ID = uuid.NewString()
	}
	if intent.Status == "" {
		intent.Status = domain.PaymentIntentPending
	}
	now := time.Now().UTC()
	intent.CreatedAt = now
	intent.UpdatedAt = now

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_intents (id, amount, status, relay_message, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, intent.ID, intent.Amount, string(intent.Status), intent.RelayMessage,
		intent.CreatedAt, intent.UpdatedAt,
	); err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("insert payment intent: %w", err)
	}
	return intent, nil
}

// GetIntent возвращает интент или ErrIntentNotFound.
func (r *intentStore) GetIntent(ctx context.Context, id string) (domain.PaymentIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var intent domain.PaymentIntent
	var status string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, amount, status, relay_message, created_at, updated_at
		FROM payment_intents WHERE id = $1
	`, id).Scan(&intent.ID, &intent.Amount, &status, &intent.RelayMessage,
		&intent.CreatedAt, &intent.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PaymentIntent{}, domain.ErrIntentNotFound
	}
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("select payment intent: %w", err)
	}
	intent.Status = domain.PaymentIntentStatus(status)
	return intent, nil
}

// UpdateIntent переводит интент в новый статус; терминальные интенты неизменяемы.
func (r *intentStore) UpdateIntent(ctx context.Context, id string, status domain.PaymentIntentStatus, relayMessage string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE payment_intents
		SET status = $2, relay_message = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4
	`, id, string(status), relayMessage, string(domain.PaymentIntentPending))
	if err != nil {
		return fmt.Errorf("update payment intent: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update payment intent result: %w", err)
	}
	if affected == 0 {
		if _, getErr := r.GetIntent(ctx, id); getErr != nil {
			return getErr
		}
		return domain.ErrIntentResolved
	}
	return nil
}

var _ domain.IntentStore = (*intentStore)(nil)
