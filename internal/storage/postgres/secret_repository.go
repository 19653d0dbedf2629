package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/kiosk/internal/domain"
)

type secretStore struct {
	db *sql.DB
}

// NewSecretStore создаёт PostgreSQL-реализацию SecretStore.
func NewSecretStore(store *Store) domain.SecretStore {
	return &secretStore{db: store.DB()}
}

// RetrieveAPIKey возвращает ключ провайдера для ресторана.
// Отсутствие записи — ErrSecretNotConfigured; отказ базы — ErrSecretUnavailable,
// чтобы вызывающий отличал "не настроено" от сбоя инфраструктуры.
func (r *secretStore) RetrieveAPIKey(ctx context.Context, restaurantID, provider string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var apiKey string
	err := r.db.QueryRowContext(ctx, `
		SELECT api_key FROM printer_credentials
		WHERE restaurant_id = $1 AND provider = $2
	`, restaurantID, provider).Scan(&apiKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrSecretNotConfigured
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrSecretUnavailable, err)
	}
	return apiKey, nil
}

var _ domain.SecretStore = (*secretStore)(nil)
