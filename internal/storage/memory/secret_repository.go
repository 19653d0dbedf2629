package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/kiosk/internal/domain"
)

// SecretStore — in-memory хранилище ключей внешних провайдеров.
// Экспортируемый тип: тестам и локальной настройке нужен метод записи.
type SecretStore struct {
	mu   sync.RWMutex
	keys map[string]string // ключ: restaurantID + "/" + provider
}

// NewSecretStore возвращает in-memory хранилище секретов.
func NewSecretStore() *SecretStore {
	return &SecretStore{keys: make(map[string]string)}
}

// SetAPIKey сохраняет ключ провайдера для ресторана.
func (s *SecretStore) SetAPIKey(restaurantID, provider, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[restaurantID+"/"+provider] = key
}

// RetrieveAPIKey возвращает ключ или ErrSecretNotConfigured.
func (s *SecretStore) RetrieveAPIKey(_ context.Context, restaurantID, provider string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.keys[restaurantID+"/"+provider]
	if !ok {
		return "", domain.ErrSecretNotConfigured
	}
	return key, nil
}

var _ domain.SecretStore = (*SecretStore)(nil)
