package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/kiosk/internal/domain"
)

// intentStoreInMemory — in-memory реализация IntentStore.
type intentStoreInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.PaymentIntent
}

// NewIntentStore возвращает in-memory хранилище платёжных интентов.
func NewIntentStore() domain.IntentStore {
	return &intentStoreInMemory{
		items: make(map[string]domain.PaymentIntent),
	}
}

// CreateIntent сохраняет новый интент, присваивая ему идентификатор.
func (r *intentStoreInMemory) CreateIntent(_ context.Context, intent domain.PaymentIntent) (domain.PaymentIntent, error) {
	if intent.ID == "" {
		intent.ID = uuid.NewString()
	}
	if intent.Status == "" {
		intent.Status = domain.PaymentIntentPending
	}
	now := time.Now().UTC()
	intent.CreatedAt = now
	intent.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[intent.ID] = intent
	return intent, nil
}

// GetIntent возвращает интент или ErrIntentNotFound.
func (r *intentStoreInMemory) GetIntent(_ context.Context, id string) (domain.PaymentIntent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	intent, ok := r.items[id]
	if !ok {
		return domain.PaymentIntent{}, domain.ErrIntentNotFound
	}
	return intent, nil
}

// UpdateIntent переводит интент в новый статус. Терминальный интент неизменяем:
// повторное разрешение возвращает ErrIntentResolved.
func (r *intentStoreInMemory) UpdateIntent(_ context.Context, id string, status domain.PaymentIntentStatus, relayMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	intent, ok := r.items[id]
	if !ok {
		return domain.ErrIntentNotFound
	}
	if intent.Status.Terminal() {
		return domain.ErrIntentResolved
	}
	intent.Status = status
	intent.RelayMessage = relayMessage
	intent.UpdatedAt = time.Now().UTC()
	r.items[id] = intent
	return nil
}

var _ domain.IntentStore = (*intentStoreInMemory)(nil)
