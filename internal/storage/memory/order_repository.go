package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/kiosk/internal/domain"
)

// orderStoreInMemory — простая in-memory реализация OrderStore.
type orderStoreInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Order
}

// NewOrderStore возвращает in-memory хранилище заказов для локальной разработки и тестов.
func NewOrderStore() domain.OrderStore {
	return &orderStoreInMemory{
		items: make(map[string]domain.Order),
	}
}

// Create сохраняет подтверждённый заказ.
func (r *orderStoreInMemory) Create(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.items[order.ID] = order
	return nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderStoreInMemory) Get(_ context.Context, id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// CountByRestaurant возвращает число заказов ресторана на текущий момент.
func (r *orderStoreInMemory) CountByRestaurant(_ context.Context, restaurantID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, order := range r.items {
		if order.RestaurantID == restaurantID {
			count++
		}
	}
	return count, nil
}

var _ domain.OrderStore = (*orderStoreInMemory)(nil)
