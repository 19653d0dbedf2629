package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/kiosk/internal/domain"
)

// catalogStoreInMemory — in-memory каталог меню для локальной разработки и тестов.
type catalogStoreInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.MenuItem // ключ: restaurantID + "/" + itemID
}

// NewCatalogStore возвращает in-memory каталог, заполненный переданными позициями.
func NewCatalogStore(items ...domain.MenuItem) domain.CatalogStore {
	store := &catalogStoreInMemory{items: make(map[string]domain.MenuItem, len(items))}
	for _, item := range items {
		store.items[item.RestaurantID+"/"+item.ID] = item
	}
	return store
}

// Item возвращает копию позиции меню или ErrItemNotFound.
// Отсутствующие вложенные коллекции остаются пустыми срезами, не ошибкой.
func (s *catalogStoreInMemory) Item(_ context.Context, restaurantID, itemID string) (domain.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[restaurantID+"/"+itemID]
	if !ok {
		return domain.MenuItem{}, domain.ErrItemNotFound
	}
	return item, nil
}

var _ domain.CatalogStore = (*catalogStoreInMemory)(nil)
