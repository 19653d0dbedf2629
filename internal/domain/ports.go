package domain

import "context"

// CatalogStore описывает read-only доступ к каталогу меню.
// Отсутствующие вложенные коллекции (группы, добавки) возвращаются пустыми, не ошибкой.
type CatalogStore interface {
	// Item возвращает позицию меню с вложенными группами или ErrItemNotFound.
	Item(ctx context.Context, restaurantID, itemID string) (MenuItem, error)
}

// OrderStore хранит подтверждённые заказы и отвечает за последовательность номеров.
type OrderStore interface {
	Create(ctx context.Context, order Order) error
	Get(ctx context.Context, id string) (Order, error)
	// CountByRestaurant возвращает число заказов ресторана; следующий номер = count+1.
	CountByRestaurant(ctx context.Context, restaurantID string) (int, error)
}

// IntentStore хранит платёжные интенты.
type IntentStore interface {
	CreateIntent(ctx context.Context, intent PaymentIntent) (PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (PaymentIntent, error)
	// UpdateIntent переводит интент в новый статус; терминальные интенты неизменяемы.
	UpdateIntent(ctx context.Context, id string, status PaymentIntentStatus, relayMessage string) error
}

// SecretStore выдаёт учётные данные внешних провайдеров по ресторану.
// Реализация различает "не настроено" (ErrSecretNotConfigured), отказ в доступе
// (ErrSecretUnauthorized) и сетевую недоступность (ErrSecretUnavailable).
type SecretStore interface {
	RetrieveAPIKey(ctx context.Context, restaurantID, provider string) (string, error)
}
