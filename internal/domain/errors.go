package domain

import "errors"

var (
	// Ошибка ссылки на несуществующую опционную группу.
	ErrUnknownOptionGroup = errors.New("selection references unknown option group")
	// Ошибка ссылки на несуществующий вариант внутри группы.
	ErrUnknownChoice = errors.New("selection references unknown choice")
	// Ошибка ссылки на несуществующую топпинг-группу.
	ErrUnknownToppingGroup = errors.New("selection references unknown topping group")
	// Ошибка ссылки на несуществующую добавку.
	ErrUnknownTopping = errors.New("selection references unknown topping")
	// Ошибка нескольких вариантов в группе одиночного выбора.
	ErrSingleChoiceGroup = errors.New("multiple choices in a single-select group")
	// Ошибка отрицательного количества добавки.
	ErrToppingQtyNegative = errors.New("topping quantity must be non-negative")
	// Ошибка количества строки корзины меньше единицы.
	ErrLineQtyInvalid = errors.New("cart line quantity must be at least one")
	// Ошибка отрицательной зафиксированной цены строки.
	ErrLinePriceInvalid = errors.New("cart line unit price must be non-negative")
	// ErrCartLineNotFound возвращается при мутации несуществующей строки.
	ErrCartLineNotFound = errors.New("cart line not found")
	// Ошибка отсутствующего идентификатора ресторана.
	ErrRestaurantRequired = errors.New("restaurant_id is required")
	// Ошибка подтверждения пустой корзины.
	ErrCartEmpty = errors.New("cart must contain at least one line")
	// Ошибка неизвестного типа заказа.
	ErrOrderTypeInvalid = errors.New("order type is invalid")
	// Ошибка отсутствующего стола для заказа в зале.
	ErrTableRequired = errors.New("table_id is required for dine-in orders")
	// Ошибка неизвестного способа оплаты.
	ErrPaymentMethodInvalid = errors.New("payment method is invalid")
	// Ошибка отрицательной суммы платёжного интента.
	ErrIntentAmountNegative = errors.New("payment intent amount must be non-negative")
	// Ошибка неизвестного статуса платёжного интента.
	ErrIntentStatusInvalid = errors.New("payment intent status is invalid")
	// ErrItemNotFound возвращается, если позиция меню не найдена в каталоге.
	ErrItemNotFound = errors.New("menu item not found")
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrIntentNotFound возвращается, если платёжный интент не найден.
	ErrIntentNotFound = errors.New("payment intent not found")
	// ErrIntentResolved сигнализирует попытку изменить терминальный интент.
	ErrIntentResolved = errors.New("payment intent already resolved")
	// ErrSecretNotConfigured — для ресторана не настроен ключ print-relay.
	ErrSecretNotConfigured = errors.New("relay credential is not configured")
	// ErrSecretUnauthorized — хранилище секретов отвергло запрос ключа.
	ErrSecretUnauthorized = errors.New("secret retrieval unauthorized")
	// ErrSecretUnavailable — сетевая ошибка при обращении к хранилищу секретов.
	ErrSecretUnavailable = errors.New("secret retrieval failed")
)

// IsNotFound проверяет, является ли ошибка одной из "не найдено".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrIntentNotFound) ||
		errors.Is(err, ErrCartLineNotFound)
}
