package kafka

import "time"

// EventType определяет тип события киоска
type EventType string

const (
	// События заказа
	EventTypeOrderConfirmed EventType = "order.confirmed"

	// События оплаты
	EventTypePaymentApproved EventType = "payment.approved"
	EventTypePaymentDeclined EventType = "payment.declined"
	EventTypePaymentTimedOut EventType = "payment.timed_out"

	// События печати
	EventTypePrintCompleted EventType = "print.completed"
	EventTypePrintFailed    EventType = "print.failed"
)

// Topics для Kafka
const (
	TopicOrderEvents = "kiosk.order.events"
	TopicPrintEvents = "kiosk.print.events"
)

// OrderEvent представляет событие жизненного цикла заказа
type OrderEvent struct {
	EventType    EventType              `json:"event_type"`
	OrderID      string                 `json:"order_id"`
	RestaurantID string                 `json:"restaurant_id"`
	OrderNumber  int                    `json:"order_number,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// PaymentEvent представляет исход попытки оплаты картой. Заказа на этот
// момент может не существовать: отклонённая или истёкшая попытка его не создаёт.
type PaymentEvent struct {
	EventType    EventType `json:"event_type"`
	IntentID     string    `json:"intent_id"`
	RestaurantID string    `json:"restaurant_id,omitempty"`
	Message      string    `json:"message,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// PrintEvent представляет итог рассылки чека по каналам печати
type PrintEvent struct {
	EventType    EventType `json:"event_type"`
	OrderID      string    `json:"order_id"`
	OrderNumber  int       `json:"order_number"`
	SuccessCount int       `json:"success_count"`
	FailureCount int       `json:"failure_count"`
	Printers     []string  `json:"printers,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewOrderEvent создает новое событие заказа
func NewOrderEvent(eventType EventType, orderID, restaurantID string, orderNumber int, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType:    eventType,
		OrderID:      orderID,
		RestaurantID: restaurantID,
		OrderNumber:  orderNumber,
		Timestamp:    time.Now(),
		Metadata:     metadata,
	}
}

// NewPaymentEvent создает новое событие исхода оплаты
func NewPaymentEvent(eventType EventType, intentID, restaurantID, message string) *PaymentEvent {
	return &PaymentEvent{
		EventType:    eventType,
		IntentID:     intentID,
		RestaurantID: restaurantID,
		Message:      message,
		Timestamp:    time.Now(),
	}
}

// NewPrintEvent создает новое событие печати
func NewPrintEvent(eventType EventType, orderID string, orderNumber, success, failure int, printers []string) *PrintEvent {
	return &PrintEvent{
		EventType:    eventType,
		OrderID:      orderID,
		OrderNumber:  orderNumber,
		SuccessCount: success,
		FailureCount: failure,
		Printers:     printers,
		Timestamp:    time.Now(),
	}
}
