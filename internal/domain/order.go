package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderType описывает способ получения заказа.
type OrderType string

const (
	// OrderTypeDineIn — заказ в зале; при включённом выборе столов требует TableID.
	OrderTypeDineIn OrderType = "dine_in"
	// OrderTypeTakeaway — заказ с собой.
	OrderTypeTakeaway OrderType = "takeaway"
)

// PaymentMethod описывает способ оплаты заказа.
type PaymentMethod string

const (
	// PaymentMethodCash — оплата на кассе; подтверждение происходит синхронно.
	PaymentMethodCash PaymentMethod = "cash"
	// PaymentMethodCard — оплата картой через асинхронный опрос платёжного интента.
	PaymentMethodCard PaymentMethod = "card"
)

// Totals — итоги корзины, восстановленные из цен с включённым налогом.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Order — снимок корзины с номером, присвоенным в момент подтверждения.
// После создания заказ неизменяем.
type Order struct {
	ID           string
	RestaurantID string
	// Number монотонно неубывает в пределах ресторана; присваивается запросом
	// количества заказов на момент подтверждения, без резервирования последовательности.
	Number    int
	Type      OrderType
	TableID   string
	Method    PaymentMethod
	Lines     []CartLine
	Totals    Totals
	CreatedAt time.Time
}

// Validate проверяет базовые инварианты заказа.
func (o *Order) Validate(tableSelectionEnabled bool) []error {
	var errs []error

	if o.RestaurantID == "" {
		errs = append(errs, ErrRestaurantRequired)
	}
	if len(o.Lines) == 0 {
		errs = append(errs, ErrCartEmpty)
	}
	if o.Type != OrderTypeDineIn && o.Type != OrderTypeTakeaway {
		errs = append(errs, ErrOrderTypeInvalid)
	}
	if o.Type == OrderTypeDineIn && tableSelectionEnabled && o.TableID == "" {
		errs = append(errs, ErrTableRequired)
	}
	if o.Method != PaymentMethodCash && o.Method != PaymentMethodCard {
		errs = append(errs, ErrPaymentMethodInvalid)
	}
	for i := range o.Lines {
		if lerrs := o.Lines[i].Validate(); len(lerrs) > 0 {
			errs = append(errs, lerrs...)
		}
	}

	return errs
}
