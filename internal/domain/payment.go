package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentIntentStatus описывает состояние платёжного интента.
// Статусы approved и declined терминальны: однажды разрешённый интент не меняется.
type PaymentIntentStatus string

const (
	// PaymentIntentPending — интент создан, терминал ещё не ответил.
	PaymentIntentPending PaymentIntentStatus = "pending"
	// PaymentIntentApproved — оплата подтверждена.
	PaymentIntentApproved PaymentIntentStatus = "approved"
	// PaymentIntentDeclined — оплата отклонена терминалом или провайдером.
	PaymentIntentDeclined PaymentIntentStatus = "declined"
)

// Terminal сообщает, достиг ли статус конечного состояния.
func (s PaymentIntentStatus) Terminal() bool {
	return s == PaymentIntentApproved || s == PaymentIntentDeclined
}

// PaymentIntent — серверная запись одной попытки оплаты картой.
type PaymentIntent struct {
	ID     string
	Amount decimal.Decimal
	Status PaymentIntentStatus
	// RelayMessage — текст причины от платёжного шлюза; может быть пустым.
	RelayMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate проверяет корректность полей интента.
func (p *PaymentIntent) Validate() []error {
	var errs []error
	if p.Amount.IsNegative() {
		errs = append(errs, ErrIntentAmountNegative)
	}
	switch p.Status {
	case PaymentIntentPending, PaymentIntentApproved, PaymentIntentDeclined:
	default:
		errs = append(errs, ErrIntentStatusInvalid)
	}
	return errs
}
