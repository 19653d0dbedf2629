package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine — замороженная строка корзины: позиция, выбор и зафиксированная цена за единицу.
type CartLine struct {
	ID string
	// Item — копия определения позиции на момент добавления; последующие изменения каталога строку не трогают.
	Item MenuItem
	// Selection заморожен при добавлении в корзину.
	Selection Selection
	Quantity  int
	// Instructions — пожелания клиента ("без лука").
	Instructions string
	// UnitPrice зафиксирована при добавлении и никогда не пересчитывается из живого каталога.
	UnitPrice decimal.Decimal
	AddedAt   time.Time
}

// Cart — упорядоченный набор строк. Значение неизменяемо: каждая мутация
// возвращает новую версию, поэтому читатель никогда не видит частично применённое изменение.
type Cart struct {
	Version int64
	Lines   []CartLine
}

// WithLine возвращает новую версию корзины с добавленной строкой.
func (c Cart) WithLine(line CartLine) Cart {
	lines := make([]CartLine, 0, len(c.Lines)+1)
	lines = append(lines, c.Lines...)
	lines = append(lines, line)
	return Cart{Version: c.Version + 1, Lines: lines}
}

// WithQuantity возвращает новую версию с изменённым количеством строки.
// Количество <= 0 удаляет строку вместо её оценки по нулевой цене.
func (c Cart) WithQuantity(lineID string, quantity int) (Cart, error) {
	if quantity <= 0 {
		next, ok := c.withoutLine(lineID)
		if !ok {
			return c, ErrCartLineNotFound
		}
		return next, nil
	}

	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	for i := range lines {
		if lines[i].ID == lineID {
			lines[i].Quantity = quantity
			return Cart{Version: c.Version + 1, Lines: lines}, nil
		}
	}
	return c, ErrCartLineNotFound
}

// WithoutLine возвращает новую версию без указанной строки.
func (c Cart) WithoutLine(lineID string) (Cart, error) {
	next, ok := c.withoutLine(lineID)
	if !ok {
		return c, ErrCartLineNotFound
	}
	return next, nil
}

func (c Cart) withoutLine(lineID string) (Cart, bool) {
	lines := make([]CartLine, 0, len(c.Lines))
	found := false
	for _, line := range c.Lines {
		if line.ID == lineID {
			found = true
			continue
		}
		lines = append(lines, line)
	}
	if !found {
		return c, false
	}
	return Cart{Version: c.Version + 1, Lines: lines}, true
}

// Cleared возвращает пустую корзину следующей версии.
func (c Cart) Cleared() Cart {
	return Cart{Version: c.Version + 1}
}

// Empty сообщает, пуста ли корзина.
func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Line возвращает строку по идентификатору.
func (c Cart) Line(lineID string) (CartLine, bool) {
	for _, line := range c.Lines {
		if line.ID == lineID {
			return line, true
		}
	}
	return CartLine{}, false
}

// Validate проверяет инварианты строки корзины.
func (l *CartLine) Validate() []error {
	var errs []error
	if l.Quantity < 1 {
		errs = append(errs, ErrLineQtyInvalid)
	}
	if l.UnitPrice.IsNegative() {
		errs = append(errs, ErrLinePriceInvalid)
	}
	if verrs := l.Selection.Validate(&l.Item); len(verrs) > 0 {
		errs = append(errs, verrs...)
	}
	return errs
}
