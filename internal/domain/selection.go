package domain

// Selection — выбор клиента для одного экземпляра позиции до заморозки в корзине.
type Selection struct {
	// Options: id опционной группы -> выбранные варианты.
	Options map[string][]string
	// Toppings: id топпинг-группы -> выбранные добавки.
	Toppings map[string][]string
	// Quantities: id топпинг-группы -> id добавки -> количество.
	// Заполняется только для групп с AllowMultipleSame; количество 0 эквивалентно отсутствию выбора.
	Quantities map[string]map[string]int
}

// NewSelection возвращает пустой выбор с инициализированными картами.
func NewSelection() Selection {
	return Selection{
		Options:    make(map[string][]string),
		Toppings:   make(map[string][]string),
		Quantities: make(map[string]map[string]int),
	}
}

// Clone возвращает глубокую копию выбора; замороженная в корзине копия не делит память с диалогом.
func (s Selection) Clone() Selection {
	out := NewSelection()
	for gid, ids := range s.Options {
		out.Options[gid] = append([]string(nil), ids...)
	}
	for gid, ids := range s.Toppings {
		out.Toppings[gid] = append([]string(nil), ids...)
	}
	for gid, qty := range s.Quantities {
		m := make(map[string]int, len(qty))
		for tid, q := range qty {
			m[tid] = q
		}
		out.Quantities[gid] = m
	}
	return out
}

// ToppingQuantity возвращает количество добавки с учётом правила "0 = не выбрано".
// Для выбранной добавки без явной записи количество равно 1.
func (s Selection) ToppingQuantity(groupID, toppingID string) int {
	if qty, ok := s.Quantities[groupID]; ok {
		if q, ok := qty[toppingID]; ok {
			return q
		}
	}
	for _, id := range s.Toppings[groupID] {
		if id == toppingID {
			return 1
		}
	}
	return 0
}

// OptionSelected сообщает, выбран ли вариант в опционной группе.
func (s Selection) OptionSelected(groupID, choiceID string) bool {
	for _, id := range s.Options[groupID] {
		if id == choiceID {
			return true
		}
	}
	return false
}

// ToppingSelected сообщает, выбрана ли добавка с ненулевым количеством.
func (s Selection) ToppingSelected(groupID, toppingID string) bool {
	for _, id := range s.Toppings[groupID] {
		if id == toppingID {
			return s.ToppingQuantity(groupID, toppingID) > 0
		}
	}
	return false
}

// Validate проверяет инварианты выбора относительно определения позиции:
// все идентификаторы существуют, количества неотрицательны.
func (s Selection) Validate(item *MenuItem) []error {
	var errs []error

	for gid, ids := range s.Options {
		group, ok := item.OptionGroupByID(gid)
		if !ok {
			errs = append(errs, ErrUnknownOptionGroup)
			continue
		}
		if !group.Multiple && len(ids) > 1 {
			errs = append(errs, ErrSingleChoiceGroup)
		}
		for _, id := range ids {
			if _, ok := group.ChoiceByID(id); !ok {
				errs = append(errs, ErrUnknownChoice)
			}
		}
	}

	for gid, ids := range s.Toppings {
		group, ok := item.ToppingGroupByID(gid)
		if !ok {
			errs = append(errs, ErrUnknownToppingGroup)
			continue
		}
		for _, id := range ids {
			if _, ok := group.ToppingByID(id); !ok {
				errs = append(errs, ErrUnknownTopping)
			}
		}
	}

	for gid, qty := range s.Quantities {
		for _, q := range qty {
			if q < 0 {
				errs = append(errs, ErrToppingQtyNegative)
			}
		}
		if _, ok := item.ToppingGroupByID(gid); !ok {
			errs = append(errs, ErrUnknownToppingGroup)
		}
	}

	return errs
}
