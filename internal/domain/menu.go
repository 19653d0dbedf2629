package domain

import "github.com/shopspring/decimal"

// Choice — один вариант внутри опционной группы (например, размер "большой").
type Choice struct {
	ID   string
	Name string
	// PriceDelta — надбавка к базовой цене позиции, всегда >= 0.
	PriceDelta decimal.Decimal
}

// OptionGroup — группа вариантов с одиночным или множественным выбором.
type OptionGroup struct {
	ID   string
	Name string
	// Required — группа обязана иметь хотя бы один выбранный вариант.
	Required bool
	// Multiple — допускается несколько выбранных вариантов; иначе новый выбор замещает старый.
	Multiple bool
	Choices  []Choice
}

// Topping — одна добавка внутри топпинг-группы.
type Topping struct {
	ID    string
	Name  string
	Price decimal.Decimal
	// TaxRate — налоговая ставка добавки в процентах; nil означает ставку самой позиции.
	TaxRate *decimal.Decimal
}

// VisibilityCondition описывает зависимость видимости группы от выбора в другой группе.
type VisibilityCondition struct {
	// SourceGroupID — группа (опционная или топпинг), от выбора в которой зависит видимость.
	SourceGroupID string
	// ChoiceID — идентификатор варианта или добавки, который должен быть выбран.
	ChoiceID string
}

// ToppingGroup — группа добавок с правилами кардинальности и условной видимостью.
type ToppingGroup struct {
	ID       string
	Name     string
	Required bool
	// MinSelections — минимум выбранных добавок; 0 трактуется как 1 для required-групп.
	MinSelections int
	// MaxSelections — максимум выбранных добавок; 0 означает отсутствие ограничения.
	MaxSelections int
	// AllowMultipleSame — одну и ту же добавку можно брать в количестве > 1.
	AllowMultipleSame bool
	// VisibleWhen — группа видима, только когда выполнены все условия; пустой список = всегда видима.
	VisibleWhen []VisibilityCondition
	Toppings    []Topping
}

// MenuItem — неизменяемое определение позиции меню на время жизни заказа.
type MenuItem struct {
	ID           string
	RestaurantID string
	Name         string
	// BasePrice хранится с включённым налогом.
	BasePrice decimal.Decimal
	// TaxRate — базовая ставка позиции в процентах; nil означает ставку ресторана по умолчанию.
	TaxRate       *decimal.Decimal
	OptionGroups  []OptionGroup
	ToppingGroups []ToppingGroup
}

// OptionGroupByID возвращает опционную группу по идентификатору.
func (m *MenuItem) OptionGroupByID(id string) (OptionGroup, bool) {
	for _, g := range m.OptionGroups {
		if g.ID == id {
			return g, true
		}
	}
	return OptionGroup{}, false
}

// ToppingGroupByID возвращает топпинг-группу по идентификатору.
func (m *MenuItem) ToppingGroupByID(id string) (ToppingGroup, bool) {
	for _, g := range m.ToppingGroups {
		if g.ID == id {
			return g, true
		}
	}
	return ToppingGroup{}, false
}

// ChoiceByID возвращает вариант внутри группы.
func (g *OptionGroup) ChoiceByID(id string) (Choice, bool) {
	for _, c := range g.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}

// ToppingByID возвращает добавку внутри группы.
func (g *ToppingGroup) ToppingByID(id string) (Topping, bool) {
	for _, t := range g.Toppings {
		if t.ID == id {
			return t, true
		}
	}
	return Topping{}, false
}
