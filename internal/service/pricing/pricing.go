// Пакет pricing вычисляет цены строк и итоги корзины.
// Все хранимые цены включают налог; subtotal/tax восстанавливаются делением,
// а округление до двух знаков применяется только при агрегации.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/kiosk/internal/domain"
	"github.com/vladislavdragonenkov/kiosk/internal/service/validate"
)

// DefaultTaxRate — ставка ресторана по умолчанию для позиций без явной ставки.
var DefaultTaxRate = decimal.NewFromInt(10)

var one = decimal.NewFromInt(1)
var hundred = decimal.NewFromInt(100)

// UnitPrice возвращает цену одной единицы позиции с выбранными опциями и добавками:
// базовая цена + сумма надбавок опций + сумма (цена добавки × количество).
// Скрытые топпинг-группы в цену не входят.
func UnitPrice(item *domain.MenuItem, sel domain.Selection) decimal.Decimal {
	price := item.BasePrice

	for _, group := range item.OptionGroups {
		for _, choiceID := range sel.Options[group.ID] {
			if choice, ok := group.ChoiceByID(choiceID); ok {
				price = price.Add(choice.PriceDelta)
			}
		}
	}

	for _, group := range validate.VisibleToppingGroups(item, sel) {
		for _, toppingID := range sel.Toppings[group.ID] {
			topping, ok := group.ToppingByID(toppingID)
			if !ok {
				continue
			}
			qty := toppingQty(&group, sel, toppingID)
			if qty == 0 {
				continue
			}
			price = price.Add(topping.Price.Mul(decimal.NewFromInt(int64(qty))))
		}
	}

	// Отрицательная цена недостижима при выполнении инвариантов каталога;
	// на всякий случай прижимаем к нулю вместо выдачи отрицательной суммы.
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

// LineTotal возвращает стоимость строки: зафиксированная цена × количество.
// Живой каталог при этом не опрашивается.
func LineTotal(line *domain.CartLine) decimal.Decimal {
	return line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
}

// TaxBucket — вклад строки в один налоговый разрез.
type TaxBucket struct {
	// Rate — ставка в процентах.
	Rate decimal.Decimal
	// Inclusive — сумма с включённым налогом.
	Inclusive decimal.Decimal
}

// CartTotals агрегирует итоги корзины по строкам и налоговым разрезам.
// На каждый разрез: exclusive = inclusive/(1+rate/100), округляется до двух знаков;
// налог = inclusive − exclusive, поэтому subtotal+tax в точности равны сумме строк.
func CartTotals(cart domain.Cart, defaultRate decimal.Decimal) domain.Totals {
	subtotal := decimal.Zero
	tax := decimal.Zero

	for i := range cart.Lines {
		for _, bucket := range LineBuckets(&cart.Lines[i], defaultRate) {
			exclusive := bucket.Inclusive.Div(one.Add(bucket.Rate.Div(hundred))).Round(2)
			subtotal = subtotal.Add(exclusive)
			tax = tax.Add(bucket.Inclusive.Sub(exclusive))
		}
	}

	return domain.Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// LineBuckets раскладывает строку на налоговые разрезы: базовая цена позиции по её
// ставке плюс по разрезу на каждую отличную ставку среди выбранных добавок.
// Вклады умножаются на количество строки.
func LineBuckets(line *domain.CartLine, defaultRate decimal.Decimal) []TaxBucket {
	itemRate := EffectiveItemRate(&line.Item, defaultRate)
	lineQty := decimal.NewFromInt(int64(line.Quantity))

	var buckets []TaxBucket
	add := func(rate, inclusive decimal.Decimal) {
		for i := range buckets {
			if buckets[i].Rate.Equal(rate) {
				buckets[i].Inclusive = buckets[i].Inclusive.Add(inclusive)
				return
			}
		}
		buckets = append(buckets, TaxBucket{Rate: rate, Inclusive: inclusive})
	}

	add(itemRate, line.Item.BasePrice.Mul(lineQty))

	for _, group := range line.Item.OptionGroups {
		for _, choiceID := range line.Selection.Options[group.ID] {
			if choice, ok := group.ChoiceByID(choiceID); ok {
				// Надбавки опций наследуют ставку позиции.
				add(itemRate, choice.PriceDelta.Mul(lineQty))
			}
		}
	}

	for _, group := range validate.VisibleToppingGroups(&line.Item, line.Selection) {
		for _, toppingID := range line.Selection.Toppings[group.ID] {
			topping, ok := group.ToppingByID(toppingID)
			if !ok {
				continue
			}
			qty := toppingQty(&group, line.Selection, toppingID)
			if qty == 0 {
				continue
			}
			rate := itemRate
			if topping.TaxRate != nil {
				rate = *topping.TaxRate
			}
			add(rate, topping.Price.Mul(decimal.NewFromInt(int64(qty))).Mul(lineQty))
		}
	}

	return buckets
}

// EffectiveItemRate возвращает ставку позиции или ставку ресторана по умолчанию.
func EffectiveItemRate(item *domain.MenuItem, defaultRate decimal.Decimal) decimal.Decimal {
	if item.TaxRate != nil {
		return *item.TaxRate
	}
	return defaultRate
}

func toppingQty(group *domain.ToppingGroup, sel domain.Selection, toppingID string) int {
	if group.AllowMultipleSame {
		return sel.ToppingQuantity(group.ID, toppingID)
	}
	// Для групп без повторов выбранная добавка всегда имеет количество 1.
	if sel.ToppingSelected(group.ID, toppingID) {
		return 1
	}
	return 0
}
