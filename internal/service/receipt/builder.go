// Пакет receipt строит чек заказа в двух представлениях из одной канонической модели:
// структурированное дерево для предпросмотра и локальной печати, и поток команд
// для термопринтера. Оба представления никогда не расходятся по содержимому.
package receipt

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/kiosk/internal/domain"
	"github.com/vladislavdragonenkov/kiosk/internal/service/pricing"
	"github.com/vladislavdragonenkov/kiosk/internal/service/validate"
)

// Context — read-only контекст рендеринга, передаваемый в билдер один раз.
type Context struct {
	RestaurantName string
	Location       string
	Currency       string
	// DefaultTaxRate — ставка ресторана для позиций без явной ставки.
	DefaultTaxRate decimal.Decimal
	// DividerWidth — ширина разделительной линии в символах.
	DividerWidth int
}

// Modifier — одна строка модификатора (опция или добавка) с текстом цены.
type Modifier struct {
	Label     string `json:"label"`
	PriceText string `json:"price_text,omitempty"`
}

// ToppingSection — добавки одной категории на чеке.
type ToppingSection struct {
	CategoryLabel string     `json:"category_label"`
	Toppings      []Modifier `json:"toppings"`
}

// Line — каноническая модель одной строки чека.
type Line struct {
	Label           string           `json:"label"`
	Quantity        int              `json:"quantity"`
	UnitPriceText   string           `json:"unit_price_text"`
	Modifiers       []Modifier       `json:"modifiers,omitempty"`
	GroupedToppings []ToppingSection `json:"grouped_toppings,omitempty"`
	Instructions    string           `json:"instructions,omitempty"`
}

// Header — шапка чека.
type Header struct {
	RestaurantName string    `json:"restaurant_name"`
	Location       string    `json:"location,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	OrderNumber    int       `json:"order_number"`
	// OrderLabel — тип заказа или стол ("Dine-in, table 5" / "Takeaway").
	OrderLabel string `json:"order_label"`
}

// Footer — итоги и завершающие строки чека.
type Footer struct {
	SubtotalText string   `json:"subtotal_text"`
	TaxText      string   `json:"tax_text"`
	TotalText    string   `json:"total_text"`
	ClosingLines []string `json:"closing_lines,omitempty"`
}

// Document — структурированная форма чека.
type Document struct {
	Header Header `json:"header"`
	Lines  []Line `json:"lines"`
	Footer Footer `json:"footer"`
}

// Build строит каноническую модель чека из заказа (или предпросмотра до подтверждения).
func Build(order *domain.Order, rc Context) *Document {
	doc := &Document{
		Header: Header{
			RestaurantName: rc.RestaurantName,
			Location:       rc.Location,
			Timestamp:      order.CreatedAt,
			OrderNumber:    order.Number,
			OrderLabel:     orderLabel(order),
		},
		Footer: Footer{
			SubtotalText: FormatAmount(rc.Currency, order.Totals.Subtotal),
			TaxText:      FormatAmount(rc.Currency, order.Totals.Tax),
			TotalText:    FormatAmount(rc.Currency, order.Totals.Total),
			ClosingLines: []string{"Thank you!", "Please collect your order at the counter."},
		},
	}

	for i := range order.Lines {
		doc.Lines = append(doc.Lines, buildLine(&order.Lines[i], rc))
	}

	return doc
}

func buildLine(line *domain.CartLine, rc Context) Line {
	itemRate := pricing.EffectiveItemRate(&line.Item, rc.DefaultTaxRate)

	out := Line{
		Label:         line.Item.Name,
		Quantity:      line.Quantity,
		UnitPriceText: FormatAmount(rc.Currency, line.UnitPrice),
		Instructions:  line.Instructions,
	}

	for _, group := range line.Item.OptionGroups {
		for _, choiceID := range line.Selection.Options[group.ID] {
			choice, ok := group.ChoiceByID(choiceID)
			if !ok {
				continue
			}
			mod := Modifier{Label: choice.Name}
			if !choice.PriceDelta.IsZero() {
				mod.PriceText = "+" + FormatAmount(rc.Currency, choice.PriceDelta)
			}
			out.Modifiers = append(out.Modifiers, mod)
		}
	}

	for _, group := range validate.VisibleToppingGroups(&line.Item, line.Selection) {
		section := ToppingSection{CategoryLabel: group.Name}
		for _, toppingID := range line.Selection.Toppings[group.ID] {
			topping, ok := group.ToppingByID(toppingID)
			if !ok {
				continue
			}
			qty := 1
			if group.AllowMultipleSame {
				qty = line.Selection.ToppingQuantity(group.ID, toppingID)
			}
			if qty == 0 {
				continue
			}
			label := topping.Name
			if qty > 1 {
				label = label + " x" + strconv.Itoa(qty)
			}
			// Ставка добавки печатается, только когда отличается от ставки позиции.
			if topping.TaxRate != nil && !topping.TaxRate.Equal(itemRate) {
				label = label + " (tax " + topping.TaxRate.StringFixed(0) + "%)"
			}
			mod := Modifier{Label: label}
			if !topping.Price.IsZero() {
				total := topping.Price.Mul(decimal.NewFromInt(int64(qty)))
				mod.PriceText = "+" + FormatAmount(rc.Currency, total)
			}
			section.Toppings = append(section.Toppings, mod)
		}
		if len(section.Toppings) > 0 {
			out.GroupedToppings = append(out.GroupedToppings, section)
		}
	}

	return out
}

func orderLabel(order *domain.Order) string {
	if order.Type == domain.OrderTypeDineIn {
		if order.TableID != "" {
			return "Dine-in, table " + order.TableID
		}
		return "Dine-in"
	}
	return "Takeaway"
}
