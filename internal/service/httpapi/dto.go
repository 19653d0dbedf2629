package httpapi

import (
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/kiosk/internal/domain"
	"github.com/vladislavdragonenkov/kiosk/internal/service/pricing"
)

// selectionDTO — выбор клиента в теле запроса.
type selectionDTO struct {
	Options    map[string][]string       `json:"options"`
	Toppings   map[string][]string       `json:"toppings"`
	Quantities map[string]map[string]int `json:"quantities"`
}

func (d selectionDTO) toDomain() domain.Selection {
	sel := domain.NewSelection()
	for gid, ids := range d.Options {
		sel.Options[gid] = append([]string(nil), ids...)
	}
	for gid, ids := range d.Toppings {
		sel.Toppings[gid] = append([]string(nil), ids...)
	}
	for gid, qty := range d.Quantities {
		m := make(map[string]int, len(qty))
		for tid, q := range qty {
			m[tid] = q
		}
		sel.Quantities[gid] = m
	}
	return sel
}

type choiceDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceDelta string `json:"price_delta"`
}

type optionGroupDTO struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Required bool        `json:"required"`
	Multiple bool        `json:"multiple"`
	Choices  []choiceDTO `json:"choices"`
}

type toppingDTO struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Price   string  `json:"price"`
	TaxRate *string `json:"tax_rate,omitempty"`
}

type toppingGroupDTO struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Required          bool         `json:"required"`
	MinSelections     int          `json:"min_selections"`
	MaxSelections     int          `json:"max_selections"`
	AllowMultipleSame bool         `json:"allow_multiple_same"`
	Toppings          []toppingDTO `json:"toppings"`
}

type itemDTO struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	BasePrice     string            `json:"base_price"`
	TaxRate       *string           `json:"tax_rate,omitempty"`
	OptionGroups  []optionGroupDTO  `json:"option_groups"`
	ToppingGroups []toppingGroupDTO `json:"topping_groups"`
}

func toItemDTO(item *domain.MenuItem) itemDTO {
	dto := itemDTO{
		ID:            item.ID,
		Name:          item.Name,
		BasePrice:     item.BasePrice.StringFixed(2),
		TaxRate:       rateText(item.TaxRate),
		OptionGroups:  make([]optionGroupDTO, 0, len(item.OptionGroups)),
		ToppingGroups: make([]toppingGroupDTO, 0, len(item.ToppingGroups)),
	}
	for _, group := range item.OptionGroups {
		g := optionGroupDTO{
			ID:       group.ID,
			Name:     group.Name,
			Required: group.Required,
			Multiple: group.Multiple,
			Choices:  make([]choiceDTO, 0, len(group.Choices)),
		}
		for _, choice := range group.Choices {
			g.Choices = append(g.Choices, choiceDTO{
				ID:         choice.ID,
				Name:       choice.Name,
				PriceDelta: choice.PriceDelta.StringFixed(2),
			})
		}
		dto.OptionGroups = append(dto.OptionGroups, g)
	}
	for _, group := range item.ToppingGroups {
		g := toppingGroupDTO{
			ID:                group.ID,
			Name:              group.Name,
			Required:          group.Required,
			MinSelections:     group.MinSelections,
			MaxSelections:     group.MaxSelections,
			AllowMultipleSame: group.AllowMultipleSame,
			Toppings:          make([]toppingDTO, 0, len(group.Toppings)),
		}
		for _, topping := range group.Toppings {
			g.Toppings = append(g.Toppings, toppingDTO{
				ID:      topping.ID,
				Name:    topping.Name,
				Price:   topping.Price.StringFixed(2),
				TaxRate: rateText(topping.TaxRate),
			})
		}
		dto.ToppingGroups = append(dto.ToppingGroups, g)
	}
	return dto
}

type cartLineDTO struct {
	ID           string `json:"id"`
	ItemID       string `json:"item_id"`
	ItemName     string `json:"item_name"`
	Quantity     int    `json:"quantity"`
	UnitPrice    string `json:"unit_price"`
	LineTotal    string `json:"line_total"`
	Instructions string `json:"instructions,omitempty"`
}

type cartDTO struct {
	Version  int64         `json:"version"`
	Lines    []cartLineDTO `json:"lines"`
	Subtotal string        `json:"subtotal"`
	Tax      string        `json:"tax"`
	Total    string        `json:"total"`
}

func toCartDTO(cart domain.Cart, defaultRate decimal.Decimal) cartDTO {
	totals := pricing.CartTotals(cart, defaultRate)
	dto := cartDTO{
		Version:  cart.Version,
		Lines:    make([]cartLineDTO, 0, len(cart.Lines)),
		Subtotal: totals.Subtotal.StringFixed(2),
		Tax:      totals.Tax.StringFixed(2),
		Total:    totals.Total.StringFixed(2),
	}
	for i := range cart.Lines {
		line := &cart.Lines[i]
		dto.Lines = append(dto.Lines, cartLineDTO{
			ID:           line.ID,
			ItemID:       line.Item.ID,
			ItemName:     line.Item.Name,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice.StringFixed(2),
			LineTotal:    pricing.LineTotal(line).StringFixed(2),
			Instructions: line.Instructions,
		})
	}
	return dto
}

type orderDTO struct {
	ID       string `json:"id"`
	Number   int    `json:"number"`
	Type     string `json:"type"`
	TableID  string `json:"table_id,omitempty"`
	Method   string `json:"method"`
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

func toOrderDTO(order domain.Order) orderDTO {
	return orderDTO{
		ID:       order.ID,
		Number:   order.Number,
		Type:     string(order.Type),
		TableID:  order.TableID,
		Method:   string(order.Method),
		Subtotal: order.Totals.Subtotal.StringFixed(2),
		Tax:      order.Totals.Tax.StringFixed(2),
		Total:    order.Totals.Total.StringFixed(2),
	}
}

func rateText(rate *decimal.Decimal) *string {
	if rate == nil {
		return nil
	}
	text := rate.String()
	return &text
}
