package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/kiosk/internal/domain"
)

// Файл каталога — JSON-снимок меню, который киоск получает при провижининге.
// Сервис не владеет меню и не редактирует его; файл читается один раз на старте.

type catalogFile struct {
	Items []catalogItem `json:"items"`
}

type catalogItem struct {
	ID            string                `json:"id"`
	RestaurantID  string                `json:"restaurant_id"`
	Name          string                `json:"name"`
	BasePrice     decimal.Decimal       `json:"base_price"`
	TaxRate       *decimal.Decimal      `json:"tax_rate,omitempty"`
	OptionGroups  []catalogOptionGroup  `json:"option_groups"`
	ToppingGroups []catalogToppingGroup `json:"topping_groups"`
}

type catalogOptionGroup struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Required bool            `json:"required"`
	Multiple bool            `json:"multiple"`
	Choices  []catalogChoice `json:"choices"`
}

type catalogChoice struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	PriceDelta decimal.Decimal `json:"price_delta"`
}

type catalogToppingGroup struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Required          bool               `json:"required"`
	MinSelections     int                `json:"min_selections"`
	MaxSelections     int                `json:"max_selections"`
	AllowMultipleSame bool               `json:"allow_multiple_same"`
	VisibleWhen       []catalogCondition `json:"visible_when,omitempty"`
	Toppings          []catalogTopping   `json:"toppings"`
}

type catalogCondition struct {
	SourceGroupID string `json:"source_group_id"`
	ChoiceID      string `json:"choice_id"`
}

type catalogTopping struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Price   decimal.Decimal  `json:"price"`
	TaxRate *decimal.Decimal `json:"tax_rate,omitempty"`
}

// loadCatalog читает JSON-файл каталога; пустой путь даёт пустой каталог.
func loadCatalog(path string) ([]domain.MenuItem, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	items := make([]domain.MenuItem, 0, len(file.Items))
	for _, raw := range file.Items {
		items = append(items, raw.toDomain())
	}
	return items, nil
}

func (ci catalogItem) toDomain() domain.MenuItem {
	item := domain.MenuItem{
		ID:           ci.ID,
		RestaurantID: ci.RestaurantID,
		Name:         ci.Name,
		BasePrice:    ci.BasePrice,
		TaxRate:      ci.TaxRate,
	}
	for _, g := range ci.OptionGroups {
		group := domain.OptionGroup{
			ID:       g.ID,
			Name:     g.Name,
			Required: g.Required,
			Multiple: g.Multiple,
		}
		for _, ch := range g.Choices {
			group.Choices = append(group.Choices, domain.Choice{
				ID:         ch.ID,
				Name:       ch.Name,
				PriceDelta: ch.PriceDelta,
			})
		}
		item.OptionGroups = append(item.OptionGroups, group)
	}
	for _, g := range ci.ToppingGroups {
		group := domain.ToppingGroup{
			ID:                g.ID,
			Name:              g.Name,
			Required:          g.Required,
			MinSelections:     g.MinSelections,
			MaxSelections:     g.MaxSelections,
			AllowMultipleSame: g.AllowMultipleSame,
		}
		for _, cond := range g.VisibleWhen {
			group.VisibleWhen = append(group.VisibleWhen, domain.VisibilityCondition{
				SourceGroupID: cond.SourceGroupID,
				ChoiceID:      cond.ChoiceID,
			})
		}
		for _, t := range g.Toppings {
			group.Toppings = append(group.Toppings, domain.Topping{
				ID:      t.ID,
				Name:    t.Name,
				Price:   t.Price,
				TaxRate: t.TaxRate,
			})
		}
		item.ToppingGroups = append(item.ToppingGroups, group)
	}
	return item
}
