package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func testItem() MenuItem {
	return MenuItem{
		ID:           "burger",
		RestaurantID: "r1",
		Name:         "Burger",
		BasePrice:    decimal.NewFromFloat(8.50),
		OptionGroups: []OptionGroup{{
			ID:       "size",
			Name:     "Size",
			Required: true,
			Choices: []Choice{
				{ID: "small", Name: "Small"},
				{ID: "large", Name: "Large", PriceDelta: decimal.NewFromFloat(2.00)},
			},
		}},
		ToppingGroups: []ToppingGroup{{
			ID:                "extras",
			Name:              "Extras",
			AllowMultipleSame: true,
			Toppings: []Topping{
				{ID: "cheese", Name: "Cheese", Price: decimal.NewFromFloat(1.00)},
				{ID: "bacon", Name: "Bacon", Price: decimal.NewFromFloat(1.50)},
			},
		}},
	}
}

func TestSelectionValidate_UnknownReferences(t *testing.T) {
	item := testItem()

	sel := NewSelection()
	sel.Options["nope"] = []string{"x"}
	errs := sel.Validate(&item)
	if len(errs) != 1 || !errors.Is(errs[0], ErrUnknownOptionGroup) {
		t.Fatalf("expected ErrUnknownOptionGroup, got %v", errs)
	}

	sel = NewSelection()
	sel.Options["size"] = []string{"medium"}
	errs = sel.Validate(&item)
	if len(errs) != 1 || !errors.Is(errs[0], ErrUnknownChoice) {
		t.Fatalf("expected ErrUnknownChoice, got %v", errs)
	}

	sel = NewSelection()
	sel.Toppings["extras"] = []string{"pineapple"}
	errs = sel.Validate(&item)
	if len(errs) != 1 || !errors.Is(errs[0], ErrUnknownTopping) {
		t.Fatalf("expected ErrUnknownTopping, got %v", errs)
	}
}

func TestSelectionValidate_SingleChoiceGroup(t *testing.T) {
	item := testItem()

	sel := NewSelection()
	sel.Options["size"] = []string{"small", "large"}
	errs := sel.Validate(&item)
	if len(errs) != 1 || !errors.Is(errs[0], ErrSingleChoiceGroup) {
		t.Fatalf("expected ErrSingleChoiceGroup, got %v", errs)
	}
}

func TestSelectionValidate_NegativeQuantity(t *testing.T) {
	item := testItem()

	sel := NewSelection()
	sel.Toppings["extras"] = []string{"cheese"}
	sel.Quantities["extras"] = map[string]int{"cheese": -1}
	errs := sel.Validate(&item)
	if len(errs) != 1 || !errors.Is(errs[0], ErrToppingQtyNegative) {
		t.Fatalf("expected ErrToppingQtyNegative, got %v", errs)
	}
}

func TestSelectionToppingQuantity(t *testing.T) {
	sel := NewSelection()
	sel.Toppings["extras"] = []string{"cheese", "bacon"}
	sel.Quantities["extras"] = map[string]int{"cheese": 3, "bacon": 0}

	if got := sel.ToppingQuantity("extras", "cheese"); got != 3 {
		t.Fatalf("expected quantity 3, got %d", got)
	}
	// Явный ноль означает "не выбрано", хотя id присутствует в списке.
	if got := sel.ToppingQuantity("extras", "bacon"); got != 0 {
		t.Fatalf("expected quantity 0, got %d", got)
	}
	if sel.ToppingSelected("extras", "bacon") {
		t.Fatal("topping with zero quantity must not count as selected")
	}

	// Выбранная добавка без явной записи количества имеет количество 1.
	sel2 := NewSelection()
	sel2.Toppings["extras"] = []string{"cheese"}
	if got := sel2.ToppingQuantity("extras", "cheese"); got != 1 {
		t.Fatalf("expected implicit quantity 1, got %d", got)
	}
}

func TestSelectionClone_Independent(t *testing.T) {
	sel := NewSelection()
	sel.Options["size"] = []string{"small"}
	sel.Quantities["extras"] = map[string]int{"cheese": 2}

	clone := sel.Clone()
	clone.Options["size"][0] = "large"
	clone.Quantities["extras"]["cheese"] = 9

	if sel.Options["size"][0] != "small" {
		t.Fatal("clone mutation leaked into original options")
	}
	if sel.Quantities["extras"]["cheese"] != 2 {
		t.Fatal("clone mutation leaked into original quantities")
	}
}
