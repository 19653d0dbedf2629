package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/kiosk/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// bowlItem — позиция 10.00 со ставкой ресторана и добавкой 2.00 со ставкой 20%.
func bowlItem() domain.MenuItem {
	return domain.MenuItem{
		ID:           "bowl",
		RestaurantID: "r1",
		Name:         "Bowl",
		BasePrice:    dec("10.00"),
		OptionGroups: []domain.OptionGroup{{
			ID:   "size",
			Name: "Size",
			Choices: []domain.Choice{
				{ID: "regular", Name: "Regular"},
				{ID: "large", Name: "Large", PriceDelta: dec("2.50")},
			},
		}},
		ToppingGroups: []domain.ToppingGroup{{
			ID:                "extras",
			Name:              "Extras",
			AllowMultipleSame: true,
			Toppings: []domain.Topping{
				{ID: "drink", Name: "Drink", Price: dec("2.00"), TaxRate: decPtr("20")},
				{ID: "egg", Name: "Egg", Price: dec("1.00")},
			},
		}},
	}
}

func lineFor(item domain.MenuItem, sel domain.Selection, qty int) domain.CartLine {
	return domain.CartLine{
		ID:        "l1",
		Item:      item,
		Selection: sel,
		Quantity:  qty,
		UnitPrice: UnitPrice(&item, sel),
	}
}

func TestUnitPrice(t *testing.T) {
	item := bowlItem()

	sel := domain.NewSelection()
	if got := UnitPrice(&item, sel); !got.Equal(dec("10.00")) {
		t.Fatalf("expected base price 10.00, got %s", got)
	}

	sel.Options["size"] = []string{"large"}
	sel.Toppings["extras"] = []string{"drink", "egg"}
	sel.Quantities["extras"] = map[string]int{"drink": 2}
	// 10.00 + 2.50 + 2×2.00 + 1.00 = 17.50
	if got := UnitPrice(&item, sel); !got.Equal(dec("17.50")) {
		t.Fatalf("expected 17.50, got %s", got)
	}
}

func TestUnitPrice_HiddenGroupExcluded(t *testing.T) {
	item := bowlItem()
	item.ToppingGroups[0].VisibleWhen = []domain.VisibilityCondition{
		{SourceGroupID: "size", ChoiceID: "large"},
	}

	sel := domain.NewSelection()
	sel.Options["size"] = []string{"regular"}
	sel.Toppings["extras"] = []string{"drink"}

	// Группа скрыта при regular: её добавки не входят в цену.
	if got := UnitPrice(&item, sel); !got.Equal(dec("10.00")) {
		t.Fatalf("hidden group toppings must not be priced, got %s", got)
	}
}

func TestUnitPrice_ZeroQuantityEqualsUnselected(t *testing.T) {
	item := bowlItem()

	sel := domain.NewSelection()
	sel.Toppings["extras"] = []string{"drink"}
	sel.Quantities["extras"] = map[string]int{"drink": 0}

	if got := UnitPrice(&item, sel); !got.Equal(dec("10.00")) {
		t.Fatalf("zero-quantity topping must not be priced, got %s", got)
	}
}

func TestLineTotal_UsesFrozenPrice(t *testing.T) {
	item := bowlItem()
	line := lineFor(item, domain.NewSelection(), 3)

	// Изменение каталога после заморозки не влияет на стоимость строки.
	line.Item.BasePrice = dec("99.00")

	if got := LineTotal(&line); !got.Equal(dec("30.00")) {
		t.Fatalf("expected 30.00 from frozen price, got %s", got)
	}
}

func TestCartTotals_PerRateBuckets(t *testing.T) {
	item := bowlItem()
	sel := domain.NewSelection()
	sel.Toppings["extras"] = []string{"drink"}

	cart := domain.Cart{}.WithLine(lineFor(item, sel, 1))
	totals := CartTotals(cart, DefaultTaxRate)

	// 10.00 по ставке 10%: exclusive 9.09, налог 0.91.
	// 2.00 по ставке 20%: exclusive 1.67, налог 0.33.
	if !totals.Subtotal.Equal(dec("10.76")) {
		t.Fatalf("expected subtotal 10.76, got %s", totals.Subtotal)
	}
	if !totals.Tax.Equal(dec("1.24")) {
		t.Fatalf("expected tax 1.24, got %s", totals.Tax)
	}
	if !totals.Total.Equal(dec("12.00")) {
		t.Fatalf("expected total 12.00, got %s", totals.Total)
	}
}

func TestCartTotals_ExactlyMatchesLineSum(t *testing.T) {
	item := bowlItem()
	sel := domain.NewSelection()
	sel.Options["size"] = []string{"large"}
	sel.Toppings["extras"] = []string{"drink", "egg"}
	sel.Quantities["extras"] = map[string]int{"drink": 2}

	cart := domain.Cart{}.
		WithLine(lineFor(item, sel, 2)).
		WithLine(lineFor(item, domain.NewSelection(), 3))

	lineSum := decimal.Zero
	for i := range cart.Lines {
		lineSum = lineSum.Add(LineTotal(&cart.Lines[i]))
	}

	totals := CartTotals(cart, DefaultTaxRate)
	if !totals.Total.Equal(lineSum) {
		t.Fatalf("subtotal+tax (%s) must equal line sum (%s)", totals.Total, lineSum)
	}
	if !totals.Subtotal.Add(totals.Tax).Equal(totals.Total) {
		t.Fatalf("totals are inconsistent: %s + %s != %s", totals.Subtotal, totals.Tax, totals.Total)
	}
}

func TestCartTotals_RateChangeMovesSplitNotTotal(t *testing.T) {
	item := bowlItem()
	cart := domain.Cart{}.WithLine(lineFor(item, domain.NewSelection(), 1))

	tenPct := CartTotals(cart, dec("10"))
	twentyPct := CartTotals(cart, dec("20"))

	if !tenPct.Total.Equal(twentyPct.Total) {
		t.Fatalf("total must not change with rate: %s vs %s", tenPct.Total, twentyPct.Total)
	}
	if tenPct.Tax.GreaterThanOrEqual(twentyPct.Tax) {
		t.Fatalf("higher rate must yield higher tax: %s vs %s", tenPct.Tax, twentyPct.Tax)
	}
}

func TestLineBuckets(t *testing.T) {
	item := bowlItem()
	sel := domain.NewSelection()
	sel.Options["size"] = []string{"large"}
	sel.Toppings["extras"] = []string{"drink", "egg"}

	line := lineFor(item, sel, 2)
	buckets := LineBuckets(&line, DefaultTaxRate)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}

	byRate := map[string]decimal.Decimal{}
	for _, b := range buckets {
		byRate[b.Rate.String()] = b.Inclusive
	}
	// Ставка позиции: (10.00 + 2.50 + 1.00) × 2 = 27.00; надбавка опции и
	// добавка без собственной ставки наследуют ставку позиции.
	if !byRate["10"].Equal(dec("27.00")) {
		t.Fatalf("expected 27.00 at item rate, got %s", byRate["10"])
	}
	// Ставка добавки: 2.00 × 2 = 4.00.
	if !byRate["20"].Equal(dec("4.00")) {
		t.Fatalf("expected 4.00 at topping rate, got %s", byRate["20"])
	}
}

func TestEffectiveItemRate(t *testing.T) {
	item := bowlItem()
	if got := EffectiveItemRate(&item, dec("10")); !got.Equal(dec("10")) {
		t.Fatalf("expected default rate, got %s", got)
	}
	item.TaxRate = decPtr("7")
	if got := EffectiveItemRate(&item, dec("10")); !got.Equal(dec("7")) {
		t.Fatalf("expected explicit rate 7, got %s", got)
	}
}
