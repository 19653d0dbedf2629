package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func cartWithLines(ids ...string) Cart {
	cart := Cart{}
	for _, id := range ids {
		cart = cart.WithLine(CartLine{
			ID:        id,
			Item:      testItem(),
			Selection: NewSelection(),
			Quantity:  1,
			UnitPrice: decimal.NewFromFloat(8.50),
		})
	}
	return cart
}

func TestCartWithLine_Versioning(t *testing.T) {
	cart := cartWithLines("l1", "l2")
	if cart.Version != 2 {
		t.Fatalf("expected version 2 after two mutations, got %d", cart.Version)
	}
	if len(cart.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(cart.Lines))
	}
}

func TestCartWithQuantity(t *testing.T) {
	cart := cartWithLines("l1")

	next, err := cart.WithQuantity("l1", 4)
	if err != nil {
		t.Fatalf("with quantity: %v", err)
	}
	line, _ := next.Line("l1")
	if line.Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", line.Quantity)
	}

	// Исходная версия не изменилась.
	orig, _ := cart.Line("l1")
	if orig.Quantity != 1 {
		t.Fatalf("original cart mutated, quantity %d", orig.Quantity)
	}

	if _, err := cart.WithQuantity("missing", 2); !errors.Is(err, ErrCartLineNotFound) {
		t.Fatalf("expected ErrCartLineNotFound, got %v", err)
	}
}

func TestCartWithQuantity_ZeroRemovesLine(t *testing.T) {
	cart := cartWithLines("l1", "l2")

	next, err := cart.WithQuantity("l1", 0)
	if err != nil {
		t.Fatalf("with quantity zero: %v", err)
	}
	if _, ok := next.Line("l1"); ok {
		t.Fatal("line with zero quantity must be removed")
	}
	if len(next.Lines) != 1 {
		t.Fatalf("expected 1 remaining line, got %d", len(next.Lines))
	}
}

func TestCartWithoutLine(t *testing.T) {
	cart := cartWithLines("l1")

	next, err := cart.WithoutLine("l1")
	if err != nil {
		t.Fatalf("without line: %v", err)
	}
	if !next.Empty() {
		t.Fatal("expected empty cart")
	}

	if _, err := cart.WithoutLine("missing"); !errors.Is(err, ErrCartLineNotFound) {
		t.Fatalf("expected ErrCartLineNotFound, got %v", err)
	}
}

func TestCartCleared(t *testing.T) {
	cart := cartWithLines("l1", "l2")
	cleared := cart.Cleared()
	if !cleared.Empty() {
		t.Fatal("expected cleared cart to be empty")
	}
	if cleared.Version != cart.Version+1 {
		t.Fatalf("expected version %d, got %d", cart.Version+1, cleared.Version)
	}
}

func TestOrderValidate(t *testing.T) {
	base := Order{
		ID:           "o1",
		RestaurantID: "r1",
		Type:         OrderTypeDineIn,
		Method:       PaymentMethodCash,
		Lines:        cartWithLines("l1").Lines,
	}

	if errs := base.Validate(false); len(errs) != 0 {
		t.Fatalf("expected valid order, got %v", errs)
	}

	// Стол обязателен только при включённом выборе столов.
	if errs := base.Validate(true); len(errs) != 1 || !errors.Is(errs[0], ErrTableRequired) {
		t.Fatalf("expected ErrTableRequired, got %v", errs)
	}
	withTable := base
	withTable.TableID = "5"
	if errs := withTable.Validate(true); len(errs) != 0 {
		t.Fatalf("expected valid dine-in order with table, got %v", errs)
	}

	takeaway := base
	takeaway.Type = OrderTypeTakeaway
	if errs := takeaway.Validate(true); len(errs) != 0 {
		t.Fatalf("takeaway must not require table, got %v", errs)
	}

	empty := base
	empty.Lines = nil
	if errs := empty.Validate(false); len(errs) != 1 || !errors.Is(errs[0], ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", errs)
	}
}
