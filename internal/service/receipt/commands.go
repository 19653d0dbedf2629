package receipt

import (
	"fmt"
	"strings"
)

// CommandKind — вид директивы термопринтера.
type CommandKind string

const (
	// CmdText — напечатать строку текста.
	CmdText CommandKind = "text"
	// CmdAlign — выравнивание: "left" или "center".
	CmdAlign CommandKind = "align"
	// CmdBold — включить/выключить жирный шрифт (Arg: 1/0).
	CmdBold CommandKind = "bold"
	// CmdFontSize — размер шрифта (Arg: 1 — обычный, 2 — увеличенный).
	CmdFontSize CommandKind = "font_size"
	// CmdDivider — разделительная линия фиксированной ширины.
	CmdDivider CommandKind = "divider"
	// CmdFeed — протяжка бумаги на Arg строк.
	CmdFeed CommandKind = "feed"
	// CmdCut — отрез бумаги; завершает документ.
	CmdCut CommandKind = "cut"
)

// Command — одна директива потока печати.
type Command struct {
	Kind CommandKind
	Text string
	Arg  int
}

const defaultDividerWidth = 32

// Commands линеаризует структурированный чек в поток команд термопринтера.
// Содержимое берётся из той же канонической модели, что и дерево,
// поэтому два представления не расходятся.
func (d *Document) Commands(rc Context) []Command {
	width := rc.DividerWidth
	if width <= 0 {
		width = defaultDividerWidth
	}

	var cmds []Command
	push := func(c Command) { cmds = append(cmds, c) }
	text := func(s string) { push(Command{Kind: CmdText, Text: s}) }

	// Шапка.
	push(Command{Kind: CmdAlign, Text: "center"})
	push(Command{Kind: CmdBold, Arg: 1})
	push(Command{Kind: CmdFontSize, Arg: 2})
	text(d.Header.RestaurantName)
	push(Command{Kind: CmdFontSize, Arg: 1})
	push(Command{Kind: CmdBold, Arg: 0})
	if d.Header.Location != "" {
		text(d.Header.Location)
	}
	text(d.Header.Timestamp.Format("2006-01-02 15:04"))
	push(Command{Kind: CmdBold, Arg: 1})
	text(fmt.Sprintf("Order #%d", d.Header.OrderNumber))
	push(Command{Kind: CmdBold, Arg: 0})
	text(d.Header.OrderLabel)
	push(Command{Kind: CmdAlign, Text: "left"})
	push(Command{Kind: CmdDivider, Arg: width})

	// Строки заказа.
	for _, line := range d.Lines {
		name := fmt.Sprintf("%s x%d", line.Label, line.Quantity)
		text(padPrice(name, line.UnitPriceText, width))
		for _, mod := range line.Modifiers {
			text(padPrice("  "+mod.Label, mod.PriceText, width))
		}
		for _, section := range line.GroupedToppings {
			text("  " + section.CategoryLabel + ":")
			for _, topping := range section.Toppings {
				text(padPrice("    "+topping.Label, topping.PriceText, width))
			}
		}
		if line.Instructions != "" {
			text("  * " + line.Instructions)
		}
	}

	// Итоги.
	push(Command{Kind: CmdDivider, Arg: width})
	text(padPrice("Subtotal", d.Footer.SubtotalText, width))
	text(padPrice("Tax", d.Footer.TaxText, width))
	push(Command{Kind: CmdBold, Arg: 1})
	push(Command{Kind: CmdFontSize, Arg: 2})
	text(padPrice("Total", d.Footer.TotalText, width))
	push(Command{Kind: CmdFontSize, Arg: 1})
	push(Command{Kind: CmdBold, Arg: 0})
	push(Command{Kind: CmdDivider, Arg: width})

	push(Command{Kind: CmdAlign, Text: "center"})
	for _, closing := range d.Footer.ClosingLines {
		text(closing)
	}
	push(Command{Kind: CmdFeed, Arg: 3})
	push(Command{Kind: CmdCut})

	return cmds
}

// Encode сериализует поток команд в текстовый вид для передачи на relay.
func Encode(cmds []Command) string {
	var b strings.Builder
	for _, c := range cmds {
		switch c.Kind {
		case CmdText:
			b.WriteString(c.Text)
			b.WriteByte('\n')
		case CmdAlign:
			b.WriteString("\x1b[align:" + c.Text + "]")
		case CmdBold:
			b.WriteString(fmt.Sprintf("\x1b[bold:%d]", c.Arg))
		case CmdFontSize:
			b.WriteString(fmt.Sprintf("\x1b[size:%d]", c.Arg))
		case CmdDivider:
			b.WriteString(strings.Repeat("-", c.Arg))
			b.WriteByte('\n')
		case CmdFeed:
			b.WriteString(strings.Repeat("\n", c.Arg))
		case CmdCut:
			b.WriteString("\x1b[cut]")
		}
	}
	return b.String()
}

// padPrice выравнивает цену по правому краю строки заданной ширины.
func padPrice(label, price string, width int) string {
	if price == "" {
		return label
	}
	gap := width - len([]rune(label)) - len([]rune(price))
	if gap < 1 {
		gap = 1
	}
	return label + strings.Repeat(" ", gap) + price
}
