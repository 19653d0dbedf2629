package receipt

import "github.com/shopspring/decimal"

// currencySymbols — фиксированная таблица символов валют для печати.
// Неизвестные коды печатаются сырым ISO-кодом.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"KRW": "₩",
	"RUB": "₽",
	"KZT": "₸",
	"IDR": "Rp",
	"THB": "฿",
	"VND": "₫",
}

// CurrencySymbol возвращает символ валюты или сам код, если символ не известен.
func CurrencySymbol(code string) string {
	if sym, ok := currencySymbols[code]; ok {
		return sym
	}
	return code
}

// FormatAmount печатает сумму с символом валюты и двумя знаками после запятой.
func FormatAmount(code string, amount decimal.Decimal) string {
	return CurrencySymbol(code) + amount.StringFixed(2)
}
