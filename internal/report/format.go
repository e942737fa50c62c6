package report

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"fintrack/internal/core"
)

var printer = message.NewPrinter(language.English)

// FormatCurrency renders an amount for display in the user's currency.
// Unknown codes fall back to "CODE 12.34".
func FormatCurrency(m core.Money, code string) string {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return strings.ToUpper(code) + " " + m.Decimal().StringFixed(2)
	}
	return printer.Sprint(currency.Symbol(unit.Amount(m.Float64())))
}
