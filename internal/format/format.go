// Package format renders monetary and rate values the way the Brazilian UI
// expects them (R$ 1.234,56).
package format

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// BRL formats a value as Brazilian reais with grouping separators.
func BRL(v float64) string {
	return printer.Sprintf("R$ %.2f", v)
}

// Percent formats a decimal rate (0.1743) as a percentage (17,43%).
func Percent(rate float64) string {
	return printer.Sprintf("%.2f%%", rate*100)
}

// Number formats a plain number with the given amount of decimals.
func Number(v float64, decimals int) string {
	return printer.Sprintf("%."+strconv.Itoa(decimals)+"f", v)
}
