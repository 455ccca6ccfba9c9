// Package money formats whole-FCFA amounts for view models and logs.
package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.French)

// Format renders an amount in whole FCFA with French digit grouping,
// e.g. 1234567 -> "1 234 567 FCFA".
func Format(amount int64) string {
	return printer.Sprintf("%d FCFA", amount)
}

// FormatBare renders the grouped digits without the currency suffix.
func FormatBare(amount int64) string {
	return printer.Sprintf("%d", amount)
}
