// Package money validates ISO 4217 currency codes and formats amounts.
package money

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/salaryrace/salaryrace-go/internal/domain"
)

// Normalize returns the canonical ISO code for code, or the default
// currency when code is empty.
func Normalize(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.DefaultCurrency, nil
	}
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return "", domain.Invalid("Invalid currency %q", code)
	}
	return unit.String(), nil
}

// Format renders amount with the currency symbol and the currency's
// standard number of decimals. Unknown codes fall back to "<amount> <code>".
func Format(amount float64, code string) string {
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return fmt.Sprintf("%.2f %s", amount, code)
	}
	p := message.NewPrinter(language.English)
	return p.Sprint(currency.Symbol(unit.Amount(amount)))
}
