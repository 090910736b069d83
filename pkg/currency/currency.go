// Package currency formats Brazilian real amounts stored as integer cents.
package currency

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// FormatCurrencyInCents renders cents as pt-BR reais, e.g. 15000 → "R$ 150,00".
func FormatCurrencyInCents(cents int) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + printer.Sprintf("R$ %.2f", float64(cents)/100)
}

// ParseToCents reads an amount typed in a pt-BR form ("150", "150,00",
// "1.500,50", "R$ 99,9") and returns it in cents.
func ParseToCents(s string) (int, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	n, err := strconv.Atoi(whole + frac)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return n, nil
}
