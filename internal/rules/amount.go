package rules

import (
	"regexp"
	"strconv"
	"strings"
)

// Monetary amounts appear in task text either with a currency symbol
// ("$15,000", "$ 1234.50") or as a number followed by a currency word
// ("15000 dollars", "2,500 USD"). Locale formats beyond comma grouping are
// not recognized.
var (
	dollarAmountRe = regexp.MustCompile(`\$\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
	wordAmountRe   = regexp.MustCompile(`(?i)\b([0-9][0-9,]*(?:\.[0-9]+)?)\s*(?:dollars|usd)\b`)
)

// ExtractAmounts returns every monetary amount found in the text, in order
// of appearance (symbol-prefixed amounts first, then currency-word amounts).
// Malformed numbers are skipped.
func ExtractAmounts(text string) []float64 {
	var amounts []float64
	for _, re := range []*regexp.Regexp{dollarAmountRe, wordAmountRe} {
		for _, match := range re.FindAllStringSubmatch(text, -1) {
			raw := strings.ReplaceAll(match[1], ",", "")
			amount, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			amounts = append(amounts, amount)
		}
	}
	return amounts
}
