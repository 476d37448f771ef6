package scraperutil

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	multiSpaceRe   = regexp.MustCompile(`[ \t]+`)
	multiNewlineRe = regexp.MustCompile(`\n+`)
	numberRe       = regexp.MustCompile(`[\d,.]+`)
)

// CleanText collapses runs of spaces and newlines and trims the result.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = multiNewlineRe.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// ExtractNumber pulls the first numeric run out of a free-form string,
// ignoring thousand separators. Returns false when no digits are present.
func ExtractNumber(text string) (int64, bool) {
	match := numberRe.FindString(text)
	if match == "" {
		return 0, false
	}
	cleaned := strings.NewReplacer(",", "", ".", "").Replace(match)
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ExtractPrice parses a display price into amount and currency.
//
// A bare "$" defaults to MXN: the supported portals are Mexican and list in
// pesos unless a USD marker is present. This is a domain default, not a
// general currency-detection rule.
func ExtractPrice(text string) (int64, string, bool) {
	currency := ""
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "usd") || strings.Contains(text, "US$") || strings.Contains(text, "U$"):
		currency = "USD"
	case strings.Contains(text, "€"):
		currency = "EUR"
	case strings.Contains(lower, "mxn") || strings.Contains(text, "$"):
		currency = "MXN"
	}

	value, ok := ExtractNumber(text)
	if !ok {
		return 0, currency, false
	}
	return value, currency, true
}
