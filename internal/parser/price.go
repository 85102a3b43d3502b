// Package parser turns free-text item descriptions into structured
// components and search queries.
package parser

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var nonPriceChars = regexp.MustCompile(`[^0-9.,]`)

// ParsePrice normalizes a heterogeneous price value (string, numeric, or
// json.Number) to an exact decimal amount. It returns false instead of an
// error on anything unparsable: a missing price must never fail the
// surrounding product parse.
//
// Numeric inputs are converted through their string representation so
// currency values never pass through float64 binary rounding.
func ParsePrice(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Decimal{}, false
	case decimal.Decimal:
		return x, true
	case string:
		return parsePriceString(x)
	case json.Number:
		return parsePriceString(x.String())
	case int:
		return parsePriceString(strconv.Itoa(x))
	case int64:
		return parsePriceString(strconv.FormatInt(x, 10))
	case float64:
		return parsePriceString(strconv.FormatFloat(x, 'f', -1, 64))
	case float32:
		return parsePriceString(strconv.FormatFloat(float64(x), 'f', -1, 32))
	default:
		return decimal.Decimal{}, false
	}
}

func parsePriceString(s string) (decimal.Decimal, bool) {
	clean := nonPriceChars.ReplaceAllString(s, "")
	clean = strings.ReplaceAll(clean, ",", "")
	if clean == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
