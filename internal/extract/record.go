// Package extract turns provider output, structured or prose, into Product
// records.
package extract

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sells-group/itemmatch/internal/model"
	"github.com/sells-group/itemmatch/internal/parser"
)

const (
	// UnknownProductName is used when a record carries no name or title.
	UnknownProductName = "Unknown Product"

	defaultCurrency = "USD"
)

// BuildProduct maps a loosely-typed field map to a validated Product. It
// returns false when the record cannot produce a valid product; the caller
// skips that record and moves on. An unparsable price discards the price,
// never the product.
func BuildProduct(fields map[string]any) (model.Product, bool) {
	p := model.Product{
		Name:         firstString(fields, "name", "title"),
		Currency:     firstString(fields, "currency"),
		URL:          firstString(fields, "url", "link", "product_url"),
		Description:  firstString(fields, "description"),
		Brand:        firstString(fields, "brand"),
		Model:        firstString(fields, "model"),
		Condition:    firstString(fields, "condition"),
		Availability: firstString(fields, "availability"),
		Source:       firstString(fields, "source", "retailer"),
	}
	if p.Name == "" {
		p.Name = UnknownProductName
	}
	if p.Currency == "" {
		p.Currency = defaultCurrency
	}
	if p.Condition == "" {
		p.Condition = model.ConditionNew
	}

	if raw, ok := fields["price"]; ok {
		if price, ok := parser.ParsePrice(raw); ok {
			p.Price = &price
		}
	}

	if score, ok := firstFloat(fields, "confidence_score", "confidence", "match_score"); ok {
		p.ConfidenceScore = &score
	}

	if err := p.Validate(); err != nil {
		return model.Product{}, false
	}
	return p, true
}

func firstString(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		v, ok := fields[key]
		if !ok || v == nil {
			continue
		}
		switch x := v.(type) {
		case string:
			if x != "" {
				return x
			}
		case json.Number:
			return x.String()
		case float64, int, int64, bool:
			return fmt.Sprint(x)
		}
	}
	return ""
}

func firstFloat(fields map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		v, ok := fields[key]
		if !ok || v == nil {
			continue
		}
		switch x := v.(type) {
		case float64:
			return x, true
		case float32:
			return float64(x), true
		case int:
			return float64(x), true
		case int64:
			return float64(x), true
		case json.Number:
			if f, err := x.Float64(); err == nil {
				return f, true
			}
		case string:
			if f, err := strconv.ParseFloat(x, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
