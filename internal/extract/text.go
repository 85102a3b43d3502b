package extract

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/sells-group/itemmatch/internal/model"
	"github.com/sells-group/itemmatch/internal/parser"
)

// Confidence tiers for text-mined products.
const (
	confidenceRetailer = 0.7 // source URL is a known e-commerce retailer
	confidencePriceTag = 0.5 // sentence carries a literal $ sign
	confidenceBaseline = 0.3
)

// maxTextProducts caps how many products one excerpt can yield; prose mining
// past that point tends to produce low-quality duplicates.
const maxTextProducts = 3

const (
	maxMinedNameLen = 100
	minMinedNameLen = 10
)

// pricePatterns are tried in order; the first family that matches a sentence
// supplies its price.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$([0-9,]+(?:\.[0-9]{2})?)`),
	regexp.MustCompile(`(?i)USD\s*([0-9,]+(?:\.[0-9]{2})?)`),
	regexp.MustCompile(`(?i)([0-9,]+(?:\.[0-9]{2})?)\s*USD`),
	regexp.MustCompile(`(?i)Price:\s*\$?([0-9,]+(?:\.[0-9]{2})?)`),
	regexp.MustCompile(`(?i)([0-9,]+(?:\.[0-9]{2})?)\s*dollars?`),
}

// commercialIndicators mark a sentence as likely product-related.
var commercialIndicators = []string{
	"product", "item", "buy", "price", "$", "sale", "offer", "deal",
	"amazon", "ebay", "walmart", "target", "best buy", "shop", "store",
	"brand", "model", "specifications", "features", "reviews",
}

var knownRetailers = []string{"amazon", "ebay", "walmart", "target"}

var (
	sentenceBoundary = regexp.MustCompile(`[.!?]\s+`)
	shoppingVerb     = regexp.MustCompile(`(?i)^(shop|buy|get|find|search)\s+`)
)

// ExtractFromText heuristically mines candidate products out of unstructured
// prose or search excerpts. A sentence yields a product only when it looks
// commercial, a price pattern matches, and a plausible name remains.
func ExtractFromText(text, sourceURL string) []model.Product {
	var products []model.Product

	for _, sentence := range sentenceBoundary.Split(text, -1) {
		if !isCommercial(sentence) {
			continue
		}

		price, ok := sentencePrice(sentence)
		if !ok {
			continue
		}

		name := strings.TrimSpace(sentence)
		if runes := []rune(name); len(runes) > maxMinedNameLen {
			name = string(runes[:maxMinedNameLen])
		}
		name = shoppingVerb.ReplaceAllString(name, "")
		if utf8.RuneCountInString(name) <= minMinedNameLen {
			continue
		}

		confidence := confidenceBaseline
		if retailerDomain(sourceURL) {
			confidence = confidenceRetailer
		} else if strings.Contains(sentence, "$") {
			confidence = confidencePriceTag
		}

		p := model.Product{
			Name:            name,
			Price:           &price,
			Currency:        defaultCurrency,
			URL:             sourceURL,
			Condition:       model.ConditionNew,
			Source:          domainOf(sourceURL),
			ConfidenceScore: &confidence,
		}
		products = append(products, p)

		if len(products) >= maxTextProducts {
			break
		}
	}

	return products
}

func isCommercial(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, indicator := range commercialIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

func sentencePrice(sentence string) (decimal.Decimal, bool) {
	for _, pattern := range pricePatterns {
		m := pattern.FindStringSubmatch(sentence)
		if m == nil {
			continue
		}
		if price, ok := parser.ParsePrice(m[1]); ok {
			return price, true
		}
	}
	return decimal.Decimal{}, false
}

func retailerDomain(sourceURL string) bool {
	host := domainOf(sourceURL)
	if host == "" {
		return false
	}
	for _, retailer := range knownRetailers {
		if strings.Contains(host, retailer) {
			return true
		}
	}
	return false
}

func domainOf(sourceURL string) string {
	if sourceURL == "" {
		return ""
	}
	u, err := url.Parse(sourceURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Host)
}
