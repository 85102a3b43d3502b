package parser

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/itemmatch/internal/model"
)

// categoryTable maps categories to indicator keywords. Order matters: the
// first category whose keyword appears in the description wins.
var categoryTable = []struct {
	category string
	keywords []string
}{
	{"electronics", []string{
		"phone", "iphone", "android", "smartphone", "tablet", "ipad", "laptop", "computer",
		"tv", "television", "monitor", "headphones", "earbuds", "speaker", "camera",
		"gaming", "console", "smartwatch", "fitness tracker",
	}},
	{"furniture", []string{
		"couch", "sofa", "chair", "table", "desk", "bed", "mattress", "dresser",
		"bookshelf", "cabinet", "nightstand", "ottoman", "sectional", "recliner",
	}},
	{"clothing", []string{
		"shirt", "pants", "dress", "jacket", "coat", "shoes", "sneakers", "boots",
		"jeans", "sweater", "hoodie", "suit", "skirt", "blouse", "top",
	}},
	{"jewelry", []string{
		"ring", "necklace", "bracelet", "earrings", "watch", "chain", "pendant",
		"diamond", "gold", "silver", "platinum", "jewelry",
	}},
	{"automotive", []string{
		"car", "truck", "suv", "sedan", "coupe", "convertible", "motorcycle",
		"vehicle", "auto", "wheels", "tires",
	}},
	{"appliances", []string{
		"refrigerator", "washer", "dryer", "dishwasher", "oven", "microwave",
		"vacuum", "blender", "toaster", "coffee maker", "air conditioner",
	}},
}

// brandTable maps categories to known brand names, checked category-first.
var brandTable = []struct {
	category string
	brands   []string
}{
	{"electronics", []string{
		"apple", "samsung", "google", "microsoft", "sony", "lg", "dell", "hp", "lenovo",
		"asus", "acer", "nintendo", "xbox", "playstation", "canon", "nikon", "panasonic",
		"bose", "beats", "jbl", "sennheiser", "fitbit", "garmin", "gopro",
	}},
	{"furniture", []string{
		"ikea", "ashley", "wayfair", "west elm", "pottery barn", "crate and barrel",
		"restoration hardware", "cb2", "pier 1", "rooms to go", "la-z-boy",
	}},
	{"clothing", []string{
		"nike", "adidas", "gucci", "prada", "louis vuitton", "chanel", "versace",
		"calvin klein", "tommy hilfiger", "ralph lauren", "gap", "zara", "h&m",
	}},
	{"automotive", []string{
		"toyota", "honda", "ford", "chevrolet", "bmw", "mercedes", "audi", "nissan",
		"hyundai", "kia", "volkswagen", "subaru", "mazda", "lexus", "acura",
	}},
}

// modelPatterns are tried in order; the first match anywhere wins. This is a
// best-effort extractor: a false positive only degrades query quality.
var modelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:model|mod)\.?\s*([A-Z0-9\-]+)`),
	regexp.MustCompile(`(?i)([A-Z]{1,3}[0-9]{2,}[A-Z0-9]*)`),
	regexp.MustCompile(`(?i)(\b[0-9]{3,}[A-Z]{0,3}\b)`),
	regexp.MustCompile(`(?i)([A-Z][0-9]+\s*(?:Pro|Max|Plus|Mini|Air|Ultra)?)`),
	regexp.MustCompile(`(?i)(Generation\s+[0-9]+|Gen\s*[0-9]+)`),
}

// Specification pattern families, processed in order. Within a key, the last
// match wins.
var (
	sizePattern       = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(inch|"|in|ft|feet|cm|mm|meter)`)
	dimensionsPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*x\s*(\d+(?:\.\d+)?)`)
	storagePattern    = regexp.MustCompile(`(?i)(\d+(?:GB|TB|MB))`)
	frequencyPattern  = regexp.MustCompile(`(?i)(\d+(?:hz|mhz|ghz))`)
)

// colorWords is scanned in order; the first color found wins.
var colorWords = []string{
	"black", "white", "red", "blue", "green", "yellow", "orange", "purple",
	"pink", "brown", "gray", "grey", "silver", "gold", "rose gold",
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "was": {}, "were": {}, "been": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "may": {}, "might": {},
	"must": {}, "can": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "from": {},
	"up": {}, "about": {}, "into": {}, "through": {}, "during": {}, "before": {},
	"after": {}, "above": {}, "below": {}, "between": {}, "among": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "my": {}, "your": {},
	"his": {}, "her": {}, "its": {}, "our": {}, "their": {},
}

const maxKeywords = 10

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	lossPrefix     = regexp.MustCompile(`^(lost|stolen|missing|broken)\s+`)
	stolenSuffix   = regexp.MustCompile(`\s+(was\s+)?stolen$`)
	wordToken      = regexp.MustCompile(`\b\w+\b`)
)

// ItemParser extracts structured components from raw item descriptions.
// Parse is a pure function over fixed tables: the same text always yields an
// identical ItemDescription.
type ItemParser struct {
	titleCaser cases.Caser
}

// NewItemParser creates an ItemParser.
func NewItemParser() *ItemParser {
	return &ItemParser{titleCaser: cases.Title(language.English)}
}

// Parse builds an ItemDescription from raw text.
func (p *ItemParser) Parse(text string) model.ItemDescription {
	clean := normalizeDescription(text)

	category := extractCategory(clean)
	return model.ItemDescription{
		Text:           text,
		Category:       category,
		Brand:          p.extractBrand(clean, category),
		Model:          extractModel(clean),
		Specifications: extractSpecifications(clean),
		Keywords:       extractKeywords(clean),
	}
}

func normalizeDescription(text string) string {
	clean := strings.ToLower(strings.TrimSpace(text))
	clean = whitespaceRun.ReplaceAllString(clean, " ")
	clean = lossPrefix.ReplaceAllString(clean, "")
	clean = stolenSuffix.ReplaceAllString(clean, "")
	return clean
}

func extractCategory(desc string) string {
	for _, entry := range categoryTable {
		for _, kw := range entry.keywords {
			if strings.Contains(desc, kw) {
				return entry.category
			}
		}
	}
	return ""
}

func (p *ItemParser) extractBrand(desc, category string) string {
	if category != "" {
		for _, entry := range brandTable {
			if entry.category != category {
				continue
			}
			for _, brand := range entry.brands {
				if strings.Contains(desc, brand) {
					return p.titleCaser.String(brand)
				}
			}
		}
	}
	for _, entry := range brandTable {
		for _, brand := range entry.brands {
			if strings.Contains(desc, brand) {
				return p.titleCaser.String(brand)
			}
		}
	}
	return ""
}

func extractModel(desc string) string {
	for _, pattern := range modelPatterns {
		if m := pattern.FindStringSubmatch(desc); m != nil {
			return strings.ToUpper(m[1])
		}
	}
	return ""
}

func extractSpecifications(desc string) []model.Specification {
	var specs []model.Specification

	for _, m := range sizePattern.FindAllStringSubmatch(desc, -1) {
		specs = setSpec(specs, "size", m[1]+m[2])
	}
	for _, m := range dimensionsPattern.FindAllStringSubmatch(desc, -1) {
		specs = setSpec(specs, "dimensions", m[1]+"x"+m[2])
	}
	for _, m := range storagePattern.FindAllStringSubmatch(desc, -1) {
		specs = setSpec(specs, "storage", m[1])
	}
	for _, m := range frequencyPattern.FindAllStringSubmatch(desc, -1) {
		specs = setSpec(specs, "frequency", m[1])
	}

	for _, color := range colorWords {
		if strings.Contains(desc, color) {
			specs = setSpec(specs, "color", color)
			break
		}
	}

	return specs
}

// setSpec replaces an existing entry's value or appends a new one, so a key's
// position reflects its first discovery while its value reflects the last
// match.
func setSpec(specs []model.Specification, name, value string) []model.Specification {
	for i := range specs {
		if specs[i].Name == name {
			specs[i].Value = value
			return specs
		}
	}
	return append(specs, model.Specification{Name: name, Value: value})
}

func extractKeywords(desc string) []string {
	var keywords []string
	seen := make(map[string]struct{})
	for _, word := range wordToken.FindAllString(desc, -1) {
		if len(word) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}
