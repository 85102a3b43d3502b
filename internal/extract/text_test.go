package extract

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/itemmatch/internal/model"
)

func TestExtractFromTextPricedSentence(t *testing.T) {
	t.Parallel()

	text := "Buy the Samsung Galaxy S21 for $799.99 today. The weather is nice."
	products := ExtractFromText(text, "https://example.org/deals")

	require.Len(t, products, 1)
	p := products[0]
	assert.Equal(t, "the Samsung Galaxy S21 for $799.99 today", p.Name)
	require.NotNil(t, p.Price)
	assert.Equal(t, "799.99", p.Price.String())
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, model.ConditionNew, p.Condition)
	assert.Equal(t, "https://example.org/deals", p.URL)
	assert.Equal(t, "example.org", p.Source)
}

func TestExtractFromTextConfidenceTiers(t *testing.T) {
	t.Parallel()

	// Known retailer host wins the top tier.
	products := ExtractFromText(
		"This product Samsung Galaxy S21 sells for $799.99 online.",
		"https://www.amazon.com/dp/B09123",
	)
	require.Len(t, products, 1)
	assert.InDelta(t, confidenceRetailer, products[0].Confidence(), 1e-9)

	// Dollar sign without a retailer host lands in the middle tier.
	products = ExtractFromText(
		"This product Samsung Galaxy S21 sells for $799.99 online.",
		"https://example.org/page",
	)
	require.Len(t, products, 1)
	assert.InDelta(t, confidencePriceTag, products[0].Confidence(), 1e-9)

	// Price without a dollar sign falls to the baseline.
	products = ExtractFromText(
		"This product Samsung Galaxy S21 sells for 799.99 USD online.",
		"https://example.org/page",
	)
	require.Len(t, products, 1)
	assert.InDelta(t, confidenceBaseline, products[0].Confidence(), 1e-9)
}

func TestExtractFromTextSkipsNonCommercial(t *testing.T) {
	t.Parallel()

	products := ExtractFromText("Random words 12.50 dollars more filler text here", "https://example.org")
	assert.Empty(t, products)
}

func TestExtractFromTextSkipsShortNames(t *testing.T) {
	t.Parallel()

	products := ExtractFromText("Sale! $20 now", "https://example.org")
	assert.Empty(t, products)
}

func TestExtractFromTextCappedPerExcerpt(t *testing.T) {
	t.Parallel()

	text := "Buy gadget alpha for $10.00 here. Buy gadget bravo for $20.00 here. " +
		"Buy gadget charlie for $30.00 here. Buy gadget delta for $40.00 here."
	products := ExtractFromText(text, "https://example.org")
	assert.Len(t, products, maxTextProducts)
}

func TestExtractFromTextPricePatternVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"dollar sign", "Shop this product listed at $1,299.00 with free shipping", "1299.00"},
		{"usd prefix", "This item retails for USD 449.99 at most stores", "449.99"},
		{"usd suffix", "This item retails for 449.99 USD at most stores", "449.99"},
		{"price label", "Product details. Price: 89.99 with warranty included", "89.99"},
		{"dollars word", "This item sells for 500 dollars at auction", "500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			products := ExtractFromText(tt.text, "https://example.org")
			require.Len(t, products, 1, tt.text)
			require.NotNil(t, products[0].Price)
			assert.Equal(t, tt.want, products[0].Price.String())
		})
	}
}

func TestExtractFromTextEmptyInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ExtractFromText("", "https://example.org"))
	assert.Empty(t, ExtractFromText("nothing for sale", ""))
}

func TestExtractFromTextLongNameTruncated(t *testing.T) {
	t.Parallel()

	long := "Buy this product with an very long descriptive sentence that keeps going and going and going and going for $99.99"
	products := ExtractFromText(long, "https://example.org")
	require.Len(t, products, 1)
	assert.LessOrEqual(t, len(products[0].Name), maxMinedNameLen)
}

func TestExtractFromTextMultibyteNameTruncated(t *testing.T) {
	t.Parallel()

	long := "Product caméra " + strings.Repeat("é", 120) + " sells for $19.99 on amazon"
	products := ExtractFromText(long, "https://example.org")
	require.Len(t, products, 1)

	name := products[0].Name
	assert.True(t, utf8.ValidString(name))
	assert.Equal(t, maxMinedNameLen, utf8.RuneCountInString(name))
}

func TestExtractFromTextShortNameGateCountsCharacters(t *testing.T) {
	t.Parallel()

	// 10 characters but 16 bytes; still under the minimum name length.
	products := ExtractFromText("日本語 $5 buy", "https://example.org")
	assert.Empty(t, products)
}
