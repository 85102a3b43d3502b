package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractStructuredDirectArray(t *testing.T) {
	t.Parallel()

	out := `[
		{"name": "iPhone 13 Pro", "price": "$999.00", "url": "https://example.com/13pro", "confidence_score": 0.95},
		{"name": "iPhone 13", "price": "$799.00", "url": "https://example.com/13", "confidence_score": 0.85}
	]`

	products := ExtractStructured(out, 5)
	require.Len(t, products, 2)
	assert.Equal(t, "iPhone 13 Pro", products[0].Name)
	require.NotNil(t, products[0].Price)
	assert.Equal(t, "999.00", products[0].Price.String())
	assert.Equal(t, "https://example.com/13pro", products[0].URL)
	assert.Equal(t, "https://example.com/13", products[1].URL)
}

func TestExtractStructuredProductsField(t *testing.T) {
	t.Parallel()

	out := `{"products": [{"name": "A", "price": "$1.00"}, {"name": "B", "price": "$2.00"}]}`

	products := ExtractStructured(out, 5)
	require.Len(t, products, 2)
}

func TestExtractStructuredBareObjectWrapped(t *testing.T) {
	t.Parallel()

	products := ExtractStructured(`{"name": "Solo Item", "price": "$9.99"}`, 5)
	require.Len(t, products, 1)
	assert.Equal(t, "Solo Item", products[0].Name)
}

func TestExtractStructuredProductsFieldNotArray(t *testing.T) {
	t.Parallel()

	products := ExtractStructured(`{"products": "none found"}`, 5)
	assert.Empty(t, products)
}

func TestExtractStructuredArrayEmbeddedInProse(t *testing.T) {
	t.Parallel()

	out := `Here are the matching products I found:
[{"name": "Dyson V11", "price": "$599.99"}]
Let me know if you need more detail.`

	products := ExtractStructured(out, 5)
	require.Len(t, products, 1)
	assert.Equal(t, "Dyson V11", products[0].Name)
}

func TestExtractStructuredTrailingCommas(t *testing.T) {
	t.Parallel()

	out := `[{"name": "A", "price": "$1.00",}, {"name": "B", "price": "$2.00",},]`

	products := ExtractStructured(out, 5)
	require.Len(t, products, 2)
}

func TestExtractStructuredTruncatedArray(t *testing.T) {
	t.Parallel()

	out := `[
		{"name": "First", "confidence_score": 0.5},
		{"name": "Second", "confidence_score": 0.9},
		{"name": "Third", "price": "$49`

	products := ExtractStructured(out, 5)
	require.Len(t, products, 2, "complete objects survive, the truncated tail is dropped")
	assert.Equal(t, "Second", products[0].Name)
	assert.Equal(t, "First", products[1].Name)
}

func TestExtractStructuredBracesInsideStrings(t *testing.T) {
	t.Parallel()

	out := `[{"name": "Box } with braces { inside", "confidence_score": 0.4}, {"name": "Trunc`

	products := ExtractStructured(out, 5)
	require.Len(t, products, 1)
	assert.Equal(t, "Box } with braces { inside", products[0].Name)
}

func TestExtractStructuredStopsAtTopLevelClose(t *testing.T) {
	t.Parallel()

	out := `[{"name": "Inside"}, oops] {"name": "After", "price": "$5.00"}`

	products := ExtractStructured(out, 5)
	require.Len(t, products, 1)
	assert.Equal(t, "Inside", products[0].Name)
}

func TestExtractStructuredRepairSalvage(t *testing.T) {
	t.Parallel()

	// Single quotes defeat every strict stage, whole-text repair catches it.
	out := `[{'name': 'Quoted Item', 'price': '$5.00'}]`

	products := ExtractStructured(out, 5)
	require.Len(t, products, 1)
	assert.Equal(t, "Quoted Item", products[0].Name)
}

func TestExtractStructuredGarbage(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ExtractStructured("no structured data here at all", 5))
	assert.Empty(t, ExtractStructured("", 5))
}

func TestExtractStructuredCapsAtMaxResults(t *testing.T) {
	t.Parallel()

	out := `[
		{"name": "A"}, {"name": "B"}, {"name": "C"}, {"name": "D"}, {"name": "E"}
	]`

	products := ExtractStructured(out, 2)
	assert.Len(t, products, 2)
}

func TestExtractStructuredSortedByConfidence(t *testing.T) {
	t.Parallel()

	out := `[
		{"name": "Low", "confidence_score": 0.2},
		{"name": "High", "confidence_score": 0.9},
		{"name": "Mid", "confidence_score": 0.5}
	]`

	products := ExtractStructured(out, 5)
	require.Len(t, products, 3)
	assert.Equal(t, "High", products[0].Name)
	assert.Equal(t, "Mid", products[1].Name)
	assert.Equal(t, "Low", products[2].Name)
}

func TestExtractStructuredSkipsInvalidRecords(t *testing.T) {
	t.Parallel()

	out := `[
		{"name": "Good", "confidence_score": 0.8},
		{"name": "Bad", "confidence_score": 2.0}
	]`

	products := ExtractStructured(out, 5)
	require.Len(t, products, 1)
	assert.Equal(t, "Good", products[0].Name)
}

func TestExtractStructuredNonObjectElementsIgnored(t *testing.T) {
	t.Parallel()

	out := `["just a string", {"name": "Real"}, 42]`

	products := ExtractStructured(out, 5)
	require.Len(t, products, 1)
	assert.Equal(t, "Real", products[0].Name)
}
