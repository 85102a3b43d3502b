package model

import (
	"sort"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// Condition values reported by retailers.
const (
	ConditionNew         = "new"
	ConditionUsed        = "used"
	ConditionRefurbished = "refurbished"
)

// Product is a purchasable match for a claimed item.
type Product struct {
	Name            string           `json:"name"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	Currency        string           `json:"currency"`
	URL             string           `json:"url,omitempty"`
	Description     string           `json:"description,omitempty"`
	Brand           string           `json:"brand,omitempty"`
	Model           string           `json:"model,omitempty"`
	Condition       string           `json:"condition,omitempty"`
	Availability    string           `json:"availability,omitempty"`
	Source          string           `json:"source,omitempty"`
	ConfidenceScore *float64         `json:"confidence_score,omitempty"`
}

// Validate checks the Product invariants: a non-empty name, a non-negative
// price when present, and a confidence score within [0,1] when present.
func (p Product) Validate() error {
	if p.Name == "" {
		return eris.New("product: name is required")
	}
	if p.Price != nil && p.Price.IsNegative() {
		return eris.Errorf("product: negative price %s", p.Price.String())
	}
	if p.ConfidenceScore != nil && (*p.ConfidenceScore < 0 || *p.ConfidenceScore > 1) {
		return eris.Errorf("product: confidence score %g outside [0,1]", *p.ConfidenceScore)
	}
	return nil
}

// Confidence returns the confidence score, treating absence as 0.
func (p Product) Confidence() float64 {
	if p.ConfidenceScore == nil {
		return 0
	}
	return *p.ConfidenceScore
}

// SortByConfidence orders products by confidence score descending, in place.
// A missing score sorts as 0. The sort is stable so provider order breaks
// ties.
func SortByConfidence(products []Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Confidence() > products[j].Confidence()
	})
}
