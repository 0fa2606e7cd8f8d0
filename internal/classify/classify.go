// Package classify maps fetched page content to a stock state.
package classify

import (
	"strings"

	"stockwatch/internal/model"
)

// Classify scans content for the configured out-of-stock terms.
//
// Matching is a case-insensitive substring search. Terms are tried in list
// order and the first listed term present anywhere in the content wins, even
// if a later term appears earlier in the text. No match means in stock.
// The returned marker is the term as configured, not as it appears on the page.
func Classify(content string, terms []string) (model.StockState, string) {
	lower := strings.ToLower(content)
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(term)) {
			return model.StateOutOfStock, term
		}
	}
	return model.StateInStock, ""
}
