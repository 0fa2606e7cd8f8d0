package classify

import (
	"testing"

	"stockwatch/internal/model"
)

func TestClassify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		content    string
		terms      []string
		wantState  model.StockState
		wantMarker string
	}{
		{
			name:       "no match",
			content:    "<p>Ajouter au panier</p>",
			terms:      []string{"rupture de stock"},
			wantState:  model.StateInStock,
			wantMarker: "",
		},
		{
			name:       "case-insensitive match keeps configured marker",
			content:    "<div>Rupture De Stock</div>",
			terms:      []string{"rupture de stock"},
			wantState:  model.StateOutOfStock,
			wantMarker: "rupture de stock",
		},
		{
			name:       "only second term present",
			content:    "item is momentarily unavailable",
			terms:      []string{"sold out", "unavailable"},
			wantState:  model.StateOutOfStock,
			wantMarker: "unavailable",
		},
		{
			name:       "list order wins over text order",
			content:    "unavailable... in fact sold out",
			terms:      []string{"sold out", "unavailable"},
			wantState:  model.StateOutOfStock,
			wantMarker: "sold out",
		},
		{
			name:       "empty content",
			content:    "",
			terms:      []string{"sold out"},
			wantState:  model.StateInStock,
			wantMarker: "",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			state, marker := Classify(tt.content, tt.terms)
			if state != tt.wantState || marker != tt.wantMarker {
				t.Fatalf("Classify = (%s, %q), want (%s, %q)", state, marker, tt.wantState, tt.wantMarker)
			}
		})
	}
}
